package main

import (
	"roombuddy/startup"
	cfg "roombuddy/startup/config"
)

func main() {
	config := cfg.NewConfig()
	server := startup.NewServer(config)
	server.Start()
}
