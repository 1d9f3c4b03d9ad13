package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "defaultsecret"

type Config struct {
	Port          string
	Environment   string
	MongoURI      string
	MongoDatabase string
	JWTSecret     string
	ClientDistDir string
	RedisHost     string
	RedisPort     string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPassword  string
	SMTPFrom      string
	JaegerAddress string
	LogFile       string
	AccessLog     string
	LogLevel      string
	RBACModel     string
	RBACPolicy    string
}

// NewConfig reads the environment, after loading a .env file from the
// working directory when one exists.
func NewConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:          getEnv("PORT", "5000"),
		Environment:   getEnv("APP_ENV", getEnv("NODE_ENV", "development")),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017/roombuddy"),
		MongoDatabase: getEnv("MONGO_DATABASE", "roombuddy"),
		JWTSecret:     getEnv("JWT_SECRET", defaultJWTSecret),
		ClientDistDir: getEnv("CLIENT_DIST_DIR", "./dist"),
		RedisHost:     os.Getenv("REDIS_HOST"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SMTPHost:      os.Getenv("SMTP_HOST"),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      os.Getenv("SMTP_USER"),
		SMTPPassword:  os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:      getEnv("SMTP_FROM", "no-reply@roombuddy.app"),
		JaegerAddress: os.Getenv("JAEGER_ADDRESS"),
		LogFile:       os.Getenv("LOG_FILE"),
		AccessLog:     os.Getenv("ACCESS_LOG"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		RBACModel:     getEnv("RBAC_MODEL", "./rbac_model.conf"),
		RBACPolicy:    getEnv("RBAC_POLICY", "./policy.csv"),
	}
}

func (config *Config) IsProduction() bool {
	return config.Environment == "production"
}

func (config *Config) UsesDefaultSecret() bool {
	return config.JWTSecret == defaultJWTSecret
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
