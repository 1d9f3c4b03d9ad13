package startup

import (
	"io"
	"os"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"roombuddy/startup/config"
)

// NewLogger logs to stdout and, when LOG_FILE is set, to a size rotated file.
func NewLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.IsProduction() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10,
			MaxBackups: 5,
			MaxAge:     28,
			Compress:   true,
		})
	}
	logger.SetOutput(out)
	return logger
}

// NewAccessLogger returns the logger request lines go to. With ACCESS_LOG set
// they are written to a file rotated daily and kept for a week; otherwise
// they share the application logger.
func NewAccessLogger(cfg *config.Config, fallback *logrus.Logger) (*logrus.Logger, error) {
	if cfg.AccessLog == "" {
		return fallback, nil
	}
	writer, err := rotatelogs.New(
		cfg.AccessLog+".%Y%m%d",
		rotatelogs.WithLinkName(cfg.AccessLog),
		rotatelogs.WithRotationTime(24*time.Hour),
		rotatelogs.WithMaxAge(7*24*time.Hour),
	)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(writer)
	return logger, nil
}
