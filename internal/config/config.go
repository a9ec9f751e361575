package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Storage StorageConfig
	Session SessionConfig
	Logging LoggingConfig
}

type StorageConfig struct {
	DataFile string
}

type SessionConfig struct {
	RecentTransactionCount int
	FailedLoginInterval    time.Duration
	FailedLoginBurst       int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	return &Config{
		Storage: StorageConfig{
			DataFile: getEnv("ATM_DATA_FILE", "accounts.json"),
		},
		Session: SessionConfig{
			RecentTransactionCount: getIntEnv("ATM_RECENT_TRANSACTIONS", 5),
			FailedLoginInterval:    getDurationEnv("ATM_FAILED_LOGIN_INTERVAL", 30*time.Second),
			FailedLoginBurst:       getIntEnv("ATM_FAILED_LOGIN_BURST", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("ATM_LOG_LEVEL", "warn"),
			Format: getEnv("ATM_LOG_FORMAT", "text"),
		},
	}
}

// SlogLevel maps the configured level name onto a slog level. Unknown names
// fall back to warn so an interactive session is not flooded with log records.
func (c *LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
