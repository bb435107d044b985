package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type Config struct {
	Environment  string
	LogLevel     slog.Level
	RedisURL     string // optional; ledgers are in-memory when empty
	SettingsPath string
	VendorGraph  string
	PlayerID     string
}

func Load() (*Config, error) {
	cfg := &Config{
		Environment:  getEnv("ENVIRONMENT", "development"),
		LogLevel:     parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:     os.Getenv("REDIS_URL"),
		SettingsPath: getEnv("SETTINGS_PATH", "./data/VehicleVendorOptions.json"),
		VendorGraph:  getEnv("VENDOR_GRAPH", "airwolf"),
		PlayerID:     getEnv("PLAYER_ID", "76561198000000001"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required values are present
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SettingsPath) == "" {
		return fmt.Errorf("SETTINGS_PATH must not be empty")
	}
	if strings.TrimSpace(c.VendorGraph) == "" {
		return fmt.Errorf("VENDOR_GRAPH must not be empty")
	}
	if strings.TrimSpace(c.PlayerID) == "" {
		return fmt.Errorf("PLAYER_ID must not be empty")
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
