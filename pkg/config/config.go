package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the store and its dev server.
type Config struct {
	APIBaseURL     string        `env:"FORUM_API_BASE_URL" envDefault:"https://www.v2ex.com/api"`
	RequestTimeout time.Duration `env:"FORUM_REQUEST_TIMEOUT" envDefault:"10s"`
	UserAgent      string        `env:"FORUM_USER_AGENT" envDefault:"forum-miniapp-store/1.0"`
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and parses the environment into a Config.
// Files listed in envFiles default to ".env"; a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
		slog.Debug("No .env file found, using environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.RequestTimeout < 0 {
		return nil, fmt.Errorf("FORUM_REQUEST_TIMEOUT must not be negative, got %s", cfg.RequestTimeout)
	}
	return &cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown values map to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
