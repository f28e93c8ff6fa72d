// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/attributes"
)

// Config holds the service configuration.
type Config struct {
	DatabaseURL        string
	Port               int
	Env                string
	LogLevel           zerolog.Level
	SchemaFile         string
	SpecKeyCasing      attributes.KeyCasing
	EventBuffer        int
	SessionIdleTimeout time.Duration
	SessionMaxAge      time.Duration
}

// Development reports whether ENV=development.
func (c *Config) Development() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	_ = godotenv.Load(files...)

	cfg := &Config{
		DatabaseURL:        "file:evdms.db?_pragma=foreign_keys(1)",
		Port:               8080,
		Env:                os.Getenv("ENV"),
		LogLevel:           zerolog.InfoLevel,
		SchemaFile:         os.Getenv("SCHEMA_FILE"),
		SpecKeyCasing:      attributes.KeyCasingLegacy,
		EventBuffer:        256,
		SessionIdleTimeout: 30 * time.Minute,
		SessionMaxAge:      24 * time.Hour,
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("PORT: invalid port %q", v)
		}
		cfg.Port = port
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		lvl, err := zerolog.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("SPEC_KEY_CASING"); v != "" {
		kc, err := attributes.ParseKeyCasing(v)
		if err != nil {
			return nil, fmt.Errorf("SPEC_KEY_CASING: %w", err)
		}
		cfg.SpecKeyCasing = kc
	}
	if v := os.Getenv("EVENT_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("EVENT_BUFFER: must be a positive integer, got %q", v)
		}
		cfg.EventBuffer = n
	}
	var err error
	if cfg.SessionIdleTimeout, err = duration("SESSION_IDLE_TIMEOUT", cfg.SessionIdleTimeout); err != nil {
		return nil, err
	}
	if cfg.SessionMaxAge, err = duration("SESSION_MAX_AGE", cfg.SessionMaxAge); err != nil {
		return nil, err
	}
	return cfg, nil
}

func duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: must be a positive duration, got %q", key, v)
	}
	return d, nil
}
