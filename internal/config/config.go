// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on.
	Port string `env:"PORT" envDefault:"8080"`

	// DatabaseURL is the Postgres connection string. Required.
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// LogLevel controls the minimum log level.
	// Valid values: debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Set CORS_ORIGINS to a comma-separated list to override the Vite dev server default.
	// Load fills it from the CORS_ORIGINS variable.
	CORSOrigins []string

	// JWTSecret is the HS256 key used to verify caller bearer tokens. Required.
	JWTSecret string `env:"JWT_SECRET,required,notEmpty"`

	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64 `env:"MAX_BODY_BYTES" envDefault:"1048576"`

	// TxMaxRetries bounds how often a transaction is re-run after a
	// serialization failure or deadlock.
	TxMaxRetries uint64 `env:"TX_MAX_RETRIES" envDefault:"5"`

	// ActivityBuffer is the queue length of the asynchronous activity log.
	ActivityBuffer int `env:"ACTIVITY_BUFFER" envDefault:"256"`
}

// Load reads configuration from environment variables and returns a Config.
// Returns an error naming any required variable that is not set.
func Load() (Config, error) {
	var raw struct {
		Config
		CORSOrigins string `env:"CORS_ORIGINS" envDefault:"http://localhost:5173"`
	}
	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	cfg := raw.Config
	cfg.CORSOrigins = splitCSV(raw.CORSOrigins)
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// SlogLevel returns LogLevel as a slog.Level.
func (c Config) SlogLevel() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func (c Config) validate() error {
	var errs []error
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q: must be one of debug, info, warn, error", c.LogLevel))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_BODY_BYTES %d: must be positive", c.MaxBodyBytes))
	}
	if c.ActivityBuffer <= 0 {
		errs = append(errs, fmt.Errorf("ACTIVITY_BUFFER %d: must be positive", c.ActivityBuffer))
	}
	return errors.Join(errs...)
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
