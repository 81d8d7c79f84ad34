// Package config loads runtime settings from AUDITPLUS_ environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates all runtime settings.
type Config struct {
	App      AppConfig      `envPrefix:"AUDITPLUS_"`
	HTTP     HTTPConfig     `envPrefix:"AUDITPLUS_HTTP_"`
	Database DatabaseConfig `envPrefix:"AUDITPLUS_DB_"`
}

type AppConfig struct {
	Environment string `env:"ENV" envDefault:"production"`
	// Actor is the username the CLI acts as when --as is not given.
	Actor string `env:"ACTOR"`
}

type HTTPConfig struct {
	Addr              string        `env:"ADDR" envDefault:":8080"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	AllowedOrigins    []string      `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	// MaxUploadBytes caps attachment uploads.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

type DatabaseConfig struct {
	// Path of the SQLite file; empty means ~/.auditplus/auditplus.db.
	Path     string `env:"PATH"`
	SeedDemo bool   `env:"SEED_DEMO" envDefault:"false"`
}

// Load parses environment variables into Config and performs validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.HTTP.Addr == "" {
		return nil, fmt.Errorf("AUDITPLUS_HTTP_ADDR cannot be empty")
	}
	if cfg.HTTP.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("AUDITPLUS_HTTP_MAX_UPLOAD_BYTES must be positive (got %d)", cfg.HTTP.MaxUploadBytes)
	}
	return cfg, nil
}
