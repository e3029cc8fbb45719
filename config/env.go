package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Env holds settings the CLI reads from BODYGEN_* environment variables.
// Flags take precedence over these.
type Env struct {
	ConfigPath string `env:"BODYGEN_CONFIG"`
	OutputDir  string `env:"BODYGEN_OUTPUT"`
	Store      string `env:"BODYGEN_STORE" envDefault:"memory"`
	DBPath     string `env:"BODYGEN_DB" envDefault:"bodies.db"`
	LogLevel   string `env:"BODYGEN_LOG_LEVEL"`
	Workers    int    `env:"BODYGEN_WORKERS"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Apply overlays non-zero environment settings onto cfg and recomputes
// derived values.
func (e Env) Apply(cfg *Config) error {
	if e.LogLevel != "" {
		cfg.Logging.Level = e.LogLevel
	}
	if e.Workers > 0 {
		cfg.Sim.Workers = e.Workers
	}
	return cfg.computeDerived()
}
