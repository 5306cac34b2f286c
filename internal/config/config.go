// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all runtime settings.
type Config struct {
	Port         string `env:"PORT" envDefault:"8080"`
	DatabasePath string `env:"DATABASE_PATH" envDefault:"statusflow.db"`

	// AutomationTimeout bounds each automation run during a transition.
	AutomationTimeout time.Duration `env:"AUTOMATION_TIMEOUT" envDefault:"10s"`

	// WebhookTimeout is the hard upper bound for outbound webhook calls.
	WebhookTimeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"30s"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}
