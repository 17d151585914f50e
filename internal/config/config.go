package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store backends selectable via STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendPostgres = "postgres"
)

type Config struct {
	// Server
	Port            int           `env:"PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Storage
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	StateTable   string `env:"STATE_TABLE"`
	DatabaseURL  string `env:"DATABASE_URL"`

	// Auth: either a literal token or an SSM parameter holding it.
	APIToken       string `env:"API_TOKEN"`
	TokenParameter string `env:"TOKEN_PARAMETER"`

	// Events: empty AMQP_URL selects the no-op fallback publisher.
	AMQPURL        string `env:"AMQP_URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" envDefault:"receptionist.events"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.StateTable == "" {
			return fmt.Errorf("config: STATE_TABLE is required for the %s backend", BackendDynamoDB)
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for the %s backend", BackendPostgres)
		}
	default:
		return fmt.Errorf("config: unknown store backend %q", c.StoreBackend)
	}
	if c.APIToken == "" && c.TokenParameter == "" {
		return fmt.Errorf("config: one of API_TOKEN or TOKEN_PARAMETER is required")
	}
	return nil
}
