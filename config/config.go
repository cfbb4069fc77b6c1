package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds the API server settings.
type Config struct {
	Env  string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port string `env:"PORT" envDefault:"8080" validate:"required"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret       string `env:"JWT_SECRET,required" validate:"required,min=32"`
	SessionTTLHours int    `env:"SESSION_TTL_HOURS" envDefault:"24" validate:"min=1,max=720"`

	// Sign-up can be switched off entirely; sign-in keeps working for
	// existing accounts.
	PasswordSignUps bool `env:"PASSWORD_AUTH_ENABLED" envDefault:"true"`

	ResendAPIKey string `env:"RESEND_API_KEY" validate:"required_if=Env production,required_if=Env staging"`
	ResendFrom   string `env:"RESEND_FROM"    validate:"required_if=Env production,required_if=Env staging"`
}

func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) SlogLevel() slog.Level {
	if c.Env == "local" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// ClientConfig holds the dashboard settings. A single base URL selects
// which deployment the client talks to.
type ClientConfig struct {
	APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8080" validate:"required,url"`
}

func LoadClient() (*ClientConfig, error) {
	cfg := &ClientConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
