package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env      string `env:"ENV" envDefault:"local" validate:"required,oneof=local staging production"`
	Port     string `env:"PORT" envDefault:"5000" validate:"required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn error"`

	DatabaseURL string `env:"DATABASE_URL,required" validate:"required"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10" validate:"min=1,max=100"`

	MetricsPort string `env:"METRICS_PORT" envDefault:"9090"`

	JWTSecret  string `env:"JWT_SECRET,required" validate:"required,min=32"`
	BcryptCost int    `env:"BCRYPT_COST" envDefault:"10" validate:"min=10,max=14"`

	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:3000" validate:"required,url"`

	APIRateLimit   int           `env:"API_RATE_LIMIT" envDefault:"100" validate:"min=1"`
	APIRateWindow  time.Duration `env:"API_RATE_WINDOW" envDefault:"15m" validate:"min=1s"`
	AuthRateLimit  int           `env:"AUTH_RATE_LIMIT" envDefault:"50" validate:"min=1"`
	AuthRateWindow time.Duration `env:"AUTH_RATE_WINDOW" envDefault:"1h" validate:"min=1s"`
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
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Deployed reports whether the process serves real traffic over HTTPS.
func (c *Config) Deployed() bool {
	return c.Env != "local"
}
