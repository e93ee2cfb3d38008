// Package config loads runtime settings from the process environment, after
// merging an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	defaultEnvFile = ".env"
)

type Config struct {
	Port     string `envconfig:"PORT" default:"5000" validate:"required,numeric"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres memory"`
	DBPath      string `envconfig:"DB_PATH" default:"db.sqlite" validate:"required_if=DBDriver sqlite"`
	DatabaseURL string `envconfig:"DATABASE_URL" validate:"required_if=DBDriver postgres"`

	// StrictNumbers rejects non-numeric price, quantity and id values
	// instead of storing NULL.
	StrictNumbers bool `envconfig:"STRICT_NUMBERS" default:"false"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`

	RateLimitPerMin int           `envconfig:"RATE_LIMIT_PER_MIN" default:"0" validate:"gte=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

// Load reads .env (when present) without overriding variables already set,
// then processes the environment.
func Load() (*Config, error) {
	return LoadFile(defaultEnvFile)
}

func LoadFile(envFile string) (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
