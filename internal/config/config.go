// Package config loads mealmax settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the runtime settings for the server and CLI.
type Config struct {
	DBPath          string        `env:"MEALMAX_DB_PATH" envDefault:"meal_max.db"`
	CreateTablePath string        `env:"SQL_CREATE_TABLE_PATH" envDefault:"/app/sql/create_meal_table.sql"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	Port            int           `env:"MEALMAX_PORT" envDefault:"8080"`
	AdminPort       int           `env:"MEALMAX_ADMIN_PORT" envDefault:"8383"`
	ShutdownTimeout time.Duration `env:"MEALMAX_SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses a Config from the environment and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db path is required")
	}
	if strings.TrimSpace(c.CreateTablePath) == "" {
		return fmt.Errorf("create table script path is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.AdminPort <= 0 || c.AdminPort > 65535 {
		return fmt.Errorf("invalid admin port %d", c.AdminPort)
	}
	if c.Port == c.AdminPort {
		return fmt.Errorf("port and admin port must differ")
	}
	return nil
}
