// Package config loads server configuration from the environment.
//
// Every knob is an environment variable with a sane default, parsed into a
// single struct via caarlos0/env. main.go loads an optional .env file first
// (godotenv), so local development needs no exported shell variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration.
//
// JWT_SECRET has no default on purpose — issuing tokens signed with a
// well-known secret would make every deployment's sessions forgeable.
type Config struct {
	Port       int           `env:"PORT" envDefault:"8080"`
	DBPath     string        `env:"DB_PATH" envDefault:"data/calendar.db"`
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"15m"`
	BcryptCost int           `env:"BCRYPT_COST" envDefault:"12"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing environment: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("config: JWT_SECRET is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("config: invalid PORT %d", cfg.Port)
	}

	return cfg, nil
}
