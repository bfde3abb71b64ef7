package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct using `env` tags.
//
// Example:
//
//	type Config struct {
//	    APIBaseURL string `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
//	    LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
