package config

import (
	"fmt"
	"strings"
	"time"

	pkgconfig "github.com/steve-ongera/amazon/pkg/config"
)

// Config holds all configuration for the storefront client.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Storefront API
	APIBaseURL string        `env:"API_BASE_URL" envDefault:"http://localhost:8000/api"`
	APITimeout time.Duration `env:"API_TIMEOUT" envDefault:"30s"`

	// Credential storage: "memory", "file", or "redis"
	CredStore     string `env:"CRED_STORE" envDefault:"file"`
	CredFilePath  string `env:"CRED_FILE_PATH" envDefault:".storefront/credentials.json"`
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass     string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisKeySpace string `env:"REDIS_KEYSPACE" envDefault:"storefront:session"`

	// M-Pesa payment polling
	PaymentPollInterval time.Duration `env:"PAYMENT_POLL_INTERVAL" envDefault:"3s"`
	PaymentMaxAttempts  int           `env:"PAYMENT_MAX_ATTEMPTS" envDefault:"20"`

	// Tracing
	TracingEnabled  bool   `env:"TRACING_ENABLED" envDefault:"false"`
	TracingEndpoint string `env:"TRACING_ENDPOINT" envDefault:"localhost:4318"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if !strings.HasPrefix(c.APIBaseURL, "http://") && !strings.HasPrefix(c.APIBaseURL, "https://") {
		return fmt.Errorf("invalid API base URL: %q", c.APIBaseURL)
	}
	switch c.CredStore {
	case "memory", "file", "redis":
	default:
		return fmt.Errorf("invalid credential store: %q", c.CredStore)
	}
	if c.PaymentMaxAttempts < 1 {
		return fmt.Errorf("invalid payment max attempts: %d", c.PaymentMaxAttempts)
	}
	return nil
}
