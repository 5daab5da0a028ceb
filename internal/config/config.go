// Package config loads portal configuration from environment variables,
// with optional .env file support for local development.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-based configuration for the portal.
type Config struct {
	// HTTP server
	Host string `env:"HOST" envDefault:"127.0.0.1"`
	Port string `env:"PORT" envDefault:"8080"`

	// BaseURL is the externally reachable URL of this service, used to
	// build OAuth redirect and Stripe success/cancel URLs.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Identity provider (Auth0-style)
	Auth0Domain       string `env:"AUTH0_DOMAIN"`
	Auth0ClientID     string `env:"AUTH0_CLIENT_ID"`
	Auth0ClientSecret string `env:"AUTH0_CLIENT_SECRET"`

	// Payment processor
	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripePublishableKey string `env:"STRIPE_PUBLISHABLE_KEY"`
	StripeWebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`

	// Storage
	DBPath string `env:"DB_PATH" envDefault:"portal.db"`
	KVPath string `env:"KV_PATH" envDefault:"portal-kv.db"`

	// Plan catalog file. When empty, built-in defaults are used.
	PlansFile string `env:"PLANS_FILE"`

	// Web session lifetime
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"12h"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// Load reads configuration from environment variables.
// It first attempts to load a .env file if present, then parses env vars.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}

	if c.Auth0ClientID == "" {
		return fmt.Errorf("AUTH0_CLIENT_ID is required")
	}

	if c.Auth0ClientSecret == "" {
		return fmt.Errorf("AUTH0_CLIENT_SECRET is required")
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	return nil
}

// ListenAddr returns the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.Host + ":" + c.Port
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
