// Package config loads process configuration from the environment.
// All external client handles are constructed from this struct in cmd/api,
// never from module-level state.
package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// Config is the full runtime configuration of the marketplace API.
type Config struct {
	Addr     string `env:"MKT_ADDR, default=:8080"`
	Env      string `env:"MKT_ENV, default=development"`
	LogLevel string `env:"MKT_LOG_LEVEL, default=info"`

	// PostgresDSN is optional; without it the service runs on in-memory
	// stores, which is only useful for local development and tests.
	PostgresDSN string `env:"MKT_PG_DSN"`

	Auth    AuthConfig
	Billing BillingConfig

	RateBurst  int `env:"MKT_RATE_BURST, default=20"`
	RatePerSec int `env:"MKT_RATE_PER_SEC, default=10"`
}

// AuthConfig describes the hosted auth provider.
type AuthConfig struct {
	// ProviderURL is the base URL of the hosted auth provider.
	ProviderURL string `env:"MKT_AUTH_PROVIDER_URL"`
	// ProviderKey is the API key sent with every provider request.
	ProviderKey string `env:"MKT_AUTH_PROVIDER_KEY"`
	// JWTSecret, when set, lets the service verify provider-issued access
	// tokens locally instead of calling the provider per request.
	JWTSecret string `env:"MKT_AUTH_JWT_SECRET"`
}

// BillingConfig maps the payment provider's price ids onto subscription tiers.
type BillingConfig struct {
	Tier1PriceID string `env:"MKT_BILLING_TIER1_PRICE_ID"`
	Tier2PriceID string `env:"MKT_BILLING_TIER2_PRICE_ID"`
	Tier3PriceID string `env:"MKT_BILLING_TIER3_PRICE_ID"`
}

// Load reads configuration from the environment.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Auth.JWTSecret == "" && cfg.Auth.ProviderURL == "" {
		return nil, fmt.Errorf("load config: one of MKT_AUTH_JWT_SECRET or MKT_AUTH_PROVIDER_URL is required")
	}
	return &cfg, nil
}
