package config

import (
	"context"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("MKT_AUTH_JWT_SECRET", "test-secret")

	cfg, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unexpected log level: %s", cfg.LogLevel)
	}
	if cfg.RateBurst != 20 || cfg.RatePerSec != 10 {
		t.Fatalf("unexpected rate defaults: %d/%d", cfg.RateBurst, cfg.RatePerSec)
	}
}

func TestLoadRequiresAuthConfig(t *testing.T) {
	t.Setenv("MKT_AUTH_JWT_SECRET", "")
	t.Setenv("MKT_AUTH_PROVIDER_URL", "")

	if _, err := Load(context.Background()); err == nil {
		t.Fatal("expected error when no auth configuration is present")
	}
}
