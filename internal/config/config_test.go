package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AQUAWATCH_POSTGRES_DSN", "postgres://localhost/aquawatch_test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != "8080" {
		t.Errorf("default port = %q, want 8080", cfg.HTTP.Port)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("default redis addr = %q", cfg.Redis.Addr)
	}
	if cfg.Device.Timeout != 5*time.Second {
		t.Errorf("default device timeout = %v, want 5s", cfg.Device.Timeout)
	}
	if cfg.Device.Retries != 2 {
		t.Errorf("default device retries = %d, want 2", cfg.Device.Retries)
	}
	if cfg.Device.RetryDelay != time.Second {
		t.Errorf("default retry delay = %v, want 1s", cfg.Device.RetryDelay)
	}
	if cfg.HTTPAddress() != ":8080" {
		t.Errorf("HTTPAddress() = %q, want :8080", cfg.HTTPAddress())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AQUAWATCH_POSTGRES_DSN", "postgres://db/aquawatch")
	t.Setenv("AQUAWATCH_HTTP_PORT", "9090")
	t.Setenv("AQUAWATCH_DEVICE_TIMEOUT", "2s")
	t.Setenv("AQUAWATCH_DEVICE_RETRIES", "5")
	t.Setenv("AQUAWATCH_ALLOWED_ORIGINS", "https://one.example, https://two.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTP.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.HTTP.Port)
	}
	if cfg.Device.Timeout != 2*time.Second {
		t.Errorf("device timeout = %v, want 2s", cfg.Device.Timeout)
	}
	if cfg.Device.Retries != 5 {
		t.Errorf("device retries = %d, want 5", cfg.Device.Retries)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "https://two.example" {
		t.Errorf("allowed origins = %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("AQUAWATCH_POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load must fail without a database DSN")
	}
}
