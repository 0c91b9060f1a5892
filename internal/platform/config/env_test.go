package config

import (
	"strings"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

type envTestConfig struct {
	Addr    string        `env:"STOREFRONT_TEST_ADDR" envDefault:"localhost:8090"`
	Timeout time.Duration `env:"STOREFRONT_TEST_TIMEOUT" envDefault:"10s"`
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg envTestConfig

	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "localhost:8090" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, "localhost:8090")
	}
	if cfg.Timeout != 10*time.Second {
		t.Fatalf("Timeout = %v, want %v", cfg.Timeout, 10*time.Second)
	}
}

func TestParseEnvError(t *testing.T) {
	var cfg envTestConfig
	t.Setenv("STOREFRONT_TEST_TIMEOUT", "soon")

	err := ParseEnv(&cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env prefix, got %v", err)
	}
}

func TestParseEnvWithOptionsUsesInjectedEnvironment(t *testing.T) {
	t.Parallel()

	var cfg envTestConfig
	err := ParseEnvWithOptions(&cfg, env.Options{Environment: map[string]string{
		"STOREFRONT_TEST_ADDR": "0.0.0.0:9000",
	}})
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Fatalf("Addr = %q, want %q", cfg.Addr, "0.0.0.0:9000")
	}
}

func TestParseEnvRejectsNilTarget(t *testing.T) {
	t.Parallel()

	if err := ParseEnv(nil); err == nil {
		t.Fatal("expected nil target error")
	}
}
