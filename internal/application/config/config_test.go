package config

import (
	"os"
	"testing"
	"time"
)

func TestNewDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.SaveInterval != 2*time.Second {
		t.Errorf("SaveInterval = %v, want 2s", cfg.SaveInterval)
	}
	if cfg.Postgres.Name != "sharepad" {
		t.Errorf("Postgres.Name = %q, want sharepad", cfg.Postgres.Name)
	}
}

func TestNewRequiresJWTSecret(t *testing.T) {
	// t.Setenv registers the restore; unset to simulate a missing var.
	t.Setenv("JWT_SECRET", "placeholder")
	os.Unsetenv("JWT_SECRET")

	if _, err := New(); err == nil {
		t.Fatal("New succeeded without JWT_SECRET")
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{
		Host:     "db",
		Port:     5432,
		User:     "app",
		Password: "pw",
		Name:     "sharepad",
		SSL:      "disable",
	}

	want := "postgresql://app:pw@db:5432/sharepad?sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	p.URL = "postgresql://override"
	if got := p.DSN(); got != "postgresql://override" {
		t.Errorf("DSN() with URL = %q, want the override", got)
	}
}
