package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", cfg.Port)
	}
	if cfg.Backend.URL != "http://localhost:8000" {
		t.Fatalf("unexpected backend url %q", cfg.Backend.URL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("expected 15s backend timeout, got %s", cfg.Backend.Timeout)
	}
	if cfg.Redis.PoolSize != 10 || cfg.Redis.Timeout != 3*time.Second {
		t.Fatalf("unexpected redis defaults %+v", cfg.Redis)
	}
	if cfg.Session.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Session.Driver)
	}
	if cfg.Session.CookieSecure {
		t.Fatalf("cookie should not be secure outside production")
	}
	if cfg.UsesMongo() {
		t.Fatalf("defaults should not need mongo")
	}
}

func TestLoad_ProductionForcesSecureCookie(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"ENV":            "production",
		"SESSION_DRIVER": "redis",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.Session.CookieSecure {
		t.Fatalf("expected secure cookie in production")
	}
}

func TestLoad_MongoAudit(t *testing.T) {
	cfg, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"AUDIT_STORE": "mongo",
	}))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !cfg.UsesMongo() {
		t.Fatalf("mongo audit store should require mongo")
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	_, err := load(context.Background(), envconfig.MapLookuper(map[string]string{
		"SESSION_DRIVER": "cookie",
	}))
	if err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}
