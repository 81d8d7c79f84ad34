package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Environment != "production" {
		t.Errorf("expected production, got %q", cfg.App.Environment)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("expected :8080, got %q", cfg.HTTP.Addr)
	}
	if cfg.HTTP.ShutdownTimeout != 15*time.Second {
		t.Errorf("expected 15s shutdown timeout, got %v", cfg.HTTP.ShutdownTimeout)
	}
	if cfg.Database.Path != "" || cfg.Database.SeedDemo {
		t.Errorf("unexpected database defaults: %+v", cfg.Database)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AUDITPLUS_ENV", "development")
	t.Setenv("AUDITPLUS_ACTOR", "admin")
	t.Setenv("AUDITPLUS_HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("AUDITPLUS_HTTP_ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("AUDITPLUS_DB_PATH", "/tmp/audit.db")
	t.Setenv("AUDITPLUS_DB_SEED_DEMO", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.App.Environment != "development" || cfg.App.Actor != "admin" {
		t.Errorf("unexpected app config: %+v", cfg.App)
	}
	if cfg.HTTP.Addr != "127.0.0.1:9000" || len(cfg.HTTP.AllowedOrigins) != 2 {
		t.Errorf("unexpected http config: %+v", cfg.HTTP)
	}
	if cfg.Database.Path != "/tmp/audit.db" || !cfg.Database.SeedDemo {
		t.Errorf("unexpected database config: %+v", cfg.Database)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"bad duration", "AUDITPLUS_HTTP_READ_TIMEOUT", "soon"},
		{"bad bool", "AUDITPLUS_DB_SEED_DEMO", "maybe"},
		{"zero upload cap", "AUDITPLUS_HTTP_MAX_UPLOAD_BYTES", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
