package config

import (
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAuthMode_UnmarshalText(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expected    AuthMode
		expectError bool
	}{
		{name: "password", input: "password", expected: AuthModePassword},
		{name: "oidc", input: "oidc", expected: AuthModeOIDC},
		{name: "mock", input: "mock", expected: AuthModeMock},
		{name: "mixed case", input: "Password", expected: AuthModePassword},
		{name: "invalid", input: "ldap", expectError: true},
		{name: "empty", input: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var mode AuthMode
			err := mode.UnmarshalText([]byte(tt.input))
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for input %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mode != tt.expected {
				t.Fatalf("got %q, want %q", mode, tt.expected)
			}
		})
	}
}

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("AUTH_ADMIN_EMAIL", "Finance.Admin@Example.org ")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.Auth.Mode != AuthModePassword {
		t.Errorf("default auth mode = %q, want password", cfg.Auth.Mode)
	}
	if cfg.Auth.AdminEmail != "finance.admin@example.org" {
		t.Errorf("admin email not normalized: %q", cfg.Auth.AdminEmail)
	}
	if cfg.Auth.SessionTTL != 12*time.Hour {
		t.Errorf("default session TTL = %v", cfg.Auth.SessionTTL)
	}
	if cfg.Postgres.Host != "localhost" || cfg.Postgres.Port != 5432 {
		t.Errorf("unexpected postgres defaults: %s:%d", cfg.Postgres.Host, cfg.Postgres.Port)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("unexpected http addr default: %q", cfg.HTTP.Addr)
	}
}

func TestAppConfig_AdminEmailRequired(t *testing.T) {
	// No AUTH_ADMIN_EMAIL in the environment.
	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatal("expected parse to fail without AUTH_ADMIN_EMAIL")
	}
}

func TestAuthConfig_SanitizeGuardrails(t *testing.T) {
	cfg := AuthConfig{AdminEmail: "A@B.C", SessionTTL: -time.Hour, ResetTokenTTL: 0}
	cfg.Sanitize()

	if cfg.SessionTTL != 12*time.Hour {
		t.Errorf("session TTL not clamped: %v", cfg.SessionTTL)
	}
	if cfg.ResetTokenTTL != 30*time.Minute {
		t.Errorf("reset token TTL not clamped: %v", cfg.ResetTokenTTL)
	}
	if cfg.AdminEmail != "a@b.c" {
		t.Errorf("admin email not lowercased: %q", cfg.AdminEmail)
	}
}
