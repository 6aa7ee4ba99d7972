package config

import (
	"fmt"
	"strings"
	"time"
)

// AuthMode represents the authentication mode for the application.
type AuthMode string

const (
	// AuthModePassword uses local email/password credentials.
	AuthModePassword AuthMode = "password"
	// AuthModeOIDC delegates authentication to an OIDC identity provider.
	AuthModeOIDC AuthMode = "oidc"
	// AuthModeMock uses a config-driven identity (for development only).
	AuthModeMock AuthMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "password", "oidc", "mock":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: password, oidc, mock)", v)
	}
}

// OIDCConfig contains OIDC configuration (used when Mode=oidc).
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL"  envDefault:"http://localhost:8080/auth/callback"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// DevAuthConfig controls the mock identity used when Mode=mock.
type DevAuthConfig struct {
	IdentityID string `env:"IDENTITY_ID" envDefault:"dev-user"`
	Email      string `env:"EMAIL"       envDefault:"dev@example.com"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which identity source to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"password"`

	// AdminEmail is the one designated email entitled to the admin role.
	// The resolver self-heals the stored role for this identity on every
	// resolution, so a manual demotion never sticks.
	AdminEmail string `env:"AUTH_ADMIN_EMAIL,required"`

	// SessionTTL bounds the lifetime of server-side sessions.
	SessionTTL time.Duration `env:"AUTH_SESSION_TTL" envDefault:"12h"`

	// ResetTokenTTL bounds the lifetime of password-reset tokens.
	ResetTokenTTL time.Duration `env:"AUTH_RESET_TOKEN_TTL" envDefault:"30m"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// DevAuth configuration (used when Mode=mock).
	DevAuth DevAuthConfig `envPrefix:"DEV_AUTH_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	a.AdminEmail = strings.ToLower(strings.TrimSpace(a.AdminEmail))
	if a.SessionTTL <= 0 {
		a.SessionTTL = 12 * time.Hour
	}
	if a.ResetTokenTTL <= 0 {
		a.ResetTokenTTL = 30 * time.Minute
	}
}
