package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/stewardly/ledger-api/config"
	"github.com/stewardly/ledger-api/internal/adapters/devauth"
	"github.com/stewardly/ledger-api/internal/adapters/oidc"
	"github.com/stewardly/ledger-api/internal/adapters/passwordauth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// IdentityStack bundles the identity source for the configured auth mode,
// plus the optional SSO provider layered on top of it.
type IdentityStack struct {
	Source ports.IdentitySource

	// SSO is non-nil only in OIDC mode.
	SSO ports.SSOProvider

	// Credentials is non-nil when the source stores local passwords,
	// which enables the password-reset flow.
	Credentials ports.CredentialStore

	// Mock reports whether the source is the in-process dev identity.
	// The HTTP layer uses a tracker-backed state source in that case.
	Mock bool
}

// IdentityStackConfig contains configuration for the identity stack.
type IdentityStackConfig struct {
	Auth        config.AuthConfig
	Credentials ports.CredentialStore
	Logger      *slog.Logger
}

// BuildIdentityStack creates the identity source for the configured auth
// mode. OIDC mode performs a discovery fetch against the issuer, so it
// requires network access at startup.
func BuildIdentityStack(cfg IdentityStackConfig) (IdentityStack, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Auth.Mode {
	case config.AuthModeMock:
		return buildMockStack(cfg, logger), nil

	case config.AuthModeOIDC:
		return buildOIDCStack(cfg, logger)

	case config.AuthModePassword:
		return buildPasswordStack(cfg, logger)

	default:
		return IdentityStack{}, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildMockStack(cfg IdentityStackConfig, logger *slog.Logger) IdentityStack {
	prov := devauth.NewProvider(devauth.Config{
		IdentityID: cfg.Auth.DevAuth.IdentityID,
		Email:      cfg.Auth.DevAuth.Email,
		AutoSignIn: true,
	})
	logger.Warn("mock auth mode enabled; do not use in production",
		"identity", cfg.Auth.DevAuth.Email)
	return IdentityStack{Source: prov, Mock: true}
}

func buildPasswordStack(cfg IdentityStackConfig, logger *slog.Logger) (IdentityStack, error) {
	if cfg.Credentials == nil {
		return IdentityStack{}, fmt.Errorf("password auth mode requires a credential store")
	}
	prov := passwordauth.NewProvider(cfg.Credentials, logger)
	return IdentityStack{Source: prov, Credentials: cfg.Credentials}, nil
}

func buildOIDCStack(cfg IdentityStackConfig, logger *slog.Logger) (IdentityStack, error) {
	// Local credentials remain usable alongside SSO.
	base, err := buildPasswordStack(cfg, logger)
	if err != nil {
		return IdentityStack{}, err
	}

	oc := cfg.Auth.OIDC
	if oc.DiscoveryURL == "" || oc.ClientID == "" || oc.ClientSecret == "" {
		logger.Warn("OIDC auth mode selected but required config missing; SSO disabled",
			"discovery_url_empty", oc.DiscoveryURL == "",
			"client_id_empty", oc.ClientID == "",
			"client_secret_empty", oc.ClientSecret == "",
		)
		return base, nil
	}

	prov, err := oidc.NewProvider(oidc.ProviderConfig{
		ClientID:     oc.ClientID,
		ClientSecret: oc.ClientSecret,
		RedirectURL:  oc.RedirectURL,
		Scope:        oc.Scope,
		DiscoveryURL: oc.DiscoveryURL,
	})
	if err != nil {
		return IdentityStack{}, fmt.Errorf("initialise OIDC provider: %w", err)
	}

	base.SSO = prov
	return base, nil
}
