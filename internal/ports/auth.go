package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration
// in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
)

// ErrProfileNotFound is returned by ProfileStore.Get when no profile exists
// for the identity.
var ErrProfileNotFound = errors.New("profile not found")

// ErrSessionNotFound is returned by SessionStore.Get for unknown or expired
// tokens.
var ErrSessionNotFound = errors.New("session not found")

// ErrResetTokenNotFound is returned by ResetTokenStore.Consume for unknown,
// expired, or already consumed tokens.
var ErrResetTokenNotFound = errors.New("reset token not found")

// ErrStaleSession is returned by SessionStore.Save when the stored session
// carries a newer sequence number than the one being written.
var ErrStaleSession = errors.New("session write superseded by a newer event")

// ErrIdentityNotFound is returned by CredentialStore lookups for unknown
// identities.
var ErrIdentityNotFound = errors.New("identity not found")

// Typed authentication failures. These are surfaced verbatim to the
// initiating form and are never conflated with authorization state.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailInUse         = errors.New("email is already registered")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
)

// IdentityListener receives the current identity (or nil when signed out)
// immediately on subscription and again on every change.
type IdentityListener func(identity *domainauth.Identity)

// UnsubscribeFunc removes a previously registered identity listener.
type UnsubscribeFunc func()

// SignUpFields carries the optional display fields collected at sign-up.
type SignUpFields struct {
	FirstName string
	LastName  string
	Phone     string
}

// IdentitySource is the authentication provider: it reports the current
// signed-in identity whenever it changes and exposes credential primitives.
// Failures from the credential primitives are the typed errors above.
type IdentitySource interface {
	// Subscribe registers a listener, invoking it immediately with the
	// current identity, and returns an unregister handle.
	Subscribe(listener IdentityListener) UnsubscribeFunc

	SignIn(ctx context.Context, email, password string) (domainauth.Identity, error)
	SignUp(ctx context.Context, email, password string, fields SignUpFields) (domainauth.Identity, error)
	SignOut(ctx context.Context, identityID string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// ProfileStore persists and retrieves profiles keyed by identity ID.
// Merge is a partial update: unspecified fields are never clobbered.
type ProfileStore interface {
	Get(ctx context.Context, identityID string) (domainauth.Profile, error)
	Create(ctx context.Context, profile domainauth.Profile) (domainauth.Profile, error)
	Merge(ctx context.Context, identityID string, patch domainauth.ProfilePatch) (domainauth.Profile, error)
	Delete(ctx context.Context, identityID string) error
	ListByRole(ctx context.Context, role domainauth.Role) ([]domainauth.Profile, error)
	ListActive(ctx context.Context) ([]domainauth.Profile, error)
}

// AdminProfileStore is the access layer for administrative profile
// mutations. Implementations must enforce the actor's role themselves;
// handler- or service-level checks are never the only line of defense.
type AdminProfileStore interface {
	Approve(ctx context.Context, actor domainauth.SessionState, profileID string) (domainauth.Profile, error)
	Deny(ctx context.Context, actor domainauth.SessionState, profileID string) error
	ChangeRole(ctx context.Context, actor domainauth.SessionState, profileID string, role domainauth.Role) (domainauth.Profile, error)
}

// CredentialStore persists local login credentials for password
// authentication. Create returns ErrEmailInUse when the email is taken;
// lookups return ErrIdentityNotFound for unknown identities.
type CredentialStore interface {
	Create(ctx context.Context, cred domainauth.Credential) (domainauth.Credential, error)
	GetByEmail(ctx context.Context, email string) (domainauth.Credential, error)
	GetByID(ctx context.Context, identityID string) (domainauth.Credential, error)
	UpdatePassword(ctx context.Context, identityID string, passwordHash []byte) error
}

// SessionStore persists server-side sessions keyed by opaque token.
// Save must reject writes whose Seq is lower than the stored session's
// Seq with ErrStaleSession.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, token string) (domainauth.Session, error)
	Delete(ctx context.Context, token string) error
}

// ResetTokenStore holds short-lived password-reset tokens.
type ResetTokenStore interface {
	Put(ctx context.Context, token, identityID string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (identityID string, err error)
}

// SSOBeginInput carries inputs for initiating an SSO auth flow.
type SSOBeginInput struct {
	RedirectURL string
}

// SSOExchangeInput groups parameters for the code/token exchange.
type SSOExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// SSOProvider initiates and completes an authentication flow against an
// external identity provider. Used when the deployment delegates
// authentication instead of holding local credentials.
type SSOProvider interface {
	// Begin starts the login flow and returns the provider auth URL, an
	// opaque state, and a nonce.
	Begin(ctx context.Context, in SSOBeginInput) (authURL, state, nonce string, err error)

	// Exchange completes the login flow, verifying state and nonce, and
	// returns the authenticated identity.
	Exchange(ctx context.Context, in SSOExchangeInput) (domainauth.Identity, error)
}
