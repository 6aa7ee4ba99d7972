package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	"github.com/stewardly/ledger-api/internal/ports"
)

const (
	defaultSessionTTL    = 12 * time.Hour
	defaultResetTokenTTL = 30 * time.Minute
)

// SessionServiceConfig groups tunables for SessionService.
type SessionServiceConfig struct {
	SessionTTL    time.Duration
	ResetTokenTTL time.Duration
}

// SessionServiceOptions groups dependencies for SessionService.
type SessionServiceOptions struct {
	Source      ports.IdentitySource
	Resolver    *RoleResolver
	Sessions    ports.SessionStore
	ResetTokens ports.ResetTokenStore // optional; password reset disabled when nil
	Credentials ports.CredentialStore // optional; needed to mint reset tokens
	Config      SessionServiceConfig
	Logger      *slog.Logger
}

// passwordResetter is implemented by identity sources that hold local
// credentials and can replace a password directly.
type passwordResetter interface {
	ResetPassword(ctx context.Context, identityID, next string) error
}

// SessionService owns the server-side session lifecycle: it signs
// identities in and out through the identity source, resolves their role,
// and persists `{identity, role, seq}` per opaque session token. Each
// token carries a monotonic sequence number; the session store rejects
// writes from superseded operations.
type SessionService struct {
	source      ports.IdentitySource
	resolver    *RoleResolver
	sessions    ports.SessionStore
	resetTokens ports.ResetTokenStore
	credentials ports.CredentialStore
	cfg         SessionServiceConfig
	logger      *slog.Logger
}

// NewSessionService constructs a SessionService.
func NewSessionService(opts SessionServiceOptions) *SessionService {
	if opts.Source == nil {
		panic("service: SessionService requires an identity source")
	}
	if opts.Resolver == nil {
		panic("service: SessionService requires a role resolver")
	}
	if opts.Sessions == nil {
		panic("service: SessionService requires a session store")
	}
	cfg := opts.Config
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = defaultResetTokenTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionService{
		source:      opts.Source,
		resolver:    opts.Resolver,
		sessions:    opts.Sessions,
		resetTokens: opts.ResetTokens,
		credentials: opts.Credentials,
		cfg:         cfg,
		logger:      logger.With("component", "session_service"),
	}
}

// SignIn authenticates the credentials and opens a session. Credential
// failures surface as the typed ports errors; a store failure during role
// resolution aborts the sign-in rather than guessing a role.
func (s *SessionService) SignIn(ctx context.Context, email, password string) (domainauth.Session, error) {
	identity, err := s.source.SignIn(ctx, email, password)
	if err != nil {
		return domainauth.Session{}, err
	}

	role, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable,
			"could not determine account access, try again")
	}

	return s.openSession(ctx, identity, role)
}

// SignUp registers a new identity, creates its profile, and opens a session.
func (s *SessionService) SignUp(ctx context.Context, email, password string, fields ports.SignUpFields) (domainauth.Session, error) {
	identity, err := s.source.SignUp(ctx, email, password, fields)
	if err != nil {
		return domainauth.Session{}, err
	}

	role, err := s.resolver.ResolveNew(ctx, identity, fields)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable,
			"could not determine account access, try again")
	}

	return s.openSession(ctx, identity, role)
}

// Establish opens a session for an identity authenticated elsewhere, such
// as an SSO callback.
func (s *SessionService) Establish(ctx context.Context, identity domainauth.Identity) (domainauth.Session, error) {
	role, err := s.resolver.Resolve(ctx, identity)
	if err != nil {
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeUnavailable,
			"could not determine account access, try again")
	}
	return s.openSession(ctx, identity, role)
}

func (s *SessionService) openSession(ctx context.Context, identity domainauth.Identity, role domainauth.Role) (domainauth.Session, error) {
	sess := domainauth.Session{
		Token:         uuid.NewString(),
		IdentityID:    identity.ID,
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
		Role:          role,
		Seq:           1,
		ExpiresAt:     time.Now().Add(s.cfg.SessionTTL),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return domainauth.Session{}, fmt.Errorf("save session: %w", err)
	}
	s.logger.InfoContext(ctx, "session opened",
		"identity_id", identity.ID, "role", string(role))
	return sess, nil
}

// GetSession loads the session for the token.
func (s *SessionService) GetSession(ctx context.Context, token string) (domainauth.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Refresh re-resolves the session's role from the profile store, picking up
// approvals and role changes, and extends its expiry. The sequence number
// increments so a concurrent stale refresh cannot win.
func (s *SessionService) Refresh(ctx context.Context, token string) (domainauth.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		return domainauth.Session{}, err
	}

	role, err := s.resolver.Resolve(ctx, domainauth.Identity{
		ID:            sess.IdentityID,
		Email:         sess.Email,
		EmailVerified: sess.EmailVerified,
	})
	if err != nil {
		// Keep serving the stored role; the next refresh retries fresh.
		s.logger.WarnContext(ctx, "refresh resolution failed, keeping stored role",
			"identity_id", sess.IdentityID, "err", err)
		return sess, nil
	}

	sess.Role = role
	sess.Seq++
	sess.ExpiresAt = time.Now().Add(s.cfg.SessionTTL)
	if saveErr := s.sessions.Save(ctx, sess); saveErr != nil {
		if errors.Is(saveErr, ports.ErrStaleSession) {
			// A newer operation won; serve its state instead.
			return s.sessions.Get(ctx, token)
		}
		return domainauth.Session{}, fmt.Errorf("save refreshed session: %w", saveErr)
	}
	return sess, nil
}

// SignOut closes the session. Unknown tokens are a no-op.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	if srcErr := s.source.SignOut(ctx, sess.IdentityID); srcErr != nil {
		s.logger.WarnContext(ctx, "identity source sign-out failed",
			"identity_id", sess.IdentityID, "err", srcErr)
	}
	if delErr := s.sessions.Delete(ctx, token); delErr != nil {
		return fmt.Errorf("delete session: %w", delErr)
	}
	s.logger.InfoContext(ctx, "session closed", "identity_id", sess.IdentityID)
	return nil
}

// RequestPasswordReset issues a single-use reset token for the email and
// notifies the identity source. The returned token is for development
// surfaces only; the HTTP response never includes it, and the call reveals
// nothing about whether the email is registered.
func (s *SessionService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	if s.resetTokens == nil {
		return "", apperrors.Unavailable("password reset is not enabled")
	}
	if s.credentials == nil {
		return "", apperrors.Unavailable("password reset is not enabled")
	}
	if err := s.source.SendPasswordReset(ctx, email); err != nil {
		return "", err
	}

	cred, err := s.credentials.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrIdentityNotFound) {
			// Unknown email: succeed without storing anything.
			return "", nil
		}
		return "", fmt.Errorf("look up credential: %w", err)
	}

	token := uuid.NewString()
	if err := s.resetTokens.Put(ctx, token, cred.ID, s.cfg.ResetTokenTTL); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *SessionService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.resetTokens == nil {
		return apperrors.Unavailable("password reset is not enabled")
	}
	resetter, ok := s.source.(passwordResetter)
	if !ok {
		return apperrors.Unavailable("the identity provider does not support local password reset")
	}

	identityID, err := s.resetTokens.Consume(ctx, token)
	if err != nil {
		if errors.Is(err, ports.ErrResetTokenNotFound) {
			return apperrors.Validation("reset link is invalid or has expired")
		}
		return err
	}
	return resetter.ResetPassword(ctx, identityID, newPassword)
}
