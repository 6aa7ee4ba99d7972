package passwordauth

// Package passwordauth implements the production IdentitySource backed by
// locally stored bcrypt credentials.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// Provider implements ports.IdentitySource against a CredentialStore.
type Provider struct {
	creds  ports.CredentialStore
	logger *slog.Logger

	mu        sync.Mutex
	current   *domainauth.Identity
	listeners map[int]ports.IdentityListener
	nextID    int
}

var _ ports.IdentitySource = (*Provider)(nil)

// NewProvider creates a password identity source.
func NewProvider(creds ports.CredentialStore, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		creds:     creds,
		logger:    logger.With("component", "passwordauth"),
		listeners: make(map[int]ports.IdentityListener),
	}
}

// Subscribe registers a listener and invokes it immediately with the
// current identity.
func (p *Provider) Subscribe(listener ports.IdentityListener) ports.UnsubscribeFunc {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = listener
	current := cloneIdentity(p.current)
	p.mu.Unlock()

	listener(current)

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// SignIn verifies the password against the stored bcrypt hash. Unknown
// emails and wrong passwords both map to ErrInvalidCredentials so the
// response does not reveal which one failed.
func (p *Provider) SignIn(ctx context.Context, email, password string) (domainauth.Identity, error) {
	cred, err := p.creds.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ports.ErrIdentityNotFound) {
			return domainauth.Identity{}, ports.ErrInvalidCredentials
		}
		return domainauth.Identity{}, fmt.Errorf("look up credential: %w", err)
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)) != nil {
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}

	ident := cred.Identity()
	p.publish(&ident)
	return ident, nil
}

// SignUp registers a new credential and signs it in.
func (p *Provider) SignUp(ctx context.Context, email, password string, _ ports.SignUpFields) (domainauth.Identity, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return domainauth.Identity{}, errors.New("a valid email is required")
	}
	if len(password) < minPasswordLen {
		return domainauth.Identity{}, ports.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domainauth.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	cred, err := p.creds.Create(ctx, domainauth.Credential{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		return domainauth.Identity{}, err
	}

	ident := cred.Identity()
	p.publish(&ident)
	return ident, nil
}

// SignOut publishes a signed-out state for the identity.
func (p *Provider) SignOut(_ context.Context, identityID string) error {
	p.mu.Lock()
	if p.current != nil && (identityID == "" || p.current.ID == identityID) {
		p.current = nil
		p.notifyLocked()
	}
	p.mu.Unlock()
	return nil
}

// SendPasswordReset logs the request. Actual token issuance and delivery
// happen in the session service, which owns the ResetTokenStore; the
// response never reveals whether the email is registered.
func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	_, err := p.creds.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ports.ErrIdentityNotFound) {
		return fmt.Errorf("look up credential: %w", err)
	}
	p.logger.InfoContext(ctx, "password reset requested", "known", err == nil)
	return nil
}

// ChangePassword verifies the current password and replaces the hash.
func (p *Provider) ChangePassword(ctx context.Context, identityID, current, next string) error {
	cred, err := p.creds.GetByID(ctx, identityID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(current)) != nil {
		return ports.ErrInvalidCredentials
	}
	return p.setPassword(ctx, identityID, next)
}

// ResetPassword replaces the hash without the current password. Callers must
// have consumed a valid reset token first.
func (p *Provider) ResetPassword(ctx context.Context, identityID, next string) error {
	return p.setPassword(ctx, identityID, next)
}

func (p *Provider) setPassword(ctx context.Context, identityID, password string) error {
	if len(password) < minPasswordLen {
		return ports.ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return p.creds.UpdatePassword(ctx, identityID, hash)
}

func (p *Provider) publish(ident *domainauth.Identity) {
	p.mu.Lock()
	p.current = cloneIdentity(ident)
	p.notifyLocked()
	p.mu.Unlock()
}

// notifyLocked delivers the current identity to every listener.
// Caller must hold p.mu.
func (p *Provider) notifyLocked() {
	current := cloneIdentity(p.current)
	for _, l := range p.listeners {
		l(current)
	}
}

func cloneIdentity(ident *domainauth.Identity) *domainauth.Identity {
	if ident == nil {
		return nil
	}
	c := *ident
	return &c
}
