package devauth

// Package devauth provides a config-driven, in-memory IdentitySource for
// local development. State lives in process memory and resets on restart.

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// Config controls the dev identity source.
type Config struct {
	// IdentityID and Email seed a pre-registered account; both optional.
	IdentityID string
	Email      string

	// AutoSignIn signs the seeded account in at startup so a fresh dev
	// server comes up already authenticated.
	AutoSignIn bool
}

// Provider implements ports.IdentitySource for local development.
// Any password is accepted for the seeded account; accounts created through
// SignUp remember their password for the lifetime of the process.
type Provider struct {
	mu        sync.Mutex
	accounts  map[string]account // keyed by lowercase email
	current   *domainauth.Identity
	listeners map[int]ports.IdentityListener
	nextID    int
}

type account struct {
	identity domainauth.Identity
	password string // empty means any password is accepted
}

var _ ports.IdentitySource = (*Provider)(nil)

// NewProvider constructs a dev identity source from Config.
func NewProvider(cfg Config) *Provider {
	p := &Provider{
		accounts:  make(map[string]account),
		listeners: make(map[int]ports.IdentityListener),
	}
	if cfg.Email != "" {
		id := cfg.IdentityID
		if id == "" {
			id = uuid.NewString()
		}
		seeded := domainauth.Identity{
			ID:            id,
			Email:         normalizeEmail(cfg.Email),
			EmailVerified: true,
		}
		p.accounts[seeded.Email] = account{identity: seeded}
		if cfg.AutoSignIn {
			ident := seeded
			p.current = &ident
		}
	}
	return p
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

func (p *Provider) SignIn(_ context.Context, email, password string) (domainauth.Identity, error) {
	p.mu.Lock()
	acct, ok := p.accounts[normalizeEmail(email)]
	if !ok || (acct.password != "" && acct.password != password) {
		p.mu.Unlock()
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}
	ident := acct.identity
	p.current = &ident
	p.notifyLocked()
	p.mu.Unlock()
	return ident, nil
}

func (p *Provider) SignUp(_ context.Context, email, password string, _ ports.SignUpFields) (domainauth.Identity, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domainauth.Identity{}, errors.New("email is required")
	}
	if len(password) < 8 {
		return domainauth.Identity{}, ports.ErrWeakPassword
	}

	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return domainauth.Identity{}, ports.ErrEmailInUse
	}
	ident := domainauth.Identity{
		ID:            uuid.NewString(),
		Email:         email,
		EmailVerified: true,
	}
	p.accounts[email] = account{identity: ident, password: password}
	p.current = &ident
	p.notifyLocked()
	p.mu.Unlock()
	return ident, nil
}

func (p *Provider) SignOut(_ context.Context, identityID string) error {
	p.mu.Lock()
	if p.current != nil && (identityID == "" || p.current.ID == identityID) {
		p.current = nil
		p.notifyLocked()
	}
	p.mu.Unlock()
	return nil
}

// SendPasswordReset is a no-op in development. It never reveals whether the
// email is registered.
func (p *Provider) SendPasswordReset(_ context.Context, _ string) error {
	return nil
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

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
