package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.ProfileStore   = (*MemoryProfileStore)(nil)
	_ ports.SessionStore   = (*MemorySessionStore)(nil)
	_ ports.IdentitySource = (*ScriptedIdentitySource)(nil)
	_ ports.SSOProvider    = (*MockSSOProvider)(nil)
)

// MemoryProfileStore is a thread-safe in-memory ProfileStore with error
// injection and call counters for asserting write behavior.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[string]domainauth.Profile
	order    []string

	// Error injection: when set, the corresponding method fails.
	GetErr    error
	CreateErr error
	MergeErr  error

	// Call counters.
	CreateCalls int
	MergeCalls  int
}

// NewMemoryProfileStore creates a MemoryProfileStore seeded with profiles.
func NewMemoryProfileStore(profiles ...domainauth.Profile) *MemoryProfileStore {
	s := &MemoryProfileStore{profiles: make(map[string]domainauth.Profile)}
	for _, p := range profiles {
		s.profiles[p.ID] = p
		s.order = append(s.order, p.ID)
	}
	return s
}

func (s *MemoryProfileStore) Get(_ context.Context, id string) (domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return domainauth.Profile{}, s.GetErr
	}
	p, ok := s.profiles[id]
	if !ok {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}
	return p, nil
}

func (s *MemoryProfileStore) Create(_ context.Context, p domainauth.Profile) (domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CreateCalls++
	if s.CreateErr != nil {
		return domainauth.Profile{}, s.CreateErr
	}
	if _, exists := s.profiles[p.ID]; exists {
		return domainauth.Profile{}, fmt.Errorf("profile %s already exists", p.ID)
	}
	s.profiles[p.ID] = p
	s.order = append(s.order, p.ID)
	return p, nil
}

func (s *MemoryProfileStore) Merge(_ context.Context, id string, patch domainauth.ProfilePatch) (domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MergeCalls++
	if s.MergeErr != nil {
		return domainauth.Profile{}, s.MergeErr
	}
	p, ok := s.profiles[id]
	if !ok {
		return domainauth.Profile{}, ports.ErrProfileNotFound
	}
	if patch.FirstName != nil {
		p.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		p.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Role != nil {
		p.Role = *patch.Role
	}
	p.UpdatedAt = time.Now()
	s.profiles[id] = p
	return p, nil
}

func (s *MemoryProfileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.profiles[id]; !ok {
		return ports.ErrProfileNotFound
	}
	delete(s.profiles, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryProfileStore) ListByRole(_ context.Context, role domainauth.Role) ([]domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domainauth.Profile
	for _, id := range s.order {
		if p := s.profiles[id]; p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *MemoryProfileStore) ListActive(_ context.Context) ([]domainauth.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domainauth.Profile
	for _, id := range s.order {
		if p := s.profiles[id]; p.Role != domainauth.RolePending {
			out = append(out, p)
		}
	}
	return out, nil
}

// Role returns the stored role for id, or RoleUnknown when absent.
func (s *MemoryProfileStore) Role(id string) domainauth.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profiles[id].Role
}

// MemorySessionStore is an in-memory SessionStore enforcing the same
// sequence-guard semantics as the Redis store.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session

	SaveErr error
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]domainauth.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, sess domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	if sess.Token == "" {
		return fmt.Errorf("session token cannot be empty")
	}
	if stored, ok := s.sessions[sess.Token]; ok && stored.Seq > sess.Seq {
		return ports.ErrStaleSession
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *MemorySessionStore) Get(_ context.Context, token string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[token]
	if !ok || time.Now().After(sess.ExpiresAt) {
		return domainauth.Session{}, ports.ErrSessionNotFound
	}
	return sess, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Len reports the number of stored sessions.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ScriptedIdentitySource is an IdentitySource driven manually: tests call
// Emit to publish identity events in a chosen order.
type ScriptedIdentitySource struct {
	mu        sync.Mutex
	current   *domainauth.Identity
	listeners map[int]ports.IdentityListener
	nextID    int

	SignInFunc func(ctx context.Context, email, password string) (domainauth.Identity, error)
	SignUpFunc func(ctx context.Context, email, password string, fields ports.SignUpFields) (domainauth.Identity, error)

	SignOutCalls int
}

// NewScriptedIdentitySource creates a source with no current identity.
func NewScriptedIdentitySource() *ScriptedIdentitySource {
	return &ScriptedIdentitySource{listeners: make(map[int]ports.IdentityListener)}
}

// Emit publishes an identity event to all listeners.
func (s *ScriptedIdentitySource) Emit(identity *domainauth.Identity) {
	s.mu.Lock()
	s.current = identity
	listeners := make([]ports.IdentityListener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()
	for _, l := range listeners {
		l(identity)
	}
}

func (s *ScriptedIdentitySource) Subscribe(listener ports.IdentityListener) ports.UnsubscribeFunc {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	current := s.current
	s.mu.Unlock()

	listener(current)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *ScriptedIdentitySource) SignIn(ctx context.Context, email, password string) (domainauth.Identity, error) {
	if s.SignInFunc != nil {
		return s.SignInFunc(ctx, email, password)
	}
	return domainauth.Identity{}, ports.ErrInvalidCredentials
}

func (s *ScriptedIdentitySource) SignUp(ctx context.Context, email, password string, fields ports.SignUpFields) (domainauth.Identity, error) {
	if s.SignUpFunc != nil {
		return s.SignUpFunc(ctx, email, password, fields)
	}
	return domainauth.Identity{}, ports.ErrEmailInUse
}

func (s *ScriptedIdentitySource) SignOut(_ context.Context, _ string) error {
	s.mu.Lock()
	s.SignOutCalls++
	s.mu.Unlock()
	return nil
}

func (s *ScriptedIdentitySource) SendPasswordReset(_ context.Context, _ string) error {
	return nil
}

// MockSSOProvider simulates an IdP with deterministic state/nonce values.
type MockSSOProvider struct {
	AuthURL  string
	Identity domainauth.Identity

	BeginErr    error
	ExchangeErr error

	callCount int
}

// NewMockSSOProvider creates a MockSSOProvider with sensible defaults.
func NewMockSSOProvider() *MockSSOProvider {
	return &MockSSOProvider{
		AuthURL: "https://mock-idp/auth",
		Identity: domainauth.Identity{
			ID:            "mock-user-1",
			Email:         "mock.user@example.org",
			EmailVerified: true,
		},
	}
}

func (m *MockSSOProvider) Begin(_ context.Context, _ ports.SSOBeginInput) (string, string, string, error) {
	if m.BeginErr != nil {
		return "", "", "", m.BeginErr
	}
	m.callCount++
	state := fmt.Sprintf("state-%d", m.callCount)
	nonce := fmt.Sprintf("nonce-%d", m.callCount)
	return m.AuthURL, state, nonce, nil
}

func (m *MockSSOProvider) Exchange(_ context.Context, _ ports.SSOExchangeInput) (domainauth.Identity, error) {
	if m.ExchangeErr != nil {
		return domainauth.Identity{}, m.ExchangeErr
	}
	return m.Identity, nil
}
