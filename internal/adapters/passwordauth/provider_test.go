package passwordauth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// memCredentialStore is an in-memory CredentialStore for tests.
type memCredentialStore struct {
	byID    map[string]domainauth.Credential
	byEmail map[string]string
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{
		byID:    make(map[string]domainauth.Credential),
		byEmail: make(map[string]string),
	}
}

func (s *memCredentialStore) Create(_ context.Context, cred domainauth.Credential) (domainauth.Credential, error) {
	if _, exists := s.byEmail[cred.Email]; exists {
		return domainauth.Credential{}, ports.ErrEmailInUse
	}
	s.byID[cred.ID] = cred
	s.byEmail[cred.Email] = cred.ID
	return cred, nil
}

func (s *memCredentialStore) GetByEmail(_ context.Context, email string) (domainauth.Credential, error) {
	id, ok := s.byEmail[email]
	if !ok {
		return domainauth.Credential{}, ports.ErrIdentityNotFound
	}
	return s.byID[id], nil
}

func (s *memCredentialStore) GetByID(_ context.Context, id string) (domainauth.Credential, error) {
	cred, ok := s.byID[id]
	if !ok {
		return domainauth.Credential{}, ports.ErrIdentityNotFound
	}
	return cred, nil
}

func (s *memCredentialStore) UpdatePassword(_ context.Context, id string, hash []byte) error {
	cred, ok := s.byID[id]
	if !ok {
		return ports.ErrIdentityNotFound
	}
	cred.PasswordHash = hash
	s.byID[id] = cred
	return nil
}

func TestSignUpThenSignIn(t *testing.T) {
	p := NewProvider(newMemCredentialStore(), nil)
	ctx := context.Background()

	ident, err := p.SignUp(ctx, " Ada@Example.org ", "correct-horse", ports.SignUpFields{})
	require.NoError(t, err)
	assert.NotEmpty(t, ident.ID)
	assert.Equal(t, "ada@example.org", ident.Email)

	got, err := p.SignIn(ctx, "ada@example.org", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, ident.ID, got.ID)

	_, err = p.SignIn(ctx, "ada@example.org", "wrong-password")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)

	_, err = p.SignIn(ctx, "nobody@example.org", "correct-horse")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials,
		"unknown email must look identical to a wrong password")
}

func TestSignUpRejectsBadInput(t *testing.T) {
	p := NewProvider(newMemCredentialStore(), nil)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "not-an-email", "longenough", ports.SignUpFields{})
	assert.Error(t, err)

	_, err = p.SignUp(ctx, "a@example.org", "short", ports.SignUpFields{})
	assert.ErrorIs(t, err, ports.ErrWeakPassword)

	_, err = p.SignUp(ctx, "a@example.org", "longenough", ports.SignUpFields{})
	require.NoError(t, err)
	_, err = p.SignUp(ctx, "a@example.org", "longenough", ports.SignUpFields{})
	assert.ErrorIs(t, err, ports.ErrEmailInUse)
}

func TestChangeAndResetPassword(t *testing.T) {
	p := NewProvider(newMemCredentialStore(), nil)
	ctx := context.Background()

	ident, err := p.SignUp(ctx, "a@example.org", "original-pw", ports.SignUpFields{})
	require.NoError(t, err)

	err = p.ChangePassword(ctx, ident.ID, "wrong", "next-password")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)

	err = p.ChangePassword(ctx, ident.ID, "original-pw", "short")
	assert.ErrorIs(t, err, ports.ErrWeakPassword)

	require.NoError(t, p.ChangePassword(ctx, ident.ID, "original-pw", "next-password"))
	_, err = p.SignIn(ctx, "a@example.org", "original-pw")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "a@example.org", "next-password")
	require.NoError(t, err)

	require.NoError(t, p.ResetPassword(ctx, ident.ID, "reset-password"))
	_, err = p.SignIn(ctx, "a@example.org", "reset-password")
	require.NoError(t, err)

	err = p.ResetPassword(ctx, "missing", "reset-password")
	assert.ErrorIs(t, err, ports.ErrIdentityNotFound)
}

func TestSignInPublishesToSubscribers(t *testing.T) {
	p := NewProvider(newMemCredentialStore(), nil)
	ctx := context.Background()

	var events []*domainauth.Identity
	unsub := p.Subscribe(func(ident *domainauth.Identity) { events = append(events, ident) })
	defer unsub()

	ident, err := p.SignUp(ctx, "a@example.org", "longenough", ports.SignUpFields{})
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, ident.ID))

	require.Len(t, events, 3)
	assert.Nil(t, events[0], "initial state is signed out")
	require.NotNil(t, events[1])
	assert.Equal(t, ident.ID, events[1].ID)
	assert.Nil(t, events[2], "sign-out publishes nil")
}
