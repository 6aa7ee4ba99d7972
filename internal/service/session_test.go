package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	mockauth "github.com/stewardly/ledger-api/internal/mocks/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

func signingInSource(ident domainauth.Identity) *mockauth.ScriptedIdentitySource {
	source := mockauth.NewScriptedIdentitySource()
	source.SignInFunc = func(_ context.Context, email, _ string) (domainauth.Identity, error) {
		if email == ident.Email {
			return ident, nil
		}
		return domainauth.Identity{}, ports.ErrInvalidCredentials
	}
	return source
}

func newSessionService(source ports.IdentitySource, profiles ports.ProfileStore, sessions ports.SessionStore) *SessionService {
	return NewSessionService(SessionServiceOptions{
		Source:   source,
		Resolver: NewRoleResolver(RoleResolverOptions{Profiles: profiles, AdminEmail: adminEmail}),
		Sessions: sessions,
	})
}

func TestSignInOpensSession(t *testing.T) {
	ident := domainauth.Identity{ID: "u1", Email: "u1@example.org", EmailVerified: true}
	profiles := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleTreasurer,
	})
	sessions := mockauth.NewMemorySessionStore()
	svc := newSessionService(signingInSource(ident), profiles, sessions)
	ctx := context.Background()

	sess, err := svc.SignIn(ctx, "u1@example.org", "pw")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "u1", sess.IdentityID)
	assert.Equal(t, domainauth.RoleTreasurer, sess.Role)
	assert.Equal(t, uint64(1), sess.Seq)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	got, err := svc.GetSession(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.Token, got.Token)
}

func TestSignInInvalidCredentials(t *testing.T) {
	svc := newSessionService(
		signingInSource(domainauth.Identity{ID: "u1", Email: "u1@example.org"}),
		mockauth.NewMemoryProfileStore(),
		mockauth.NewMemorySessionStore(),
	)

	_, err := svc.SignIn(context.Background(), "other@example.org", "pw")
	assert.ErrorIs(t, err, ports.ErrInvalidCredentials)
}

func TestSignInAbortsWhenResolutionFails(t *testing.T) {
	ident := domainauth.Identity{ID: "u1", Email: "u1@example.org"}
	profiles := mockauth.NewMemoryProfileStore()
	profiles.GetErr = assert.AnError
	sessions := mockauth.NewMemorySessionStore()
	svc := newSessionService(signingInSource(ident), profiles, sessions)

	_, err := svc.SignIn(context.Background(), "u1@example.org", "pw")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err), "store failure must not guess a role")
	assert.Zero(t, sessions.Len(), "no session without a resolved role")
}

func TestSignUpBootstrapsPendingProfile(t *testing.T) {
	source := mockauth.NewScriptedIdentitySource()
	source.SignUpFunc = func(_ context.Context, email, _ string, _ ports.SignUpFields) (domainauth.Identity, error) {
		return domainauth.Identity{ID: "new1", Email: email}, nil
	}
	profiles := mockauth.NewMemoryProfileStore()
	svc := newSessionService(source, profiles, mockauth.NewMemorySessionStore())

	sess, err := svc.SignUp(context.Background(), "new@example.org", "longenough",
		ports.SignUpFields{FirstName: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RolePending, sess.Role)
	assert.True(t, sess.IsPending())

	p, err := profiles.Get(context.Background(), "new1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.FirstName)
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	ident := domainauth.Identity{ID: "u1", Email: "u1@example.org"}
	profiles := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RolePending,
	})
	svc := newSessionService(signingInSource(ident), profiles, mockauth.NewMemorySessionStore())
	ctx := context.Background()

	sess, err := svc.SignIn(ctx, "u1@example.org", "pw")
	require.NoError(t, err)
	require.Equal(t, domainauth.RolePending, sess.Role)

	// Approval happens out of band.
	_, err = profiles.Merge(ctx, "u1", domainauth.RolePatch(domainauth.RoleMember))
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleMember, refreshed.Role)
	assert.Equal(t, sess.Seq+1, refreshed.Seq)
}

func TestRefreshKeepsStoredRoleOnStoreFailure(t *testing.T) {
	ident := domainauth.Identity{ID: "u1", Email: "u1@example.org"}
	profiles := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleMember,
	})
	svc := newSessionService(signingInSource(ident), profiles, mockauth.NewMemorySessionStore())
	ctx := context.Background()

	sess, err := svc.SignIn(ctx, "u1@example.org", "pw")
	require.NoError(t, err)

	profiles.GetErr = assert.AnError
	refreshed, err := svc.Refresh(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleMember, refreshed.Role, "stored role is kept, not guessed away")
	assert.Equal(t, sess.Seq, refreshed.Seq, "no write on failed refresh")
}

func TestSignOutDeletesSession(t *testing.T) {
	ident := domainauth.Identity{ID: "u1", Email: "u1@example.org"}
	source := signingInSource(ident)
	profiles := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "u1@example.org", Role: domainauth.RoleMember,
	})
	sessions := mockauth.NewMemorySessionStore()
	svc := newSessionService(source, profiles, sessions)
	ctx := context.Background()

	sess, err := svc.SignIn(ctx, "u1@example.org", "pw")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, sess.Token))
	assert.Zero(t, sessions.Len())
	assert.Equal(t, 1, source.SignOutCalls)

	_, err = svc.GetSession(ctx, sess.Token)
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)

	// Unknown token sign-out is a no-op.
	assert.NoError(t, svc.SignOut(ctx, "never-issued"))
}

func TestEstablishOpensSessionForSSOIdentity(t *testing.T) {
	profiles := mockauth.NewMemoryProfileStore()
	svc := newSessionService(mockauth.NewScriptedIdentitySource(), profiles, mockauth.NewMemorySessionStore())

	sess, err := svc.Establish(context.Background(), domainauth.Identity{ID: "sso1", Email: adminEmail})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, sess.Role, "designated admin bootstraps as admin")
}

func TestPasswordResetDisabledWithoutStores(t *testing.T) {
	svc := newSessionService(mockauth.NewScriptedIdentitySource(),
		mockauth.NewMemoryProfileStore(), mockauth.NewMemorySessionStore())
	ctx := context.Background()

	_, err := svc.RequestPasswordReset(ctx, "u1@example.org")
	assert.True(t, apperrors.IsUnavailable(err))

	err = svc.ResetPassword(ctx, "token", "new-password")
	assert.True(t, apperrors.IsUnavailable(err))
}
