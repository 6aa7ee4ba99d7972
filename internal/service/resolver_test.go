package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	mockauth "github.com/stewardly/ledger-api/internal/mocks/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

const adminEmail = "treasury-lead@example.org"

func newResolver(store ports.ProfileStore) *RoleResolver {
	return NewRoleResolver(RoleResolverOptions{Profiles: store, AdminEmail: adminEmail})
}

func TestResolveExistingProfileKeepsStoredRole(t *testing.T) {
	store := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "u1", Email: "member@example.org", Role: domainauth.RoleTreasurer,
	})
	r := newResolver(store)

	role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "u1", Email: "member@example.org"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleTreasurer, role)
	assert.Zero(t, store.MergeCalls, "no write for an ordinary resolution")
	assert.Zero(t, store.CreateCalls)
}

func TestResolveHealsDesignatedAdmin(t *testing.T) {
	tests := []struct {
		name       string
		storedRole domainauth.Role
		wantMerges int
	}{
		{name: "drifted to pending", storedRole: domainauth.RolePending, wantMerges: 1},
		{name: "drifted to member", storedRole: domainauth.RoleMember, wantMerges: 1},
		{name: "already admin", storedRole: domainauth.RoleAdmin, wantMerges: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := mockauth.NewMemoryProfileStore(domainauth.Profile{
				ID: "a1", Email: adminEmail, Role: tt.storedRole,
			})
			r := newResolver(store)

			role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "a1", Email: adminEmail})
			require.NoError(t, err)
			assert.Equal(t, domainauth.RoleAdmin, role)
			assert.Equal(t, tt.wantMerges, store.MergeCalls)
			assert.Equal(t, domainauth.RoleAdmin, store.Role("a1"), "stored role must be healed")
		})
	}
}

func TestResolveHealMatchesEmailCaseInsensitively(t *testing.T) {
	store := mockauth.NewMemoryProfileStore(domainauth.Profile{
		ID: "a1", Email: adminEmail, Role: domainauth.RoleMember,
	})
	r := newResolver(store)

	role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "a1", Email: "Treasury-Lead@EXAMPLE.org"})
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleAdmin, role)
}

func TestResolveBootstrapsMissingProfile(t *testing.T) {
	t.Run("ordinary identity starts pending", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore()
		r := newResolver(store)

		role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "new1", Email: "new@example.org"})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RolePending, role)
		assert.Equal(t, 1, store.CreateCalls)
		assert.Equal(t, domainauth.RolePending, store.Role("new1"))
	})

	t.Run("designated admin starts admin", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore()
		r := newResolver(store)

		role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "a1", Email: adminEmail})
		require.NoError(t, err)
		assert.Equal(t, domainauth.RoleAdmin, role)
	})

	t.Run("sign-up fields land on the created profile", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore()
		r := newResolver(store)

		_, err := r.ResolveNew(context.Background(),
			domainauth.Identity{ID: "new2", Email: "new2@example.org"},
			ports.SignUpFields{FirstName: "Ada", LastName: "Byron", Phone: "555-0100"})
		require.NoError(t, err)

		p, err := store.Get(context.Background(), "new2")
		require.NoError(t, err)
		assert.Equal(t, "Ada", p.FirstName)
		assert.Equal(t, "Byron", p.LastName)
		assert.Equal(t, "555-0100", p.Phone)
	})
}

func TestResolveIsIdempotent(t *testing.T) {
	store := mockauth.NewMemoryProfileStore()
	r := newResolver(store)
	ctx := context.Background()
	ident := domainauth.Identity{ID: "u1", Email: "u1@example.org"}

	first, err := r.Resolve(ctx, ident)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, ident)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.CreateCalls, "second resolution must not write again")
	assert.Zero(t, store.MergeCalls)
}

func TestResolveStoreFailureYieldsUnknown(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("lookup failure", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore()
		store.GetErr = boom
		r := newResolver(store)

		role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "u1", Email: "u1@example.org"})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, domainauth.RoleUnknown, role, "a store failure must never guess a role")
	})

	t.Run("bootstrap failure", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore()
		store.CreateErr = boom
		r := newResolver(store)

		role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "u1", Email: "u1@example.org"})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, domainauth.RoleUnknown, role)
	})

	t.Run("heal failure", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore(domainauth.Profile{
			ID: "a1", Email: adminEmail, Role: domainauth.RoleMember,
		})
		store.MergeErr = boom
		r := newResolver(store)

		role, err := r.Resolve(context.Background(), domainauth.Identity{ID: "a1", Email: adminEmail})
		require.ErrorIs(t, err, boom)
		assert.Equal(t, domainauth.RoleUnknown, role)
	})

	t.Run("failure then recovery retries fresh", func(t *testing.T) {
		store := mockauth.NewMemoryProfileStore()
		store.GetErr = boom
		r := newResolver(store)
		ctx := context.Background()
		ident := domainauth.Identity{ID: "u1", Email: "u1@example.org"}

		_, err := r.Resolve(ctx, ident)
		require.Error(t, err)

		store.GetErr = nil
		role, err := r.Resolve(ctx, ident)
		require.NoError(t, err)
		assert.Equal(t, domainauth.RolePending, role)
	})
}
