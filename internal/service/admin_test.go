package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stewardly/ledger-api/internal/data"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	mockauth "github.com/stewardly/ledger-api/internal/mocks/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

func adminActor(id string) domainauth.SessionState {
	return domainauth.SessionState{
		Identity: &domainauth.Identity{ID: id, Email: id + "@example.org"},
		Role:     domainauth.RoleAdmin,
	}
}

func memberActor(id string) domainauth.SessionState {
	return domainauth.SessionState{
		Identity: &domainauth.Identity{ID: id, Email: id + "@example.org"},
		Role:     domainauth.RoleMember,
	}
}

func newUserAdmin(profiles ports.ProfileStore) *UserAdminService {
	return NewUserAdminService(UserAdminServiceOptions{
		Admin:    data.NewGuardedProfileStore(profiles),
		Profiles: profiles,
	})
}

func TestUserAdminApproveAndDeny(t *testing.T) {
	profiles := mockauth.NewMemoryProfileStore(
		domainauth.Profile{ID: "admin1", Email: "admin1@example.org", Role: domainauth.RoleAdmin},
		domainauth.Profile{ID: "p1", Email: "p1@example.org", Role: domainauth.RolePending},
		domainauth.Profile{ID: "p2", Email: "p2@example.org", Role: domainauth.RolePending},
	)
	svc := newUserAdmin(profiles)
	ctx := context.Background()

	approved, err := svc.Approve(ctx, adminActor("admin1"), "p1")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleMember, approved.Role)

	require.NoError(t, svc.Deny(ctx, adminActor("admin1"), "p2"))
	_, err = profiles.Get(ctx, "p2")
	assert.ErrorIs(t, err, ports.ErrProfileNotFound)
}

func TestUserAdminRejectsNonAdmins(t *testing.T) {
	profiles := mockauth.NewMemoryProfileStore(
		domainauth.Profile{ID: "p1", Email: "p1@example.org", Role: domainauth.RolePending},
	)
	svc := newUserAdmin(profiles)
	ctx := context.Background()

	actors := map[string]domainauth.SessionState{
		"anonymous": {},
		"member":    memberActor("m1"),
		"resolving": {
			Identity:  &domainauth.Identity{ID: "a1", Email: "a1@example.org"},
			Role:      domainauth.RoleAdmin,
			Resolving: true,
		},
	}
	for name, actor := range actors {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Approve(ctx, actor, "p1")
			require.Error(t, err)

			_, err = svc.ChangeRole(ctx, actor, "p1", domainauth.RoleMember)
			require.Error(t, err)

			_, err = svc.ListPending(ctx, actor)
			require.Error(t, err)

			_, err = svc.ListActive(ctx, actor)
			require.Error(t, err)

			p, getErr := profiles.Get(ctx, "p1")
			require.NoError(t, getErr)
			assert.Equal(t, domainauth.RolePending, p.Role)
		})
	}
}

func TestUserAdminChangeRole(t *testing.T) {
	profiles := mockauth.NewMemoryProfileStore(
		domainauth.Profile{ID: "admin1", Email: "admin1@example.org", Role: domainauth.RoleAdmin},
		domainauth.Profile{ID: "m1", Email: "m1@example.org", Role: domainauth.RoleMember},
	)
	svc := newUserAdmin(profiles)
	ctx := context.Background()

	changed, err := svc.ChangeRole(ctx, adminActor("admin1"), "m1", domainauth.RoleTreasurer)
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleTreasurer, changed.Role)

	_, err = svc.ChangeRole(ctx, adminActor("admin1"), "m1", domainauth.RolePending)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err), "pending is not assignable")
}

func TestUserAdminListings(t *testing.T) {
	profiles := mockauth.NewMemoryProfileStore(
		domainauth.Profile{ID: "admin1", Email: "admin1@example.org", Role: domainauth.RoleAdmin},
		domainauth.Profile{ID: "p1", Email: "p1@example.org", Role: domainauth.RolePending},
		domainauth.Profile{ID: "m1", Email: "m1@example.org", Role: domainauth.RoleMember},
	)
	svc := newUserAdmin(profiles)
	ctx := context.Background()

	pending, err := svc.ListPending(ctx, adminActor("admin1"))
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "p1", pending[0].ID)

	active, err := svc.ListActive(ctx, adminActor("admin1"))
	require.NoError(t, err)
	require.Len(t, active, 2)
}
