package data

import (
	"context"

	apperrors "github.com/stewardly/ledger-api/internal/errors"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// GuardedProfileStore wraps a ProfileStore with admin checks enforced at the
// storage boundary. Callers above it may run their own authorization, but a
// caller that skips those checks still cannot mutate roles through this type.
type GuardedProfileStore struct {
	store ports.ProfileStore
}

var _ ports.AdminProfileStore = (*GuardedProfileStore)(nil)

// NewGuardedProfileStore creates a GuardedProfileStore around the given store.
func NewGuardedProfileStore(store ports.ProfileStore) *GuardedProfileStore {
	return &GuardedProfileStore{store: store}
}

// requireAdmin rejects any actor that is not a fully resolved admin session.
func requireAdmin(actor domainauth.SessionState) error {
	if actor.Resolving || actor.Identity == nil {
		return apperrors.Unauthorized("admin action requires an authenticated session")
	}
	if actor.Role != domainauth.RoleAdmin {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}

// Approve promotes a pending profile to member. Approving a profile that is
// already past pending is a no-op and returns the profile unchanged.
func (g *GuardedProfileStore) Approve(
	ctx context.Context,
	actor domainauth.SessionState,
	identityID string,
) (domainauth.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return domainauth.Profile{}, err
	}
	current, err := g.store.Get(ctx, identityID)
	if err != nil {
		return domainauth.Profile{}, err
	}
	if current.Role != domainauth.RolePending {
		return current, nil
	}
	role := domainauth.RoleMember
	return g.store.Merge(ctx, identityID, domainauth.ProfilePatch{Role: &role})
}

// Deny rejects a pending sign-up by deleting its profile. Denial is the
// only path that removes a profile, and it applies to pending profiles
// only; an active profile is never deleted through this store.
func (g *GuardedProfileStore) Deny(
	ctx context.Context,
	actor domainauth.SessionState,
	identityID string,
) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	current, err := g.store.Get(ctx, identityID)
	if err != nil {
		return err
	}
	if current.Role != domainauth.RolePending {
		return apperrors.Conflict("only pending profiles can be denied")
	}
	return g.store.Delete(ctx, identityID)
}

// ChangeRole assigns a new role to any profile, the actor's own included.
// A demoted admin email that is designated stays healed back to admin on
// its next resolution.
func (g *GuardedProfileStore) ChangeRole(
	ctx context.Context,
	actor domainauth.SessionState,
	identityID string,
	role domainauth.Role,
) (domainauth.Profile, error) {
	if err := requireAdmin(actor); err != nil {
		return domainauth.Profile{}, err
	}
	if !role.Assignable() {
		return domainauth.Profile{}, apperrors.ValidationField("role", "role is not assignable")
	}
	return g.store.Merge(ctx, identityID, domainauth.ProfilePatch{Role: &role})
}
