package service

import (
	"context"
	"log/slog"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	"github.com/stewardly/ledger-api/internal/ports"
)

// UserAdminServiceOptions groups dependencies for UserAdminService.
type UserAdminServiceOptions struct {
	Admin    ports.AdminProfileStore
	Profiles ports.ProfileStore
	Logger   *slog.Logger
}

// UserAdminService handles the user administration screen: approving and
// denying pending sign-ups and changing member roles. Every mutator takes
// the acting session state and fails closed unless the actor is a
// resolved admin; the underlying AdminProfileStore enforces the same
// check again at the storage boundary.
type UserAdminService struct {
	admin    ports.AdminProfileStore
	profiles ports.ProfileStore
	logger   *slog.Logger
}

// NewUserAdminService constructs a UserAdminService.
func NewUserAdminService(opts UserAdminServiceOptions) *UserAdminService {
	if opts.Admin == nil {
		panic("service: UserAdminService requires an admin profile store")
	}
	if opts.Profiles == nil {
		panic("service: UserAdminService requires a profile store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &UserAdminService{
		admin:    opts.Admin,
		profiles: opts.Profiles,
		logger:   logger.With("component", "user_admin"),
	}
}

func (s *UserAdminService) requireAdmin(actor domainauth.SessionState) error {
	if actor.Resolving || actor.Identity == nil {
		return apperrors.Unauthorized("admin action requires an authenticated session")
	}
	if actor.Role != domainauth.RoleAdmin {
		return apperrors.Forbidden("admin role required")
	}
	return nil
}

// Approve promotes a pending profile to member.
func (s *UserAdminService) Approve(ctx context.Context, actor domainauth.SessionState, profileID string) (domainauth.Profile, error) {
	profile, err := s.admin.Approve(ctx, actor, profileID)
	if err != nil {
		return domainauth.Profile{}, err
	}
	s.logger.InfoContext(ctx, "profile approved",
		"actor", actorID(actor), "profile_id", profileID)
	return profile, nil
}

// Deny rejects a pending sign-up by removing its profile.
func (s *UserAdminService) Deny(ctx context.Context, actor domainauth.SessionState, profileID string) error {
	if err := s.admin.Deny(ctx, actor, profileID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "profile denied",
		"actor", actorID(actor), "profile_id", profileID)
	return nil
}

// ChangeRole assigns a new role to an active profile.
func (s *UserAdminService) ChangeRole(ctx context.Context, actor domainauth.SessionState, profileID string, role domainauth.Role) (domainauth.Profile, error) {
	profile, err := s.admin.ChangeRole(ctx, actor, profileID, role)
	if err != nil {
		return domainauth.Profile{}, err
	}
	s.logger.InfoContext(ctx, "profile role changed",
		"actor", actorID(actor), "profile_id", profileID, "role", string(role))
	return profile, nil
}

// ListPending returns profiles awaiting approval, oldest first.
func (s *UserAdminService) ListPending(ctx context.Context, actor domainauth.SessionState) ([]domainauth.Profile, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.profiles.ListByRole(ctx, domainauth.RolePending)
}

// ListActive returns all approved profiles, oldest first.
func (s *UserAdminService) ListActive(ctx context.Context, actor domainauth.SessionState) ([]domainauth.Profile, error) {
	if err := s.requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.profiles.ListActive(ctx)
}

func actorID(actor domainauth.SessionState) string {
	if actor.Identity == nil {
		return ""
	}
	return actor.Identity.ID
}
