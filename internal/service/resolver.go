package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// RoleResolverOptions groups dependencies for RoleResolver.
type RoleResolverOptions struct {
	Profiles   ports.ProfileStore
	AdminEmail string // designated admin email, compared case-insensitively
	Logger     *slog.Logger
}

// RoleResolver turns an authenticated identity into an application role.
// It owns the profile bootstrap rules: first sign-in creates a profile,
// and the designated admin email is healed to the admin role whenever its
// stored role has drifted.
type RoleResolver struct {
	profiles   ports.ProfileStore
	adminEmail string
	logger     *slog.Logger
}

// NewRoleResolver constructs a RoleResolver.
func NewRoleResolver(opts RoleResolverOptions) *RoleResolver {
	if opts.Profiles == nil {
		panic("service: RoleResolver requires a profile store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &RoleResolver{
		profiles:   opts.Profiles,
		adminEmail: strings.ToLower(strings.TrimSpace(opts.AdminEmail)),
		logger:     logger.With("component", "role_resolver"),
	}
}

// Resolve determines the role for the identity, creating or healing the
// profile as needed. On store failure it returns RoleUnknown and the error;
// the caller must treat the role as unresolved, never guess one. Resolving
// the same identity twice with no intervening mutation yields the same role
// without a second write.
func (r *RoleResolver) Resolve(ctx context.Context, identity domainauth.Identity) (domainauth.Role, error) {
	profile, err := r.profiles.Get(ctx, identity.ID)
	switch {
	case err == nil:
		return r.healIfAdmin(ctx, identity, profile)
	case errors.Is(err, ports.ErrProfileNotFound):
		return r.bootstrap(ctx, identity, ports.SignUpFields{})
	default:
		r.logger.ErrorContext(ctx, "profile lookup failed", "identity_id", identity.ID, "err", err)
		return domainauth.RoleUnknown, fmt.Errorf("resolve role: %w", err)
	}
}

// ResolveNew is Resolve for a freshly signed-up identity: the display
// fields are recorded on the created profile.
func (r *RoleResolver) ResolveNew(ctx context.Context, identity domainauth.Identity, fields ports.SignUpFields) (domainauth.Role, error) {
	profile, err := r.profiles.Get(ctx, identity.ID)
	switch {
	case err == nil:
		return r.healIfAdmin(ctx, identity, profile)
	case errors.Is(err, ports.ErrProfileNotFound):
		return r.bootstrap(ctx, identity, fields)
	default:
		r.logger.ErrorContext(ctx, "profile lookup failed", "identity_id", identity.ID, "err", err)
		return domainauth.RoleUnknown, fmt.Errorf("resolve role: %w", err)
	}
}

// healIfAdmin repairs the stored role for the designated admin email.
// A profile whose role drifted away from admin is merged back; any other
// profile keeps its stored role untouched.
func (r *RoleResolver) healIfAdmin(ctx context.Context, identity domainauth.Identity, profile domainauth.Profile) (domainauth.Role, error) {
	if !r.isAdminEmail(identity.Email) || profile.Role == domainauth.RoleAdmin {
		return profile.Role, nil
	}

	r.logger.WarnContext(ctx, "healing designated admin role",
		"identity_id", identity.ID, "stored_role", string(profile.Role))

	healed, err := r.profiles.Merge(ctx, identity.ID, domainauth.RolePatch(domainauth.RoleAdmin))
	if err != nil {
		r.logger.ErrorContext(ctx, "admin role heal failed", "identity_id", identity.ID, "err", err)
		return domainauth.RoleUnknown, fmt.Errorf("heal admin role: %w", err)
	}
	return healed.Role, nil
}

// bootstrap creates the profile for a first sign-in. The designated admin
// email starts as admin; everyone else starts pending.
func (r *RoleResolver) bootstrap(ctx context.Context, identity domainauth.Identity, fields ports.SignUpFields) (domainauth.Role, error) {
	role := domainauth.RolePending
	if r.isAdminEmail(identity.Email) {
		role = domainauth.RoleAdmin
	}

	created, err := r.profiles.Create(ctx, domainauth.Profile{
		ID:        identity.ID,
		Email:     identity.Email,
		FirstName: fields.FirstName,
		LastName:  fields.LastName,
		Phone:     fields.Phone,
		Role:      role,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "profile bootstrap failed", "identity_id", identity.ID, "err", err)
		return domainauth.RoleUnknown, fmt.Errorf("bootstrap profile: %w", err)
	}

	r.logger.InfoContext(ctx, "profile created",
		"identity_id", identity.ID, "role", string(created.Role))
	return created.Role, nil
}

func (r *RoleResolver) isAdminEmail(email string) bool {
	return r.adminEmail != "" && strings.ToLower(strings.TrimSpace(email)) == r.adminEmail
}
