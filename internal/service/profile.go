package service

import (
	"context"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	"github.com/stewardly/ledger-api/internal/ports"
)

// ProfileServiceOptions groups dependencies for ProfileService.
type ProfileServiceOptions struct {
	Profiles ports.ProfileStore
}

// ProfileService exposes a user's own profile: reading it and editing the
// display fields. Role changes never pass through here.
type ProfileService struct {
	profiles ports.ProfileStore
}

// NewProfileService constructs a ProfileService.
func NewProfileService(opts ProfileServiceOptions) *ProfileService {
	if opts.Profiles == nil {
		panic("service: ProfileService requires a profile store")
	}
	return &ProfileService{profiles: opts.Profiles}
}

// Get returns the profile for the acting session.
func (s *ProfileService) Get(ctx context.Context, actor domainauth.SessionState) (domainauth.Profile, error) {
	if actor.Identity == nil {
		return domainauth.Profile{}, apperrors.Unauthorized("sign in to view your profile")
	}
	return s.profiles.Get(ctx, actor.Identity.ID)
}

// OwnProfilePatch carries the self-editable display fields.
type OwnProfilePatch struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// UpdateOwn merges the display fields into the actor's own profile.
// The patch deliberately has no role field, so this path can never
// escalate access.
func (s *ProfileService) UpdateOwn(ctx context.Context, actor domainauth.SessionState, patch OwnProfilePatch) (domainauth.Profile, error) {
	if actor.Identity == nil {
		return domainauth.Profile{}, apperrors.Unauthorized("sign in to edit your profile")
	}
	return s.profiles.Merge(ctx, actor.Identity.ID, domainauth.ProfilePatch{
		FirstName: patch.FirstName,
		LastName:  patch.LastName,
		Phone:     patch.Phone,
	})
}
