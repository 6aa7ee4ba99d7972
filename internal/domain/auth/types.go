package auth

// Package auth contains domain-level types for identity, roles, and sessions.
// It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	// RoleUnknown marks a session whose role has not been resolved,
	// either because resolution is still in flight or because it failed.
	// It grants nothing.
	RoleUnknown Role = ""

	// RolePending is authenticated but unauthorized; terminal until an
	// administrator approves or denies the profile.
	RolePending Role = "pending"

	RoleMember    Role = "member"
	RoleTreasurer Role = "treasurer"
	RoleAdmin     Role = "admin"
)

// Valid reports whether the role is one of the persisted roles.
// RoleUnknown is intentionally not valid: it must never be written to a profile.
func (r Role) Valid() bool {
	switch r {
	case RolePending, RoleMember, RoleTreasurer, RoleAdmin:
		return true
	default:
		return false
	}
}

// Assignable reports whether an administrator may assign this role to an
// active profile.
func (r Role) Assignable() bool {
	switch r {
	case RoleMember, RoleTreasurer, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole normalizes a role string and reports whether it is supported.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role.Valid() {
		return role, true
	}
	return RoleUnknown, false
}

// RoleSet is an ordered collection of roles used to gate routes and
// navigation entries. A nil RoleSet means "any resolved, authorized role".
type RoleSet []Role

// Roles builds a RoleSet from the given roles, preserving order.
func Roles(rs ...Role) RoleSet { return RoleSet(rs) }

// Has reports whether the set contains the given role.
func (s RoleSet) Has(role Role) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// Identity represents the externally authenticated principal, independent of
// application-level permissions. It is owned by the identity source and
// immutable here.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Profile is the application's persisted record about an Identity,
// keyed by Identity.ID.
type Profile struct {
	ID        string    `json:"id"         db:"id"`
	Email     string    `json:"email"      db:"email"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name"  db:"last_name"`
	Phone     string    `json:"phone"      db:"phone"`
	Role      Role      `json:"role"       db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ProfilePatch is a merge-style partial update. Nil fields are left
// untouched, so concurrent edits to disjoint fields do not clobber
// each other.
type ProfilePatch struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *Role
}

// RolePatch returns a patch that sets only the role.
func RolePatch(role Role) ProfilePatch { return ProfilePatch{Role: &role} }

// IsEmpty reports whether the patch would change nothing.
func (p ProfilePatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.Phone == nil && p.Role == nil
}

// SessionState is the published view of the current principal.
// Role is only meaningful once Resolving is false; while Resolving is
// true no protected content may be served.
type SessionState struct {
	Identity  *Identity `json:"identity,omitempty"`
	Role      Role      `json:"role"`
	Resolving bool      `json:"resolving"`
}

// Authorized reports whether the state carries a fully resolved,
// non-pending role.
func (s SessionState) Authorized() bool {
	return !s.Resolving && s.Identity != nil && s.Role.Valid() && s.Role != RolePending
}

// Session is the server-side record persisted for an authenticated user.
// Token is an opaque session identifier. Seq is the per-session event
// sequence number; writes carrying a stale Seq are discarded so an old
// resolution can never overwrite a newer sign-out or sign-in.
type Session struct {
	Token         string    `json:"token"`
	IdentityID    string    `json:"identity_id"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	Role          Role      `json:"role"`
	Seq           uint64    `json:"seq"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// State converts the persisted session into a resolved SessionState.
func (s Session) State() SessionState {
	return SessionState{
		Identity: &Identity{
			ID:            s.IdentityID,
			Email:         s.Email,
			EmailVerified: s.EmailVerified,
		},
		Role:      s.Role,
		Resolving: false,
	}
}

// IsPending reports whether the session role is pending approval.
func (s Session) IsPending() bool { return s.Role == RolePending }
