package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  Role
		ok    bool
	}{
		{name: "pending", input: "pending", want: RolePending, ok: true},
		{name: "member", input: "member", want: RoleMember, ok: true},
		{name: "treasurer", input: "treasurer", want: RoleTreasurer, ok: true},
		{name: "admin", input: "admin", want: RoleAdmin, ok: true},
		{name: "mixed case", input: " Admin ", want: RoleAdmin, ok: true},
		{name: "empty", input: "", want: RoleUnknown, ok: false},
		{name: "garbage", input: "superuser", want: RoleUnknown, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseRole(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestRole_Valid(t *testing.T) {
	t.Parallel()

	assert.True(t, RolePending.Valid())
	assert.True(t, RoleMember.Valid())
	assert.True(t, RoleTreasurer.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, RoleUnknown.Valid())
	assert.False(t, Role("root").Valid())
}

func TestRole_Assignable(t *testing.T) {
	t.Parallel()

	assert.False(t, RolePending.Assignable(), "pending is not assignable; approval moves it to member")
	assert.False(t, RoleUnknown.Assignable())
	assert.True(t, RoleMember.Assignable())
	assert.True(t, RoleTreasurer.Assignable())
	assert.True(t, RoleAdmin.Assignable())
}

func TestRoleSet_Has(t *testing.T) {
	t.Parallel()

	set := Roles(RoleTreasurer, RoleAdmin)
	assert.True(t, set.Has(RoleAdmin))
	assert.True(t, set.Has(RoleTreasurer))
	assert.False(t, set.Has(RoleMember))
	assert.False(t, set.Has(RoleUnknown))

	var empty RoleSet
	assert.False(t, empty.Has(RoleAdmin))
}

func TestProfilePatch_IsEmpty(t *testing.T) {
	t.Parallel()

	assert.True(t, ProfilePatch{}.IsEmpty())
	assert.False(t, RolePatch(RoleAdmin).IsEmpty())

	name := "Alem"
	assert.False(t, ProfilePatch{FirstName: &name}.IsEmpty())
}

func TestSessionState_Authorized(t *testing.T) {
	t.Parallel()

	ident := &Identity{ID: "id-1", Email: "m@example.org"}

	tests := []struct {
		name  string
		state SessionState
		want  bool
	}{
		{name: "member", state: SessionState{Identity: ident, Role: RoleMember}, want: true},
		{name: "admin", state: SessionState{Identity: ident, Role: RoleAdmin}, want: true},
		{name: "pending", state: SessionState{Identity: ident, Role: RolePending}, want: false},
		{name: "unresolved role", state: SessionState{Identity: ident, Role: RoleUnknown}, want: false},
		{name: "resolving", state: SessionState{Identity: ident, Role: RoleMember, Resolving: true}, want: false},
		{name: "signed out", state: SessionState{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.state.Authorized())
		})
	}
}

func TestSession_State(t *testing.T) {
	t.Parallel()

	sess := Session{
		Token:         "tok-1",
		IdentityID:    "id-1",
		Email:         "m@example.org",
		EmailVerified: true,
		Role:          RoleTreasurer,
		Seq:           3,
		ExpiresAt:     time.Now().Add(time.Hour),
	}

	state := sess.State()
	require.NotNil(t, state.Identity)
	assert.Equal(t, "id-1", state.Identity.ID)
	assert.Equal(t, "m@example.org", state.Identity.Email)
	assert.True(t, state.Identity.EmailVerified)
	assert.Equal(t, RoleTreasurer, state.Role)
	assert.False(t, state.Resolving)
}
