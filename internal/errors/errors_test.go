package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	t.Parallel()

	plain := NotFound("profile not found")
	assert.Equal(t, "profile not found", plain.Error())

	wrapped := Wrap(errors.New("connection refused"), ErrCodeUnavailable, "read profile")
	assert.Equal(t, "read profile: connection refused", wrapped.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("root cause")
	err := Wrap(cause, ErrCodeInternal, "something failed")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestCodePredicates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{name: "not found", err: NotFoundf("profile %s not found", "id-1"), check: IsNotFound},
		{name: "conflict", err: Conflict("email already in use"), check: IsConflict},
		{name: "validation", err: ValidationField("email", "email is required"), check: IsValidation},
		{name: "unauthorized", err: Unauthorized("sign in required"), check: IsUnauthorized},
		{name: "forbidden", err: Forbiddenf("role %s may not approve users", "member"), check: IsForbidden},
		{name: "unavailable", err: Unavailable("profile store unreachable"), check: IsUnavailable},
		{name: "internal", err: Internal("unexpected state"), check: IsInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, tt.check(tt.err))
			assert.False(t, tt.check(errors.New("plain error")))
		})
	}
}

func TestPredicates_SeeThroughWrapping(t *testing.T) {
	t.Parallel()

	inner := Forbidden("admin role required")
	outer := fmt.Errorf("approve profile: %w", inner)

	assert.True(t, IsForbidden(outer))
	assert.Equal(t, ErrCodeForbidden, GetCode(outer))
}

func TestWrap_NilCause(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Wrap(nil, ErrCodeInternal, "ignored"))
	assert.Nil(t, Wrapf(nil, ErrCodeInternal, "ignored %d", 1))
}

func TestGetField(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "email", GetField(ValidationField("email", "bad email")))
	assert.Empty(t, GetField(errors.New("plain")))
	assert.Empty(t, GetField(Validation("no field")))
}
