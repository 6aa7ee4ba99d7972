package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stewardly/ledger-api/internal/data"
	apperrors "github.com/stewardly/ledger-api/internal/errors"
	"github.com/stewardly/ledger-api/internal/ports"
)

func TestRenderErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid credentials", ports.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{"email in use", ports.ErrEmailInUse, http.StatusConflict, "email_in_use"},
		{"weak password", ports.ErrWeakPassword, http.StatusBadRequest, "weak_password"},
		{"profile not found", ports.ErrProfileNotFound, http.StatusNotFound, "not_found"},
		{"transaction not found", data.ErrTransactionNotFound, http.StatusNotFound, "not_found"},
		{"inventory not found", data.ErrInventoryItemNotFound, http.StatusNotFound, "not_found"},
		{"expired session", ports.ErrSessionNotFound, http.StatusUnauthorized, "session_expired"},
		{"validation", apperrors.Validation("bad input"), http.StatusBadRequest, "validation"},
		{"forbidden", apperrors.Forbidden("admin role required"), http.StatusForbidden, "forbidden"},
		{"unauthorized", apperrors.Unauthorized("sign in"), http.StatusUnauthorized, "unauthorized"},
		{"unavailable", apperrors.Unavailable("try again"), http.StatusServiceUnavailable, "unavailable"},
		{"conflict", apperrors.Conflict("duplicate"), http.StatusConflict, "conflict"},
		{"wrapped sentinel", apperrors.Wrap(ports.ErrProfileNotFound, apperrors.ErrCodeInternal, "x"), http.StatusNotFound, "not_found"},
		{"unknown", errors.New("pg: socket closed"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RenderError(rec, tt.err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
		})
	}
}

func TestRenderErrorHidesUnknownDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, errors.New("password for svc account is hunter2"))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestRenderErrorIncludesValidationField(t *testing.T) {
	rec := httptest.NewRecorder()
	RenderError(rec, apperrors.ValidationField("amount_cents", "amount must be positive"))
	assert.Contains(t, rec.Body.String(), `"field":"amount_cents"`)
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var dst struct {
		Email string `json:"email"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.c","evil":true}`))
	rec := httptest.NewRecorder()
	assert.False(t, DecodeJSON(rec, req, &dst))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
