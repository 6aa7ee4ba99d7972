package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/service"
)

// UserHandlers provides the admin user-management endpoints. Routing
// already gates these behind the admin role; the service and store layers
// re-check the actor from the request context.
type UserHandlers struct {
	Svc *service.UserAdminService
}

// ListActive returns all approved profiles, oldest first.
// GET /api/users.
func (h *UserHandlers) ListActive(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Svc.ListActive(r.Context(), StateFromContext(r.Context()))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": profilesOrEmpty(profiles)})
}

// ListPending returns profiles awaiting approval, oldest first.
// GET /api/users/pending.
func (h *UserHandlers) ListPending(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.Svc.ListPending(r.Context(), StateFromContext(r.Context()))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"users": profilesOrEmpty(profiles)})
}

// Approve promotes a pending profile to member.
// POST /api/users/{id}/approve.
func (h *UserHandlers) Approve(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Svc.Approve(r.Context(), StateFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Deny rejects a pending sign-up by removing its profile.
// POST /api/users/{id}/deny.
func (h *UserHandlers) Deny(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Deny(r.Context(), StateFromContext(r.Context()), r.PathValue("id")); err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "denied"})
}

// ChangeRole assigns a new role to an active profile.
// PUT /api/users/{id}/role {role}.
func (h *UserHandlers) ChangeRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	role, ok := domainauth.ParseRole(req.Role)
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_role",
			Err:     errors.New("role must be member, treasurer, or admin"),
			Field:   "role",
		})
		return
	}

	profile, err := h.Svc.ChangeRole(r.Context(), StateFromContext(r.Context()), r.PathValue("id"), role)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

func profilesOrEmpty(profiles []domainauth.Profile) []domainauth.Profile {
	if profiles == nil {
		return []domainauth.Profile{}
	}
	return profiles
}
