package httpx

import (
	"net/http"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/service"
)

// MeHandlers serves the signed-in user's own profile and navigation.
type MeHandlers struct {
	Profiles *service.ProfileService
}

// Get returns the actor's profile.
// GET /api/me.
func (h *MeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Profiles.Get(r.Context(), StateFromContext(r.Context()))
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Update merges display-field edits into the actor's own profile. The
// payload has no role field, so this endpoint can never change access.
// PATCH /api/me.
func (h *MeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var patch service.OwnProfilePatch
	if !DecodeJSON(w, r, &patch) {
		return
	}

	profile, err := h.Profiles.UpdateOwn(r.Context(), StateFromContext(r.Context()), patch)
	if err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// Nav returns the navigation entries visible to the actor's resolved
// role, in display order. Unauthorized entries are omitted entirely.
// GET /api/nav.
func Nav(src SessionStateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, _ := src.SessionState(r)
		role := domainauth.RoleUnknown
		if !state.Resolving {
			role = state.Role
		}
		WriteJSON(w, http.StatusOK, map[string]any{
			"resolving": state.Resolving,
			"nav":       domainauth.VisibleNav(role),
		})
	}
}
