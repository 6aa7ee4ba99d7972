package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
)

// stubStateSource serves a fixed session state for every request.
type stubStateSource struct {
	state domainauth.SessionState
	token string
}

func (s *stubStateSource) SessionState(*http.Request) (domainauth.SessionState, string) {
	return s.state, s.token
}

func okHandler(t *testing.T, sawState *domainauth.SessionState) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sawState != nil {
			*sawState = StateFromContext(r.Context())
		}
		w.WriteHeader(http.StatusOK)
	})
}

func memberState(role domainauth.Role) domainauth.SessionState {
	return domainauth.SessionState{
		Identity: &domainauth.Identity{ID: "u1", Email: "u1@example.org"},
		Role:     role,
	}
}

func TestRequireAccessAllowsAuthorizedRole(t *testing.T) {
	src := &stubStateSource{state: memberState(domainauth.RoleTreasurer), token: "tok-1"}
	var saw domainauth.SessionState
	handler := RequireAccess(src, domainauth.Roles(domainauth.RoleTreasurer, domainauth.RoleAdmin))(okHandler(t, &saw))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, saw.Identity)
	assert.Equal(t, "u1", saw.Identity.ID)
	assert.Equal(t, domainauth.RoleTreasurer, saw.Role)
}

func TestRequireAccessAnonymousAPI(t *testing.T) {
	src := &stubStateSource{}
	handler := RequireAccess(src, nil)(okHandler(t, nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/me", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authentication_required")
}

func TestRequireAccessAnonymousBrowserRedirectsToLogin(t *testing.T) {
	src := &stubStateSource{}
	handler := RequireAccess(src, nil)(okHandler(t, nil))

	req := httptest.NewRequest(http.MethodGet, "/dashboard?tab=recent", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	assert.Contains(t, loc, LoginPath)
	assert.Contains(t, loc, "redirect_uri=%2Fdashboard%3Ftab%3Drecent")
}

func TestRequireAccessPending(t *testing.T) {
	src := &stubStateSource{state: memberState(domainauth.RolePending)}
	handler := RequireAccess(src, nil)(okHandler(t, nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "account_pending")

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, PendingPath, rec.Header().Get("Location"))
}

func TestRequireAccessRoleOutsideRequiredSet(t *testing.T) {
	src := &stubStateSource{state: memberState(domainauth.RoleMember)}
	handler := RequireAccess(src, domainauth.Roles(domainauth.RoleTreasurer, domainauth.RoleAdmin))(okHandler(t, nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/transactions", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient_role")

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.Header.Set("Accept", "text/html")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, domainauth.DefaultLandingPath, rec.Header().Get("Location"))
}

func TestRequireAccessResolvingServesNoProtectedContent(t *testing.T) {
	state := memberState(domainauth.RoleAdmin)
	state.Resolving = true
	src := &stubStateSource{state: state}

	called := false
	handler := RequireAccess(src, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.False(t, called, "protected handler must not run while resolving")
}

func TestIsBrowserRequest(t *testing.T) {
	api := httptest.NewRequest(http.MethodGet, "/api/nav", nil)
	api.Header.Set("Accept", "text/html")
	assert.False(t, isBrowserRequest(api))

	page := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	page.Header.Set("Accept", "text/html,application/xhtml+xml")
	assert.True(t, isBrowserRequest(page))

	noAccept := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	assert.True(t, isBrowserRequest(noAccept))

	jsonClient := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	jsonClient.Header.Set("Accept", "application/json")
	assert.False(t, isBrowserRequest(jsonClient))
}

func TestSafeRedirectPath(t *testing.T) {
	assert.Equal(t, "/users?x=1", safeRedirectPath("/users?x=1"))
	assert.Equal(t, "/", safeRedirectPath(""))
	assert.Equal(t, "/", safeRedirectPath("https://evil.example.com/"))
	assert.Equal(t, "/", safeRedirectPath("//evil.example.com"))
	assert.Equal(t, "/", safeRedirectPath("relative-path"))
}
