package httpx

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// SSOHandlers provides the browser-facing single-sign-on flow. It is only
// registered when the deployment delegates authentication to an external
// identity provider.
type SSOHandlers struct {
	Provider     ports.SSOProvider
	Sessions     SessionManager
	CookieDomain string
	Logger       *slog.Logger
}

func (h *SSOHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Begin initiates the SSO flow and redirects to the identity provider.
// GET /auth/sso/login?redirect_uri=<optional_redirect>.
func (h *SSOHandlers) Begin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	authURL, state, nonce, err := h.Provider.Begin(r.Context(), ports.SSOBeginInput{
		RedirectURL: redirectURI,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "sso begin failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "sso_unavailable",
			Err:     errors.New("the identity provider could not be reached"),
		})
		return
	}

	h.setFlowCookies(w, r, flowCookieParams{State: state, Nonce: nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, authURL, http.StatusFound)
}

// Callback completes the SSO flow: it verifies state against the flow
// cookie, exchanges the code, opens a server-side session, and redirects
// to the original destination.
// GET /auth/sso/callback?code=<code>&state=<state>.
func (h *SSOHandlers) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_callback",
			Err:     errors.New("code and state are required"),
		})
		return
	}

	stateCookie, err := r.Cookie("sso_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_state",
			Err:     errors.New("invalid or missing state parameter"),
		})
		return
	}
	nonceCookie, err := r.Cookie("sso_nonce")
	if err != nil {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_nonce",
			Err:     errors.New("missing nonce"),
		})
		return
	}

	identity, err := h.Provider.Exchange(r.Context(), ports.SSOExchangeInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "sso exchange failed", "error", err)
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "sso_exchange_failed",
			Err:     errors.New("could not complete sign-in with the identity provider"),
		})
		return
	}

	sess, err := h.Sessions.Establish(r.Context(), identity)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	h.clearFlowCookies(w, r)
	http.Redirect(w, r, h.postLoginRedirect(w, r), http.StatusFound)
}

type flowCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

const flowCookieMaxAge = 600 // 10 minutes

func (h *SSOHandlers) setFlowCookies(w http.ResponseWriter, r *http.Request, p flowCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	for name, value := range map[string]string{
		"sso_state":    p.State,
		"sso_nonce":    p.Nonce,
		"sso_redirect": p.RedirectURI,
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   flowCookieMaxAge,
		})
	}
}

func (h *SSOHandlers) clearFlowCookies(w http.ResponseWriter, r *http.Request) {
	auth := &AuthHandlers{CookieDomain: h.CookieDomain}
	auth.clearCookie(w, r, "sso_state")
	auth.clearCookie(w, r, "sso_nonce")
}

// postLoginRedirect returns the validated post-login destination and
// clears its cookie.
func (h *SSOHandlers) postLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if cookie, err := r.Cookie("sso_redirect"); err == nil {
		if u, parseErr := url.Parse(cookie.Value); parseErr == nil &&
			!u.IsAbs() && u.Host == "" && strings.HasPrefix(u.Path, "/") {
			redirectURI = cookie.Value
		}
		auth := &AuthHandlers{CookieDomain: h.CookieDomain}
		auth.clearCookie(w, r, "sso_redirect")
	}
	return redirectURI
}

func (h *SSOHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, sess domainauth.Session) {
	auth := &AuthHandlers{CookieDomain: h.CookieDomain}
	auth.setSessionCookie(w, r, sess)
}
