package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/ports"
)

// SessionManager defines the session lifecycle operations the auth
// handlers need.
type SessionManager interface {
	SignIn(ctx context.Context, email, password string) (domainauth.Session, error)
	SignUp(ctx context.Context, email, password string, fields ports.SignUpFields) (domainauth.Session, error)
	Establish(ctx context.Context, identity domainauth.Identity) (domainauth.Session, error)
	GetSession(ctx context.Context, token string) (domainauth.Session, error)
	Refresh(ctx context.Context, token string) (domainauth.Session, error)
	SignOut(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthHandlers provides HTTP handlers for session operations.
type AuthHandlers struct {
	Svc          SessionManager
	CookieDomain string
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

type credentialsRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Login handles password sign-in.
// POST /api/auth/login {email, password}.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := h.Svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	WriteJSON(w, http.StatusOK, sessionPayload(sess))
}

// Signup registers a new account and opens its session. The profile starts
// pending unless the email is the designated administrator's.
// POST /api/auth/signup {email, password, first_name, last_name, phone}.
func (h *AuthHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	sess, err := h.Svc.SignUp(r.Context(), req.Email, req.Password, ports.SignUpFields{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	WriteJSON(w, http.StatusCreated, sessionPayload(sess))
}

// Logout closes the current session. Safe to call without one.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.Svc.SignOut(r.Context(), cookie.Value); err != nil {
			h.logger().WarnContext(r.Context(), "sign-out failed", "error", err)
		}
	}
	h.clearCookie(w, r, SessionCookieName)
	WriteJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// Status returns the current authentication status.
// GET /api/auth/status.
func (h *AuthHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	sess, err := h.Svc.GetSession(r.Context(), cookie.Value)
	if err != nil {
		h.clearCookie(w, r, SessionCookieName)
		WriteJSON(w, http.StatusOK, map[string]any{"authenticated": false})
		return
	}

	WriteJSON(w, http.StatusOK, sessionPayload(sess))
}

// Refresh re-resolves the session's role, picking up approvals and role
// changes since sign-in, and extends its expiry.
// POST /api/auth/refresh.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errAuthRequired,
		})
		return
	}

	sess, err := h.Svc.Refresh(r.Context(), cookie.Value)
	if err != nil {
		RenderError(w, err)
		return
	}

	h.setSessionCookie(w, r, sess)
	WriteJSON(w, http.StatusOK, sessionPayload(sess))
}

// RequestReset issues a password reset for the given email. The response
// is identical whether or not the email is registered.
// POST /api/auth/reset-request {email}.
func (h *AuthHandlers) RequestReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if _, err := h.Svc.RequestPasswordReset(r.Context(), req.Email); err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// Reset consumes a reset token and replaces the password.
// POST /api/auth/reset {token, password}.
func (h *AuthHandlers) Reset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.Svc.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		RenderError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "password_reset"})
}

// sessionPayload is the JSON shape shared by login, signup, status, and
// refresh responses. Navigation entries are filtered to the resolved role
// so unauthorized destinations are never sent to the client.
func sessionPayload(sess domainauth.Session) map[string]any {
	return map[string]any{
		"authenticated": true,
		"user": map[string]any{
			"id":             sess.IdentityID,
			"email":          sess.Email,
			"email_verified": sess.EmailVerified,
		},
		"role":       sess.Role,
		"pending":    sess.IsPending(),
		"expires_at": sess.ExpiresAt,
		"nav":        domainauth.VisibleNav(sess.Role),
	}
}

func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, sess domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(sess.ExpiresAt).Seconds()),
	})
}

// clearCookie clears a cookie by setting it to expire immediately,
// mirroring the attributes used when setting it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}
