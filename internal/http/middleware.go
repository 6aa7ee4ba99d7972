package httpx

import (
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
)

// Logging returns a middleware that logs HTTP requests and responses.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SessionStateSource yields the current session state for a request. The
// cookie-backed source loads the server-side session; the tracker-backed
// source reports the in-process identity stream.
type SessionStateSource interface {
	SessionState(r *http.Request) (state domainauth.SessionState, token string)
}

// browserRequestKey is an unexported context key type for browser request
// detection.
type browserRequestKey struct{}

// IsBrowserRequest reports whether the request came from a browser
// navigation rather than an API client. API routes under /api/ are never
// browser requests; otherwise an Accept header preferring text/html is.
func IsBrowserRequest(r *http.Request) bool {
	if val := r.Context().Value(browserRequestKey{}); val != nil {
		if isBrowser, ok := val.(bool); ok {
			return isBrowser
		}
	}
	return isBrowserRequest(r)
}

func isBrowserRequest(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return false
	}
	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html")
}

// Paths the access middleware redirects browser requests to. The frontend
// router owns the rendering of each.
const (
	LoginPath   = "/auth/login"
	PendingPath = "/auth/pending"
)

// RequireAccess gates a handler on the access decision for the request's
// session state. Allowed requests proceed with the state (and the session
// token, when present) placed in the context.
//
// Browser requests are redirected per decision: to the login page when
// anonymous, to the pending page when awaiting approval, and to the
// default landing page when the role is outside the required set. API
// requests get 401/403 JSON instead. While resolution is in flight both
// get 503 with Retry-After, so a protected response is never served from
// an unresolved state.
func RequireAccess(src SessionStateSource, required domainauth.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state, token := src.SessionState(r)

			switch domainauth.Evaluate(state, required) {
			case domainauth.DecisionAllow:
				ctx := SetStateInContext(r.Context(), state)
				ctx = SetTokenInContext(ctx, token)
				next.ServeHTTP(w, r.WithContext(ctx))

			case domainauth.DecisionResolving:
				w.Header().Set("Retry-After", "1")
				if IsBrowserRequest(r) {
					http.Error(w, "Signing you in...", http.StatusServiceUnavailable)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusServiceUnavailable,
					ErrCode: "resolving",
					Err:     errResolving,
				})

			case domainauth.DecisionRedirectLogin:
				if IsBrowserRequest(r) {
					redirectToLogin(w, r)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusUnauthorized,
					ErrCode: "authentication_required",
					Err:     errAuthRequired,
				})

			case domainauth.DecisionRedirectPending:
				if IsBrowserRequest(r) {
					http.Redirect(w, r, PendingPath, http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "account_pending",
					Err:     errAccountPending,
				})

			case domainauth.DecisionRedirectDefault:
				if IsBrowserRequest(r) {
					http.Redirect(w, r, domainauth.DefaultLandingPath, http.StatusSeeOther)
					return
				}
				WriteError(w, ErrorParams{
					Code:    http.StatusForbidden,
					ErrCode: "insufficient_role",
					Err:     errInsufficientRole,
				})
			}
		})
	}
}

// redirectToLogin sends browser requests to the login page with the
// current URL as redirect_uri.
func redirectToLogin(w http.ResponseWriter, r *http.Request) {
	redirectPath := safeRedirectPath(r.URL.RequestURI())
	loginURL := LoginPath + "?redirect_uri=" + url.QueryEscape(redirectPath)
	http.Redirect(w, r, loginURL, http.StatusSeeOther)
}

// safeRedirectPath ensures the provided redirect is a same-origin relative
// path starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
