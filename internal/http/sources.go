package httpx

import (
	"context"
	"errors"
	"net/http"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
	"github.com/stewardly/ledger-api/internal/service"
)

// SessionCookieName is the cookie carrying the opaque session token.
const SessionCookieName = "ledger_session"

var (
	errResolving        = errors.New("session resolution in progress, retry shortly")
	errAuthRequired     = errors.New("authentication required")
	errAccountPending   = errors.New("account is awaiting approval")
	errInsufficientRole = errors.New("insufficient role for this resource")
)

// SessionLoader is the slice of SessionService the cookie source needs.
type SessionLoader interface {
	GetSession(ctx context.Context, token string) (domainauth.Session, error)
}

// CookieStateSource derives the session state from the session cookie and
// the server-side session store. Missing, unknown, or expired tokens yield
// the anonymous state.
type CookieStateSource struct {
	Sessions SessionLoader
}

// SessionState implements SessionStateSource.
func (s *CookieStateSource) SessionState(r *http.Request) (domainauth.SessionState, string) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return domainauth.SessionState{}, ""
	}
	sess, err := s.Sessions.GetSession(r.Context(), cookie.Value)
	if err != nil {
		return domainauth.SessionState{}, ""
	}
	return sess.State(), sess.Token
}

// TrackerStateSource serves the in-process identity stream's state for
// every request. Used in dev/mock auth mode, where the whole app runs off
// a single tracked identity.
type TrackerStateSource struct {
	Tracker *service.SessionTracker
}

// SessionState implements SessionStateSource.
func (s *TrackerStateSource) SessionState(*http.Request) (domainauth.SessionState, string) {
	return s.Tracker.State(), ""
}
