package httpx

import (
	"context"

	domainauth "github.com/stewardly/ledger-api/internal/domain/auth"
)

// stateKey is an unexported context key type to avoid collisions across
// packages. Centralized here so all handlers and middleware share it.
type stateKey struct{}

// tokenKey carries the opaque session token for handlers that need to
// mutate the session itself (refresh, sign-out).
type tokenKey struct{}

// SetStateInContext returns a child context carrying the session state.
func SetStateInContext(ctx context.Context, state domainauth.SessionState) context.Context {
	return context.WithValue(ctx, stateKey{}, state)
}

// StateFromContext returns the session state placed by the access
// middleware. The zero state (anonymous, unresolved) is returned when no
// middleware ran.
func StateFromContext(ctx context.Context) domainauth.SessionState {
	if state, ok := ctx.Value(stateKey{}).(domainauth.SessionState); ok {
		return state
	}
	return domainauth.SessionState{}
}

// SetTokenInContext returns a child context carrying the session token.
func SetTokenInContext(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the session token for the request, or "".
func TokenFromContext(ctx context.Context) string {
	if token, ok := ctx.Value(tokenKey{}).(string); ok {
		return token
	}
	return ""
}
