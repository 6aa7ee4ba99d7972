package auth

// Decision is the outcome of evaluating a session state against a
// route's required roles.
type Decision int

const (
	// DecisionResolving means resolution is still in flight; the caller
	// must show a neutral loading state, never protected content and
	// never a redirect.
	DecisionResolving Decision = iota

	// DecisionRedirectLogin means there is no authenticated identity.
	DecisionRedirectLogin

	// DecisionRedirectPending means the identity is authenticated but
	// awaiting administrator approval.
	DecisionRedirectPending

	// DecisionRedirectDefault means the resolved role is not in the
	// route's required set; send the caller to the default landing page.
	DecisionRedirectDefault

	// DecisionAllow grants access.
	DecisionAllow
)

// String returns a short name for the decision, used in logs and tests.
func (d Decision) String() string {
	switch d {
	case DecisionResolving:
		return "resolving"
	case DecisionRedirectLogin:
		return "redirect_login"
	case DecisionRedirectPending:
		return "redirect_pending"
	case DecisionRedirectDefault:
		return "redirect_default"
	case DecisionAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// Evaluate maps a session state and a route's required roles to an access
// decision. It is pure, total, and never touches the profile store.
//
// The rules are evaluated in order:
//  1. still resolving -> DecisionResolving
//  2. no identity -> DecisionRedirectLogin
//  3. role pending, or unresolved role -> DecisionRedirectPending
//  4. required set present and role not in it -> DecisionRedirectDefault
//  5. otherwise -> DecisionAllow
//
// An unresolved role with an identity present (store failure during
// resolution) is treated like pending: authenticated but unauthorized.
func Evaluate(state SessionState, required RoleSet) Decision {
	if state.Resolving {
		return DecisionResolving
	}
	if state.Identity == nil {
		return DecisionRedirectLogin
	}
	if state.Role == RolePending || !state.Role.Valid() {
		return DecisionRedirectPending
	}
	if required != nil && !required.Has(state.Role) {
		return DecisionRedirectDefault
	}
	return DecisionAllow
}
