package guard

import (
	"github.com/morlov/merchant-admin/internal/client/session"
	"github.com/morlov/merchant-admin/internal/domain/enums"
)

// Outcome is the navigation decision for a guarded view.
type Outcome int

const (
	// OutcomeLoading suspends the decision until the session initializes.
	OutcomeLoading Outcome = iota
	// OutcomeRedirectLogin sends an unauthenticated visitor to the login view.
	OutcomeRedirectLogin
	// OutcomeRedirectDefault sends an authenticated caller whose role is not
	// in the allowlist to the default view.
	OutcomeRedirectDefault
	// OutcomeAllow renders the target view.
	OutcomeAllow
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRedirectLogin:
		return "redirect_login"
	case OutcomeRedirectDefault:
		return "redirect_default"
	case OutcomeAllow:
		return "allow"
	default:
		return "unknown"
	}
}

// SessionState is the slice of the session store the guard reads.
type SessionState interface {
	Initialized() bool
	IsAuthenticated() bool
	Identity() (session.Identity, bool)
}

// Decide gates a protected view. An empty allowlist admits any authenticated
// session. Membership is an exact, case-sensitive match on the role value;
// there is no hierarchy, so super_admin does not pass an admin-only list
// unless listed.
func Decide(state SessionState, allowlist []enums.Role) Outcome {
	if !state.Initialized() {
		return OutcomeLoading
	}
	if !state.IsAuthenticated() {
		return OutcomeRedirectLogin
	}
	if len(allowlist) == 0 {
		return OutcomeAllow
	}

	identity, ok := state.Identity()
	if !ok {
		return OutcomeRedirectLogin
	}
	for _, role := range allowlist {
		if identity.Role == role {
			return OutcomeAllow
		}
	}
	return OutcomeRedirectDefault
}

// DecidePublic gates auth-only views (login, forgot, reset): an authenticated
// session is redirected away to the default view.
func DecidePublic(state SessionState) Outcome {
	if !state.Initialized() {
		return OutcomeLoading
	}
	if state.IsAuthenticated() {
		return OutcomeRedirectDefault
	}
	return OutcomeAllow
}
