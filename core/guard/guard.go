// Package guard decides whether a session may see a protected view. The
// decision is a pure function of session state so it stays unit-testable and
// free of rendering concerns; delivery layers translate Redirect outcomes
// into actual navigation before any protected content is written.
package guard

import (
	"github.com/uptpik/pikweb/core"
	"github.com/uptpik/pikweb/core/session"
)

type Outcome int

const (
	// Loading: initialization or an auth operation is in flight; render a
	// neutral placeholder and do not navigate.
	Loading Outcome = iota
	// Redirect: navigate to Decision.Target before rendering anything.
	Redirect
	// Allow: render the protected content unmodified.
	Allow
)

func (o Outcome) String() string {
	switch o {
	case Loading:
		return "LOADING"
	case Redirect:
		return "REDIRECTING"
	case Allow:
		return "ALLOWED"
	}
	return "UNKNOWN"
}

type Decision struct {
	Outcome Outcome
	Target  string // set only when Outcome == Redirect
}

// Routes holds the navigation targets the guard redirects to.
type Routes struct {
	Login          string
	AdminDashboard string
	Home           string
}

// RoutesFromConfig reads the configured route table.
func RoutesFromConfig() Routes {
	return Routes{
		Login:          core.Conf.GetString("loginRoute"),
		AdminDashboard: core.Conf.GetString("adminDashboardRoute"),
		Home:           core.Conf.GetString("homeRoute"),
	}
}

// Decide evaluates the protected-view rules for the given session state.
// An empty allowedRoles means "authenticated only". Decide must be
// re-evaluated on every state change, not just on mount: login/logout can
// happen while a guarded view is showing.
func Decide(st session.State, allowedRoles []string, r Routes) Decision {
	if !st.IsInitialized || st.IsLoading {
		return Decision{Outcome: Loading}
	}
	if !st.IsAuthenticated {
		return Decision{Outcome: Redirect, Target: r.Login}
	}
	if len(allowedRoles) > 0 && !hasRole(st.User, allowedRoles) {
		return Decision{Outcome: Redirect, Target: landingFor(st.User, r)}
	}
	return Decision{Outcome: Allow}
}

// DecideGuest is the inverse guard for guest-only views (login, register):
// authenticated sessions are sent to their role landing page instead.
func DecideGuest(st session.State, r Routes) Decision {
	if !st.IsInitialized || st.IsLoading {
		return Decision{Outcome: Loading}
	}
	if st.IsAuthenticated {
		return Decision{Outcome: Redirect, Target: landingFor(st.User, r)}
	}
	return Decision{Outcome: Allow}
}

// LandingFor returns the post-login destination for a user. Callers pass the
// user freshly returned by Login rather than re-reading shared state, to
// avoid a read-after-write race.
func LandingFor(usr *session.User, r Routes) string {
	return landingFor(usr, r)
}

func landingFor(usr *session.User, r Routes) string {
	if usr != nil && usr.IsAdmin() {
		return r.AdminDashboard
	}
	return r.Home
}

func hasRole(usr *session.User, roles []string) bool {
	if usr == nil {
		return false
	}
	for _, role := range roles {
		if usr.Role == role {
			return true
		}
	}
	return false
}
