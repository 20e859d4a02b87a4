package tui

import "github.com/sahilbajaj/khata/internal/session"

// gateDecision is what the router does with a view given the current
// session state.
type gateDecision int

const (
	// gateWait shows the loading placeholder; no redirect yet.
	gateWait gateDecision = iota
	// gateRender shows the requested view.
	gateRender
	// gateRedirect sends the user to the other side of the auth wall.
	gateRedirect
)

// resolveProtected gates views that require a session. While the
// session is still resolving nothing is decided, so an expiring
// token never flashes the dashboard before the login screen.
func resolveProtected(st session.State) gateDecision {
	switch st {
	case session.StateAuthenticated:
		return gateRender
	case session.StateUnauthenticated:
		return gateRedirect
	default:
		return gateWait
	}
}

// resolvePublic gates the login and register views, which bounce an
// already-authenticated user to the dashboard.
func resolvePublic(st session.State) gateDecision {
	switch st {
	case session.StateAuthenticated:
		return gateRedirect
	case session.StateUnauthenticated:
		return gateRender
	default:
		return gateWait
	}
}
