package guard

import (
	"github.com/salqa/sal/cli/pkg/session"
)

const (
	LoginPath = "/login"
	HomePath  = "/home"
)

// Location is a navigable destination. From records where the user was
// headed before being redirected.
type Location struct {
	Path string
	From *Location
}

// Action is what a guard tells the caller to do.
type Action int

const (
	// Render shows the requested destination.
	Render Action = iota
	// Loading shows a placeholder until the session settles.
	Loading
	// Nothing renders nothing until the session settles.
	Nothing
	// Redirect navigates to Decision.Target instead.
	Redirect
)

func (a Action) String() string {
	switch a {
	case Loading:
		return "loading"
	case Nothing:
		return "nothing"
	case Redirect:
		return "redirect"
	default:
		return "render"
	}
}

// Decision is the outcome of a guard.
type Decision struct {
	Action Action
	Target Location
}

// RequireAuth admits authenticated sessions and sends everyone else to the
// login page, remembering the requested location.
func RequireAuth(state session.State, requested Location) Decision {
	switch state.Status {
	case session.Unknown:
		return Decision{Action: Loading}
	case session.Authenticated:
		return Decision{Action: Render}
	default:
		from := requested
		return Decision{
			Action: Redirect,
			Target: Location{Path: LoginPath, From: &from},
		}
	}
}

// RequireGuest admits signed-out sessions. Signed-in users are sent back to
// where they came from, or home.
func RequireGuest(state session.State, requested Location) Decision {
	switch state.Status {
	case session.Unknown:
		return Decision{Action: Nothing}
	case session.Authenticated:
		return Decision{Action: Redirect, Target: ReturnTarget(requested)}
	default:
		return Decision{Action: Render}
	}
}

// ReturnTarget is the location recorded in loc.From, or home.
func ReturnTarget(loc Location) Location {
	if loc.From != nil && loc.From.Path != "" {
		return Location{Path: loc.From.Path}
	}
	return Location{Path: HomePath}
}
