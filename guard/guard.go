// Package guard decides what a protected view shows for the current session.
package guard

import (
	"context"

	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/session"
)

// Kind of outcome for a protected view.
type Kind int

const (
	// Loading means the session is still initializing.
	Loading Kind = iota
	// Render means the view may be shown.
	Render
	// Redirect means the visitor must sign in first. Target carries the login path.
	Redirect
)

func (k Kind) String() string {
	switch k {
	case Loading:
		return "loading"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

type Outcome struct {
	Kind   Kind
	Target string
}

// SessionSource is satisfied by *session.Provider.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// Guard holds no state of its own; every decision comes from the session snapshot.
type Guard struct {
	Session   SessionSource
	Navigator pipeline.Navigator
	LoginPath string
}

func New(s SessionSource, nav pipeline.Navigator, loginPath string) *Guard {
	if loginPath == "" {
		loginPath = pipeline.DefaultLoginPath
	}
	return &Guard{Session: s, Navigator: nav, LoginPath: loginPath}
}

// Resolve maps the session state to an outcome for a view at path.
func (g *Guard) Resolve(path string) Outcome {
	return g.resolve(g.Session.Snapshot(), path)
}

func (g *Guard) resolve(snap session.Snapshot, path string) Outcome {
	switch snap.State {
	case session.StateInitializing:
		return Outcome{Kind: Loading}
	case session.StateAuthenticated:
		return Outcome{Kind: Render}
	default:
		return Outcome{Kind: Redirect, Target: pipeline.LoginRedirect(g.LoginPath, path)}
	}
}

// View renders a protected page for the signed in user.
type View func(ctx context.Context, snap session.Snapshot) error

// Run calls view only for an authenticated session and performs the redirect otherwise.
// While loading nothing happens.
func (g *Guard) Run(ctx context.Context, path string, view View) (Outcome, error) {
	snap := g.Session.Snapshot()
	out := g.resolve(snap, path)
	switch out.Kind {
	case Render:
		return out, view(ctx, snap)
	case Redirect:
		if g.Navigator != nil {
			g.Navigator.Redirect(out.Target)
		}
	}
	return out, nil
}
