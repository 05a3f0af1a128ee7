package session

import "github.com/jrsteele09/go-campus/api"

// State of the session.
type State int

const (
	StateInitializing State = iota
	StateAuthenticated
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Snapshot is a copy of the session at one instant. Changing it does not affect the provider.
type Snapshot struct {
	State   State
	User    *api.User
	Loading bool
	Error   string
}

func (s Snapshot) Authenticated() bool {
	return s.State == StateAuthenticated
}
