package pipeline

import (
	"net/url"
	"sync"
)

// Navigator is whatever owns "where the user currently is", a browser location or a CLI command.
type Navigator interface {
	CurrentPath() string
	Redirect(to string)
}

// LoginRedirect builds the login target that remembers where the user was going.
func LoginRedirect(loginPath, from string) string {
	return loginPath + "?redirect=" + url.QueryEscape(from)
}

var _ Navigator = (*MemoryNavigator)(nil)

// MemoryNavigator records navigation in memory.
type MemoryNavigator struct {
	mu        sync.Mutex
	path      string
	redirects []string
}

func NewMemoryNavigator(path string) *MemoryNavigator {
	return &MemoryNavigator{path: path}
}

func (n *MemoryNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

// Redirect moves to the path part of to and records the full target.
func (n *MemoryNavigator) Redirect(to string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.redirects = append(n.redirects, to)
	if u, err := url.Parse(to); err == nil {
		n.path = u.Path
	} else {
		n.path = to
	}
}

// Navigate sets the current path without recording a redirect.
func (n *MemoryNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}

// Redirects returns every redirect target so far, oldest first.
func (n *MemoryNavigator) Redirects() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.redirects...)
}
