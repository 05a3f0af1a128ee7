package main

import (
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/jrsteele09/go-campus/pipeline"
)

var _ pipeline.Navigator = (*cliNavigator)(nil)

// cliNavigator treats each command as a page. A redirect becomes a hint on stderr.
type cliNavigator struct {
	mu       sync.Mutex
	out      io.Writer
	path     string
	redirect string
}

func newCLINavigator(out io.Writer) *cliNavigator {
	return &cliNavigator{out: out, path: "/"}
}

func (n *cliNavigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.path
}

func (n *cliNavigator) Navigate(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.path = path
}

func (n *cliNavigator) Redirect(to string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.redirect == to {
		return
	}
	n.redirect = to
	if u, err := url.Parse(to); err == nil {
		n.path = u.Path
	}
	fmt.Fprintf(n.out, "%s\n", hintStyle.Render("Please sign in with `campus login` ("+to+")"))
}

// Redirected returns the last redirect target, if any.
func (n *cliNavigator) Redirected() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.redirect
}
