// Package pipeline sends every API call through one ordered chain of middleware: request IDs, logging,
// bearer tokens, the 401 policy and error normalization.
package pipeline

import "net/http"

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware wraps a Doer with extra behaviour.
type Middleware func(next Doer) Doer

// Chain wraps d so that the first middleware is the outermost.
func Chain(d Doer, mw ...Middleware) Doer {
	for i := len(mw) - 1; i >= 0; i-- {
		d = mw[i](d)
	}
	return d
}
