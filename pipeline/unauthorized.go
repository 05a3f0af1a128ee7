package pipeline

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultLoginPath is the login view path.
const DefaultLoginPath = "/login"

// UnauthorizedPolicy reacts to a 401 from the server: the token is dropped, the user is sent to login
// and expiry listeners (the session provider) are told.
type UnauthorizedPolicy struct {
	tokens    tokenstore.Tokens
	navigator Navigator
	loginPath string
	logger    zerolog.Logger

	mu        sync.Mutex
	nextID    int
	listeners map[int]func()
}

type PolicyOption func(*UnauthorizedPolicy)

func WithLoginPath(path string) PolicyOption {
	return func(p *UnauthorizedPolicy) {
		if path != "" {
			p.loginPath = path
		}
	}
}

func WithPolicyLogger(logger zerolog.Logger) PolicyOption {
	return func(p *UnauthorizedPolicy) {
		p.logger = logger
	}
}

// NewUnauthorizedPolicy builds the policy. navigator may be nil, in which case no redirect happens.
func NewUnauthorizedPolicy(tokens tokenstore.Tokens, navigator Navigator, opts ...PolicyOption) *UnauthorizedPolicy {
	p := &UnauthorizedPolicy{
		tokens:    tokens,
		navigator: navigator,
		loginPath: DefaultLoginPath,
		logger:    log.Logger,
		listeners: make(map[int]func()),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// LoginPath is the login view this policy redirects to.
func (p *UnauthorizedPolicy) LoginPath() string {
	return p.loginPath
}

// OnExpired registers fn to run after every 401. The returned func unregisters it.
func (p *UnauthorizedPolicy) OnExpired(fn func()) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.listeners, id)
	}
}

// Handle performs the 401 reaction outside of any request, in the same order the middleware does.
func (p *UnauthorizedPolicy) Handle(ctx context.Context) {
	if err := p.tokens.Clear(ctx); err != nil {
		p.logger.Err(err).Msg("failed to clear token after 401")
	}

	if p.navigator != nil {
		current := p.navigator.CurrentPath()
		if !strings.Contains(current, p.loginPath) {
			p.navigator.Redirect(LoginRedirect(p.loginPath, current))
		}
	}

	p.mu.Lock()
	listeners := make([]func(), 0, len(p.listeners))
	for _, fn := range p.listeners {
		listeners = append(listeners, fn)
	}
	p.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Middleware applies the policy to 401 errors and returns the error unchanged.
func (p *UnauthorizedPolicy) Middleware() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.Kind == KindHTTP && apiErr.Status == http.StatusUnauthorized {
				p.logger.Debug().Str("path", req.URL.Path).Msg("session rejected by server")
				p.Handle(req.Context())
			}
			return resp, err
		})
	}
}
