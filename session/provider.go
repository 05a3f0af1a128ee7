// Package session owns who is signed in. A Provider is created once per process, initialised once from
// the stored token and then changed only through Login, Register, Logout, Expire and UpdateProfile.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/jrsteele09/go-campus/validation"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSuperseded is returned when a logout or expiry happened while a login was in flight.
	ErrSuperseded = errors.New("session changed while the request was in flight")
	// ErrNotAuthenticated is returned by operations that need a signed in user.
	ErrNotAuthenticated = errors.New("not signed in")
)

// Backend is the part of the API the provider calls.
type Backend interface {
	api.AuthAPI
	api.UserAPI
}

// ExpiryNotifier announces that the server rejected the session. pipeline.UnauthorizedPolicy satisfies it.
type ExpiryNotifier interface {
	OnExpired(fn func()) (cancel func())
}

type Provider struct {
	backend Backend
	tokens  tokenstore.Tokens
	logger  zerolog.Logger

	initOnce     sync.Once
	cancelExpiry func()

	mu    sync.Mutex
	state State
	user  *api.User
	err   string
	// epoch advances on sign in, logout and expiry. Results of calls started under an older epoch are stale.
	epoch uint64
}

type Option func(*Provider)

// WithExpiryNotifier makes the provider fall back to anonymous whenever the notifier fires.
func WithExpiryNotifier(n ExpiryNotifier) Option {
	return func(p *Provider) {
		p.cancelExpiry = n.OnExpired(p.Expire)
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

func New(backend Backend, tokens tokenstore.Tokens, opts ...Option) *Provider {
	p := &Provider{
		backend: backend,
		tokens:  tokens,
		logger:  log.Logger,
		state:   StateInitializing,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Close stops listening for expiry notifications.
func (p *Provider) Close() {
	if p.cancelExpiry != nil {
		p.cancelExpiry()
	}
}

// Init resolves the stored token into a user. It runs once; later calls wait for and return the result.
// Any failure leaves the session anonymous and is never returned as an error.
func (p *Provider) Init(ctx context.Context) Snapshot {
	p.initOnce.Do(func() { p.resolve(ctx) })
	return p.Snapshot()
}

func (p *Provider) resolve(ctx context.Context) {
	epoch := p.currentEpoch()

	_, ok, err := p.tokens.Get(ctx)
	if err != nil {
		p.logger.Err(err).Msg("failed to read stored token")
		p.settleInit(epoch, nil)
		return
	}
	if !ok {
		p.settleInit(epoch, nil)
		return
	}

	user, err := p.backend.CurrentUser(ctx)
	if err != nil {
		// A 401 has already cleared the token through the pipeline. Other failures keep it for a later retry.
		p.logger.Debug().Err(err).Msg("session could not be restored")
		p.settleInit(epoch, nil)
		return
	}
	p.settleInit(epoch, &user)
}

func (p *Provider) settleInit(epoch uint64, user *api.User) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Settling leaves the epoch alone so a login already in flight still lands.
	if p.epoch != epoch || p.state != StateInitializing {
		return
	}
	if user == nil {
		p.state = StateAnonymous
		return
	}
	p.state = StateAuthenticated
	p.user = user
}

// Login checks the input locally, then asks the server. A failure leaves the state as it was and is
// both returned and recorded in Snapshot().Error.
func (p *Provider) Login(ctx context.Context, email, password string) error {
	if err := validation.Login(email, password); err != nil {
		p.setError(err)
		return err
	}

	epoch := p.currentEpoch()
	resp, err := p.backend.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		p.setError(err)
		return err
	}
	return p.signIn(ctx, epoch, resp)
}

// Register validates the form locally and signs the new account in.
func (p *Provider) Register(ctx context.Context, form validation.Registration) error {
	if err := form.Validate(); err != nil {
		p.setError(err)
		return err
	}

	epoch := p.currentEpoch()
	resp, err := p.backend.Register(ctx, api.RegisterRequest{
		Email:    strings.TrimSpace(form.Email),
		Password: form.Password,
		Name:     strings.TrimSpace(form.Name),
		Phone:    strings.TrimSpace(form.Phone),
	})
	if err != nil {
		p.setError(err)
		return err
	}
	return p.signIn(ctx, epoch, resp)
}

// signIn stores the token and then the user, unless the session moved on while the call was running.
func (p *Provider) signIn(ctx context.Context, epoch uint64, resp api.AuthResponse) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.epoch != epoch {
		p.logger.Debug().Msg("discarding sign in result, session changed meanwhile")
		return ErrSuperseded
	}
	if err := p.tokens.Set(ctx, resp.Token); err != nil {
		p.err = err.Error()
		return pkgerrors.Wrap(err, "[Provider.signIn] store token")
	}
	user := resp.User
	p.epoch++
	p.state = StateAuthenticated
	p.user = &user
	p.err = ""
	return nil
}

// Logout tells the server (best effort, failures are only logged), then always clears the token and
// becomes anonymous. Calling it again is harmless. The only error returned is a failure to clear the
// local token.
func (p *Provider) Logout(ctx context.Context) error {
	if _, ok, _ := p.tokens.Get(ctx); ok {
		if err := p.backend.Logout(ctx); err != nil {
			p.logger.Warn().Err(err).Msg("logout request failed")
		}
	}

	clearErr := p.tokens.Clear(ctx)
	if clearErr != nil {
		p.logger.Err(clearErr).Msg("failed to clear token on logout")
	}

	p.becomeAnonymous()
	return clearErr
}

// Expire drops the user without contacting the server. The request pipeline calls it after a 401.
func (p *Provider) Expire() {
	p.becomeAnonymous()
}

func (p *Provider) becomeAnonymous() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.epoch++
	p.state = StateAnonymous
	p.user = nil
	p.err = ""
}

// UpdateProfile renames the signed in user.
func (p *Provider) UpdateProfile(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		err := &validation.Error{Field: "name", Message: validation.MsgNameRequired}
		p.setError(err)
		return err
	}
	if !p.Snapshot().Authenticated() {
		return ErrNotAuthenticated
	}

	epoch := p.currentEpoch()
	user, err := p.backend.UpdateProfile(ctx, api.ProfileUpdate{Name: name})
	if err != nil {
		p.setError(err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.epoch != epoch {
		return ErrSuperseded
	}
	p.user = &user
	p.err = ""
	return nil
}

// Snapshot copies the current session.
func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := Snapshot{State: p.state, Loading: p.state == StateInitializing, Error: p.err}
	if p.user != nil {
		u := *p.user
		s.User = &u
	}
	return s
}

func (p *Provider) currentEpoch() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.epoch
}

func (p *Provider) setError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = errorMessage(err)
}

// errorMessage is the text a form shows for err.
func errorMessage(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}
	var apiErr *pipeline.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
