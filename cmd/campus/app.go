package main

import (
	"context"
	"io"

	"github.com/jrsteele09/go-campus/api"
	"github.com/jrsteele09/go-campus/guard"
	"github.com/jrsteele09/go-campus/internal/config"
	"github.com/jrsteele09/go-campus/localstore"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/session"
	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// app is everything a command needs: the session, the guard and the backend behind them.
type app struct {
	out      io.Writer
	store    localstore.Store
	tokens   tokenstore.Tokens
	nav      *cliNavigator
	backend  api.Backend
	session  *session.Provider
	guard    *guard.Guard
	closeFns []func()
}

// newApp wires the library the way a browser page would: storage, pipeline, session, guard.
func newApp(ctx context.Context, cfg config.ClientConfig, logger zerolog.Logger, out, errOut io.Writer) (*app, error) {
	store, err := localstore.Open(ctx, cfg.GetStoreKind(), cfg.GetStorePath())
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] failed to open local storage")
	}
	tokens := tokenstore.New(store)
	nav := newCLINavigator(errOut)
	policy := pipeline.NewUnauthorizedPolicy(tokens, nav,
		pipeline.WithLoginPath(cfg.GetLoginPath()),
		pipeline.WithPolicyLogger(logger),
	)
	client := pipeline.NewClient(cfg.GetAPIURL(),
		pipeline.WithTimeout(cfg.GetRequestTimeout()),
		pipeline.WithLogger(logger),
		pipeline.WithTokens(tokens),
		pipeline.WithUnauthorizedPolicy(policy),
	)
	a := newAppWithBackend(api.NewHTTPClient(client), tokens, nav, policy, logger, out)
	a.store = store
	return a, nil
}

func newAppWithBackend(backend api.Backend, tokens tokenstore.Tokens, nav *cliNavigator, policy *pipeline.UnauthorizedPolicy, logger zerolog.Logger, out io.Writer) *app {
	opts := []session.Option{session.WithLogger(logger)}
	if policy != nil {
		opts = append(opts, session.WithExpiryNotifier(policy))
	}
	provider := session.New(backend, tokens, opts...)
	loginPath := pipeline.DefaultLoginPath
	if policy != nil {
		loginPath = policy.LoginPath()
	}
	return &app{
		out:      out,
		tokens:   tokens,
		nav:      nav,
		backend:  backend,
		session:  provider,
		guard:    guard.New(provider, nav, loginPath),
		closeFns: []func(){provider.Close},
	}
}

func (a *app) Close() error {
	for _, fn := range a.closeFns {
		fn()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// protected runs view behind the route guard at path, resolving the session first.
func (a *app) protected(ctx context.Context, path string, view guard.View) error {
	a.nav.Navigate(path)
	a.session.Init(ctx)
	out, err := a.guard.Run(ctx, path, view)
	if err != nil {
		return err
	}
	if out.Kind == guard.Redirect {
		return errLoginRequired
	}
	return nil
}
