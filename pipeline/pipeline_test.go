package pipeline_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	campuserrors "github.com/jrsteele09/go-campus/internal/errors"
	"github.com/jrsteele09/go-campus/localstore"
	"github.com/jrsteele09/go-campus/pipeline"
	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func respond(status int, body string) pipeline.Doer {
	return pipeline.DoerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(body)),
			Header:     http.Header{},
			Request:    req,
		}, nil
	})
}

func newTokens(t *testing.T, token string) *tokenstore.Store {
	t.Helper()
	tokens := tokenstore.New(localstore.NewMemoryStore())
	if token != "" {
		require.NoError(t, tokens.Set(context.Background(), token))
	}
	return tokens
}

func newRequest(t *testing.T) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "http://api.test/api/auth/me", nil)
	require.NoError(t, err)
	return req
}

func TestBearerToken(t *testing.T) {
	t.Run("attaches stored token", func(t *testing.T) {
		var seen string
		d := pipeline.BearerToken(newTokens(t, "t1"))(pipeline.DoerFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Get("Authorization")
			return respond(200, "{}").Do(req)
		}))
		_, err := d.Do(newRequest(t))
		require.NoError(t, err)
		require.Equal(t, "Bearer t1", seen)
	})

	t.Run("no token leaves request unauthenticated", func(t *testing.T) {
		var seen []string
		d := pipeline.BearerToken(newTokens(t, ""))(pipeline.DoerFunc(func(req *http.Request) (*http.Response, error) {
			seen = req.Header.Values("Authorization")
			return respond(200, "{}").Do(req)
		}))
		_, err := d.Do(newRequest(t))
		require.NoError(t, err)
		require.Empty(t, seen)
	})
}

func TestNormalizeErrors(t *testing.T) {
	t.Run("http error with envelope message", func(t *testing.T) {
		body := `{"message":"Course not found","status":404}`
		_, err := pipeline.NormalizeErrors()(respond(404, body)).Do(newRequest(t))

		var apiErr *pipeline.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "Course not found", apiErr.Message)
		require.Equal(t, 404, apiErr.Status)
		require.Equal(t, body, string(apiErr.Data))
		require.ErrorIs(t, err, campuserrors.ErrNotFound)
	})

	t.Run("http error without message", func(t *testing.T) {
		_, err := pipeline.NormalizeErrors()(respond(500, "oops")).Do(newRequest(t))
		var apiErr *pipeline.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, pipeline.MsgHTTPFallback, apiErr.Message)
		require.Equal(t, 500, apiErr.Status)
	})

	t.Run("no response", func(t *testing.T) {
		failing := pipeline.DoerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})
		_, err := pipeline.NormalizeErrors()(failing).Do(newRequest(t))
		var apiErr *pipeline.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, pipeline.MsgNoResponse, apiErr.Message)
		require.Equal(t, 503, apiErr.Status)
		require.ErrorIs(t, err, campuserrors.ErrNoResponse)
	})

	t.Run("configuration error", func(t *testing.T) {
		failing := pipeline.DoerFunc(func(*http.Request) (*http.Response, error) {
			return nil, &pipeline.ConfigError{Err: errors.New("token store unavailable")}
		})
		_, err := pipeline.NormalizeErrors()(failing).Do(newRequest(t))
		var apiErr *pipeline.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, "token store unavailable", apiErr.Message)
		require.Equal(t, 500, apiErr.Status)
		require.Equal(t, pipeline.KindConfig, apiErr.Kind)
	})

	t.Run("success passes through", func(t *testing.T) {
		resp, err := pipeline.NormalizeErrors()(respond(201, `{"data":{}}`)).Do(newRequest(t))
		require.NoError(t, err)
		require.Equal(t, 201, resp.StatusCode)
	})
}

func TestUnauthorizedPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("clears token redirects and notifies", func(t *testing.T) {
		tokens := newTokens(t, "stale")
		nav := pipeline.NewMemoryNavigator("/dashboard")
		policy := pipeline.NewUnauthorizedPolicy(tokens, nav)
		expired := 0
		policy.OnExpired(func() { expired++ })

		d := pipeline.Chain(respond(401, `{"message":"Token expired"}`), policy.Middleware(), pipeline.NormalizeErrors())
		_, err := d.Do(newRequest(t))

		require.True(t, pipeline.IsUnauthorized(err))
		_, ok, _ := tokens.Get(ctx)
		require.False(t, ok)
		require.Equal(t, []string{"/login?redirect=%2Fdashboard"}, nav.Redirects())
		require.Equal(t, "/login", nav.CurrentPath())
		require.Equal(t, 1, expired)
	})

	t.Run("no redirect from the login view", func(t *testing.T) {
		tokens := newTokens(t, "stale")
		nav := pipeline.NewMemoryNavigator("/login")
		policy := pipeline.NewUnauthorizedPolicy(tokens, nav)

		d := pipeline.Chain(respond(401, ""), policy.Middleware(), pipeline.NormalizeErrors())
		_, err := d.Do(newRequest(t))

		require.Error(t, err)
		require.Empty(t, nav.Redirects())
		_, ok, _ := tokens.Get(ctx)
		require.False(t, ok)
	})

	t.Run("other errors are ignored", func(t *testing.T) {
		tokens := newTokens(t, "t1")
		nav := pipeline.NewMemoryNavigator("/dashboard")
		policy := pipeline.NewUnauthorizedPolicy(tokens, nav)

		d := pipeline.Chain(respond(403, ""), policy.Middleware(), pipeline.NormalizeErrors())
		_, err := d.Do(newRequest(t))

		require.Error(t, err)
		require.Empty(t, nav.Redirects())
		tok, ok, _ := tokens.Get(ctx)
		require.True(t, ok)
		require.Equal(t, "t1", tok)
	})

	t.Run("cancelled listener is not called", func(t *testing.T) {
		policy := pipeline.NewUnauthorizedPolicy(newTokens(t, ""), nil)
		called := false
		cancel := policy.OnExpired(func() { called = true })
		cancel()
		policy.Handle(ctx)
		require.False(t, called)
	})
}

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) pipeline.Middleware {
		return func(next pipeline.Doer) pipeline.Doer {
			return pipeline.DoerFunc(func(req *http.Request) (*http.Response, error) {
				order = append(order, name)
				return next.Do(req)
			})
		}
	}
	_, err := pipeline.Chain(respond(200, ""), mark("a"), mark("b"), mark("c")).Do(newRequest(t))
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestClientAgainstServer(t *testing.T) {
	var gotAuth, gotRequestID, gotContentType, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get(pipeline.RequestIDHeader)
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		if r.URL.Path == "/api/private" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid token","status":401}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":"ok"}`))
	}))
	defer srv.Close()

	tokens := newTokens(t, "t1")
	nav := pipeline.NewMemoryNavigator("/courses")
	policy := pipeline.NewUnauthorizedPolicy(tokens, nav)
	client := pipeline.NewClient(srv.URL+"/api/",
		pipeline.WithTokens(tokens),
		pipeline.WithUnauthorizedPolicy(policy),
		pipeline.WithLogger(zerolog.Nop()),
		pipeline.WithTransport(srv.Client()),
	)

	resp, err := client.Send(context.Background(), http.MethodGet, "/public", map[string][]string{"level": {"Beginner"}}, nil)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, "Bearer t1", gotAuth)
	require.NotEmpty(t, gotRequestID)
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "level=Beginner", gotQuery)

	_, err = client.Send(context.Background(), http.MethodGet, "/private", nil, nil)
	var apiErr *pipeline.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "Invalid token", apiErr.Message)
	require.Equal(t, []string{"/login?redirect=%2Fcourses"}, nav.Redirects())

	_, err = client.Send(context.Background(), http.MethodGet, "/public", nil, nil)
	require.NoError(t, err)
	require.Empty(t, gotAuth)
}

func TestClientNoResponse(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := pipeline.NewClient(url, pipeline.WithLogger(zerolog.Nop()))
	_, err := client.Send(context.Background(), http.MethodGet, "/courses", nil, nil)
	require.ErrorIs(t, err, campuserrors.ErrNoResponse)
}

func TestClientConfigurationError(t *testing.T) {
	client := pipeline.NewClient("http://api.test", pipeline.WithLogger(zerolog.Nop()))
	_, err := client.Send(context.Background(), http.MethodPost, "/x", nil, map[string]any{"bad": make(chan int)})
	var apiErr *pipeline.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, 500, apiErr.Status)
	require.Equal(t, pipeline.KindConfig, apiErr.Kind)
}
