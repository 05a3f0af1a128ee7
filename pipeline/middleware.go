package pipeline

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// RequestIDHeader is echoed by the reference backend in its logs.
const RequestIDHeader = "X-Request-ID"

const maxErrorBody = 1 << 20

// RequestID tags requests that have no X-Request-ID yet.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(RequestIDHeader) == "" {
				req = req.Clone(req.Context())
				req.Header.Set(RequestIDHeader, uuid.NewString())
			}
			return next.Do(req)
		})
	}
}

// Logging writes one debug line per call.
func Logging(logger zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)

			evt := logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", req.Header.Get(RequestIDHeader)).
				Dur("latency", time.Since(start))

			var apiErr *APIError
			switch {
			case errors.As(err, &apiErr):
				evt.Int("status", apiErr.Status).Str("error", apiErr.Message).Msg("api call failed")
			case err != nil:
				evt.Err(err).Msg("api call failed")
			default:
				evt.Int("status", resp.StatusCode).Msg("api call")
			}
			return resp, err
		})
	}
}

// BearerToken attaches the stored token. Without a token the request goes out unauthenticated.
func BearerToken(tokens tokenstore.Tokens) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			token, ok, err := tokens.Get(req.Context())
			if err != nil {
				return nil, &ConfigError{Err: err}
			}
			if ok {
				req = req.Clone(req.Context())
				(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
			}
			return next.Do(req)
		})
	}
}

// NormalizeErrors turns every failure into an *APIError. Successful responses pass through untouched.
func NormalizeErrors() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.Do(req)
			if err != nil {
				return nil, normalize(err)
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			return nil, httpError(resp.StatusCode, body)
		})
	}
}

func normalize(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return configurationError(cfgErr.Err)
	}
	return noResponseError(err)
}
