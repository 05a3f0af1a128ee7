package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-campus/tokenstore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTimeout bounds every call unless configured otherwise.
const DefaultTimeout = 10 * time.Second

// Client is the configured HTTP client every API call goes through.
type Client struct {
	baseURL string
	doer    Doer
}

type clientOptions struct {
	timeout    time.Duration
	transport  Doer
	logger     zerolog.Logger
	tokens     tokenstore.Tokens
	policy     *UnauthorizedPolicy
	middleware []Middleware
}

type ClientOption func(*clientOptions)

func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithTransport replaces the underlying *http.Client, e.g. with an httptest server client.
func WithTransport(d Doer) ClientOption {
	return func(o *clientOptions) {
		o.transport = d
	}
}

func WithLogger(logger zerolog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithTokens enables bearer authentication from the token store.
func WithTokens(tokens tokenstore.Tokens) ClientOption {
	return func(o *clientOptions) {
		o.tokens = tokens
	}
}

// WithUnauthorizedPolicy enables the 401 reaction.
func WithUnauthorizedPolicy(p *UnauthorizedPolicy) ClientOption {
	return func(o *clientOptions) {
		o.policy = p
	}
}

// WithMiddleware replaces the default chain entirely.
func WithMiddleware(mw ...Middleware) ClientOption {
	return func(o *clientOptions) {
		o.middleware = mw
	}
}

// DefaultChain is request ID, logging, bearer token, 401 policy, error normalization (outermost first).
// tokens and policy may be nil to leave their stage out.
func DefaultChain(logger zerolog.Logger, tokens tokenstore.Tokens, policy *UnauthorizedPolicy) []Middleware {
	mw := []Middleware{RequestID(), Logging(logger)}
	if tokens != nil {
		mw = append(mw, BearerToken(tokens))
	}
	if policy != nil {
		mw = append(mw, policy.Middleware())
	}
	return append(mw, NormalizeErrors())
}

func NewClient(baseURL string, opts ...ClientOption) *Client {
	o := clientOptions{
		timeout: DefaultTimeout,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = &http.Client{Timeout: o.timeout}
	}
	if o.middleware == nil {
		o.middleware = DefaultChain(o.logger, o.tokens, o.policy)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		doer:    Chain(o.transport, o.middleware...),
	}
}

// BaseURL is the API root every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send issues method path?query with an optional JSON body. A nil error guarantees a 2xx response
// whose body the caller must close.
func (c *Client) Send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, configurationError(err)
	}
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, normalize(err)
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Client.newRequest] encode body")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.newRequest] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}
