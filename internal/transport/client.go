// Package transport provides the authenticated HTTP layer shared by the
// fleet API clients: credential application, JSON decoding with typed API
// errors, and cursor-based pagination.
package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/dispatchware/fleetsync/pkg/constants"
	"github.com/dispatchware/fleetsync/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	http        *http.Client
	auth        Authenticator
	tokens      TokenSource
	environment string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithAuthenticator replaces the default Bearer authenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Client) {
		c.auth = auth
	}
}

// New creates a transport client for one environment. Credentials come from
// the token source and are applied as Bearer tokens unless overridden.
func New(environment string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		http:        &http.Client{Timeout: DefaultHTTPTimeout},
		auth:        &BearerAuth{},
		tokens:      tokens,
		environment: environment,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do performs an HTTP request with authentication applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.tokens != nil {
		credential, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, &errors.AuthenticationError{
				Environment: c.environment,
				Method:      "bearer",
				Message:     "failed to obtain credential",
				Err:         err,
			}
		}
		if credential != "" {
			c.auth.Apply(req, credential)
		}
	}

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// Get performs a GET request with optional query parameters.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+rawURL, err)
	}
	if len(params) > 0 {
		query := req.URL.Query()
		for key, values := range params {
			for _, v := range values {
				query.Add(key, v)
			}
		}
		req.URL.RawQuery = query.Encode()
	}
	return c.Do(ctx, req)
}

// Send performs a request with a JSON body.
func (c *Client) Send(ctx context.Context, method, rawURL string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, errors.WrapResource("create", "request", method+" "+rawURL, err)
	}
	return c.Do(ctx, req)
}

// Environment returns the environment name the client serves.
func (c *Client) Environment() string {
	return c.environment
}
