// Package httpclient provides the HTTP transport used to reach the management
// API: a middleware-wrapped http.Client that posts JSON documents.
package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
)

// DefaultTimeout is the per-request timeout used when none is configured.
const DefaultTimeout = 30 * time.Second

// Client is an HTTP client that supports middleware chaining.
type Client struct {
	base       *http.Client
	middleware []Middleware
	closed     bool
}

// Middleware wraps an http.RoundTripper to add behavior.
// Middleware is applied in order: first middleware is outermost.
type Middleware func(http.RoundTripper) http.RoundTripper

// Reply is the raw outcome of an exchange that reached the server.
type Reply struct {
	StatusCode int
	Body       []byte
}

// New creates a new HTTP client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		base: &http.Client{
			Timeout: DefaultTimeout,
		},
		middleware: []Middleware{},
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(c.middleware) > 0 {
		transport := c.base.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}

		// Apply middleware in reverse order so first middleware is outermost
		for i := len(c.middleware) - 1; i >= 0; i-- {
			transport = c.middleware[i](transport)
		}

		c.base.Transport = transport
	}

	return c
}

// Do executes an HTTP request using the configured middleware chain.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	//nolint:wrapcheck // Callers classify transport errors themselves
	return c.base.Do(req)
}

// PostJSON sends body as an application/json POST to url and reads the whole reply.
// A non-nil error means the exchange failed below HTTP (connection, TLS, timeout);
// any HTTP status, including errors, is returned in the Reply.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte) (*Reply, error) {
	if c.closed {
		return nil, errors.New("http client is closed")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return &Reply{StatusCode: resp.StatusCode, Body: data}, nil
}

// Close releases idle connections held by the transport. It is safe to call
// more than once; only the first call has an effect.
func (c *Client) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.base.CloseIdleConnections()
}

// HTTPClient returns the underlying http.Client.
// This is useful when the client needs to be passed to code that expects *http.Client.
func (c *Client) HTTPClient() *http.Client {
	return c.base
}
