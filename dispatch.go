package cpapi

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-cpapi/internal/response"
	"github.com/lexfrei/go-cpapi/internal/retry"
	"github.com/lexfrei/go-cpapi/observability"
)

// Call invokes an API method with an optional payload and returns the parsed
// reply.
//
// Every method except login needs a session; when none is held Call logs in
// first. If the server reports the session as expired or unknown, Call logs
// in again and re-sends the same request once. A second rejection is returned
// as an *APIError. Transport failures are returned as *TransportError and are
// never retried.
func (c *Client) Call(ctx context.Context, method string, payload Payload) (*Response, error) {
	if c.closed {
		return nil, errors.WithStack(ErrClientClosed)
	}
	if method == "" {
		return nil, errors.New("API method is required")
	}

	if method == MethodLogin {
		return c.send(ctx, method, payload)
	}

	if c.sid == "" {
		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}

	renewals := 0
	for {
		resp, err := c.send(ctx, method, payload)
		if err == nil {
			return resp, nil
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.SessionInvalid() || !retry.CanRenew(renewals) {
			return nil, err
		}
		renewals++

		c.logger.Warn("session rejected, logging in again",
			observability.Field{Key: "api_method", Value: method},
			observability.Field{Key: "code", Value: apiErr.Code},
		)
		c.metrics.RecordSessionRenewal(method)

		if err := c.login(ctx); err != nil {
			return nil, err
		}
	}
}

// send performs a single exchange without any session handling.
func (c *Client) send(ctx context.Context, method string, payload Payload) (*Response, error) {
	body := []byte("{}")
	if len(payload) > 0 {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode payload for %s", method)
		}
		body = encoded
	}

	reply, err := c.http.PostJSON(ctx, c.endpoint(method), body)
	if err != nil {
		return nil, &TransportError{APIMethod: method, Err: err}
	}

	data, err := response.Handle(reply.StatusCode, reply.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", method)
	}

	return &Response{raw: data}, nil
}
