package cpapi

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/lexfrei/go-cpapi/internal/response"
)

var (
	// ErrMissingCredentials is returned by NewWithConfig when the server,
	// user or password is empty.
	ErrMissingCredentials = errors.New("server, user and password are required")

	// ErrClientClosed is returned by calls made after Close.
	ErrClientClosed = errors.New("client is closed")

	// ErrMissingSessionID is returned when a login reply carries no sid.
	ErrMissingSessionID = errors.New("login response has no sid")

	// ErrMissingTaskID is returned when an asynchronous call is accepted
	// without a task-id to track.
	ErrMissingTaskID = errors.New("response has no task-id")

	// ErrNothingToPublish is returned by Publish when the session has no
	// pending changes. No publish call is made in that case.
	ErrNothingToPublish = errors.New("no changes to publish")

	// ErrUnsupportedObjectType is returned by DeleteObject for object types
	// it has no delete command for.
	ErrUnsupportedObjectType = errors.New("unsupported object type")
)

// APIError is an error reported by the management server. Code and Message
// are passed through verbatim from the reply body.
type APIError = response.APIError

// TransportError reports a call that never produced an HTTP reply:
// connection refused, TLS handshake failure, timeout and the like.
// Transport errors are never retried.
type TransportError struct {
	APIMethod string
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error calling %s: %v", e.APIMethod, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
