// Package response classifies raw management API replies into a JSON result
// or a structured API error.
package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"

	"github.com/lexfrei/go-cpapi/internal/retry"
)

// ErrInvalidJSON is returned when a successful reply does not carry a JSON document.
var ErrInvalidJSON = errors.New("response body is not valid JSON")

// APIError is an error reported by the management server in a non-200 reply.
// Code and Message are copied verbatim from the reply body.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("API error: status=%d: %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("API error: status=%d code=%s: %s", e.StatusCode, e.Code, e.Message)
}

// SessionInvalid reports whether the server rejected the session token
// (expired or unknown), i.e. whether a fresh login may recover the request.
func (e *APIError) SessionInvalid() bool {
	return retry.ShouldRenewSession(e.Code)
}

// Handle inspects a reply and returns the JSON body on HTTP 200.
//
// Any other status yields an *APIError built from the body's "code" and
// "message" fields. Bodies that are not JSON keep their raw text as Message.
//
// Usage:
//
//	body, err := response.Handle(reply.StatusCode, reply.Body)
func Handle(statusCode int, body []byte) ([]byte, error) {
	if statusCode == http.StatusOK {
		if len(body) == 0 || !gjson.ValidBytes(body) {
			return nil, errors.WithStack(ErrInvalidJSON)
		}

		return body, nil
	}

	//nolint:wrapcheck // Creating new error for non-200 status, no source error to wrap
	return nil, Decode(statusCode, body)
}

// Decode builds an *APIError from a non-200 reply body.
func Decode(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode}

	if gjson.ValidBytes(body) {
		apiErr.Code = gjson.GetBytes(body, "code").String()
		apiErr.Message = gjson.GetBytes(body, "message").String()
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}

	return apiErr
}
