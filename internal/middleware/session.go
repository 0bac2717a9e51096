// Package middleware provides the RoundTripper layers used by the management API transport.
package middleware

import (
	"maps"
	"net/http"
)

// TokenSource returns the session token to send, or an empty string when no
// session is held. It is consulted on every request so a token obtained by a
// re-login is picked up without rebuilding the transport.
type TokenSource func() string

// Session returns a middleware that attaches the current session token under
// headerName. Requests made while no session is held go out without the header.
func Session(headerName string, token TokenSource) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		return &sessionTransport{
			next:       next,
			headerName: headerName,
			token:      token,
		}
	}
}

type sessionTransport struct {
	next       http.RoundTripper
	headerName string
	token      TokenSource
}

func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	sid := t.token()
	if sid == "" {
		//nolint:wrapcheck // Middleware passes through errors from next handler in chain
		return t.next.RoundTrip(req)
	}

	// Clone request to avoid modifying original
	req = cloneRequest(req)
	req.Header.Set(t.headerName, sid)

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

// cloneRequest creates a shallow copy of the request with a cloned header map.
func cloneRequest(req *http.Request) *http.Request {
	r := new(http.Request)
	*r = *req
	r.Header = make(http.Header, len(req.Header))
	maps.Copy(r.Header, req.Header)
	return r
}
