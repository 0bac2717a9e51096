// Package testutil provides a scriptable fake management server for tests.
package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// SessionHeader is the session header the fake server reads by default.
const SessionHeader = "X-Session-Token"

// Call is one request received by a ManagementServer.
type Call struct {
	Method  string
	Token   string
	Payload map[string]any
}

// HandlerFunc answers a single API call. The returned body is JSON-encoded.
type HandlerFunc func(call Call) (statusCode int, body any)

// ManagementServer is an httptest TLS server that speaks the /web_api/{method}
// protocol and records every call it receives.
type ManagementServer struct {
	*httptest.Server

	t        *testing.T
	header   string
	mu       sync.Mutex
	calls    []Call
	handlers map[string]HandlerFunc
}

// NewManagementServer starts a TLS fake server with a self-signed certificate.
// Methods without a handler answer 404 with generic_err_command_not_found.
func NewManagementServer(t *testing.T, handlers map[string]HandlerFunc) *ManagementServer {
	t.Helper()

	return NewManagementServerWithHeader(t, SessionHeader, handlers)
}

// NewManagementServerWithHeader is like NewManagementServer but reads the
// session token from a custom header.
func NewManagementServerWithHeader(t *testing.T, header string, handlers map[string]HandlerFunc) *ManagementServer {
	t.Helper()

	if handlers == nil {
		handlers = map[string]HandlerFunc{}
	}

	ms := &ManagementServer{
		t:        t,
		header:   header,
		handlers: handlers,
	}
	ms.Server = httptest.NewTLSServer(http.HandlerFunc(ms.serve))
	t.Cleanup(ms.Close)

	return ms
}

// Host returns the host:port of the server, suitable for ClientConfig.Server.
func (ms *ManagementServer) Host() string {
	return strings.TrimPrefix(ms.URL, "https://")
}

// Handle installs or replaces the handler for an API method.
func (ms *ManagementServer) Handle(method string, handler HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[method] = handler
}

// Calls returns a copy of every call received so far, in arrival order.
func (ms *ManagementServer) Calls() []Call {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	out := make([]Call, len(ms.calls))
	copy(out, ms.calls)
	return out
}

// Methods returns the API method names received so far, in arrival order.
func (ms *ManagementServer) Methods() []string {
	calls := ms.Calls()

	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Method)
	}
	return out
}

// Count returns how many times method was called.
func (ms *ManagementServer) Count(method string) int {
	n := 0
	for _, c := range ms.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

func (ms *ManagementServer) serve(w http.ResponseWriter, r *http.Request) {
	method, ok := strings.CutPrefix(r.URL.Path, "/web_api/")
	if !ok || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	raw, err := io.ReadAll(r.Body)
	assert.NoError(ms.t, err, "Failed to read request body")

	call := Call{
		Method: method,
		Token:  r.Header.Get(ms.header),
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &call.Payload); err != nil {
			ms.t.Errorf("request body for %s is not a JSON object: %s", method, raw)
		}
	}

	ms.mu.Lock()
	ms.calls = append(ms.calls, call)
	handler, found := ms.handlers[method]
	ms.mu.Unlock()

	if !found {
		WriteJSON(ms.t, w, http.StatusNotFound, APIError("generic_err_command_not_found", "Unknown command "+method))
		return
	}

	status, body := handler(call)
	WriteJSON(ms.t, w, status, body)
}

// WriteJSON encodes body as the JSON reply with the given status code.
func WriteJSON(t *testing.T, w http.ResponseWriter, statusCode int, body any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if raw, ok := body.(string); ok {
		_, err := w.Write([]byte(raw))
		assert.NoError(t, err, "Failed to write response body")
		return
	}

	assert.NoError(t, json.NewEncoder(w).Encode(body), "Failed to write response body")
}

// APIError builds a management API error body.
func APIError(code, message string) map[string]any {
	return map[string]any{"code": code, "message": message}
}

// OK answers every call with the same 200 body.
func OK(body any) HandlerFunc {
	return func(Call) (int, any) {
		return http.StatusOK, body
	}
}

// Login answers login calls with a fresh numbered session id per call
// ("sid-1", "sid-2", ...).
func Login() HandlerFunc {
	var mu sync.Mutex
	n := 0

	return func(Call) (int, any) {
		mu.Lock()
		defer mu.Unlock()
		n++

		return http.StatusOK, map[string]any{
			"sid":             sessionID(n),
			"session-timeout": 600,
		}
	}
}

// Sequence answers successive calls with successive handlers; the last
// handler keeps answering once the sequence is exhausted.
func Sequence(handlers ...HandlerFunc) HandlerFunc {
	var mu sync.Mutex
	i := 0

	return func(call Call) (int, any) {
		mu.Lock()
		h := handlers[i]
		if i < len(handlers)-1 {
			i++
		}
		mu.Unlock()

		return h(call)
	}
}

// Status answers with a fixed status code and body.
func Status(statusCode int, body any) HandlerFunc {
	return func(Call) (int, any) {
		return statusCode, body
	}
}

func sessionID(n int) string {
	return "sid-" + strconv.Itoa(n)
}
