package cpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-cpapi/internal/testutil"
)

// Test constants.
const (
	testUser     = "api-user"
	testPassword = "s3cret"
	testTaskID   = "01234567-89ab-cdef-a930-8c37a59972b3"
)

func testConfig(ms *testutil.ManagementServer) *ClientConfig {
	return &ClientConfig{
		Server:             ms.Host(),
		User:               testUser,
		Password:           testPassword,
		InsecureSkipVerify: true,
		RateLimitPerMinute: -1,
	}
}

func newTestClient(t *testing.T, ms *testutil.ManagementServer) *Client {
	t.Helper()

	client, err := NewWithConfig(testConfig(ms))
	require.NoError(t, err)

	return client
}

func taskReply(id, status string, percent int) testutil.HandlerFunc {
	return testutil.OK(map[string]any{
		"tasks": []map[string]any{{
			"task-id":             id,
			"status":              status,
			"progress-percentage": percent,
		}},
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
