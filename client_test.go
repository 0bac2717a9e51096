package cpapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-cpapi/internal/testutil"
)

func TestNew(t *testing.T) {
	t.Parallel()

	client, err := New("mgmt.example.net", testUser, testPassword)
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, "mgmt.example.net", client.Server())
	assert.True(t, client.cfg.InsecureSkipVerify)
	assert.False(t, client.LoggedIn())
}

func TestNewWithConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		config      *ClientConfig
		wantErr     error
		wantMessage string
	}{
		{
			name:   "valid config",
			config: &ClientConfig{Server: "mgmt.example.net", User: testUser, Password: testPassword},
		},
		{
			name:        "nil config",
			config:      nil,
			wantMessage: "config is required",
		},
		{
			name:        "missing server",
			config:      &ClientConfig{User: testUser, Password: testPassword},
			wantErr:     ErrMissingCredentials,
			wantMessage: "missing Server",
		},
		{
			name:        "missing user and password",
			config:      &ClientConfig{Server: "mgmt.example.net"},
			wantErr:     ErrMissingCredentials,
			wantMessage: "missing User, Password",
		},
		{
			name: "negative session timeout",
			config: &ClientConfig{
				Server:         "mgmt.example.net",
				User:           testUser,
				Password:       testPassword,
				SessionTimeout: -time.Second,
			},
			wantMessage: "SessionTimeout",
		},
		{
			name: "sub-second session timeout",
			config: &ClientConfig{
				Server:         "mgmt.example.net",
				User:           testUser,
				Password:       testPassword,
				SessionTimeout: 500 * time.Millisecond,
			},
			wantMessage: "SessionTimeout must be gte 1s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := NewWithConfig(tt.config)

			if tt.wantMessage != "" {
				require.Error(t, err)
				assert.Nil(t, client)
				assert.Contains(t, err.Error(), tt.wantMessage)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, client)
		})
	}
}

func TestNewWithConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &ClientConfig{Server: "https://mgmt.example.net/", User: testUser, Password: testPassword}
	client, err := NewWithConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, "mgmt.example.net", client.Server())
	assert.Equal(t, "https://mgmt.example.net/web_api/show-task", client.endpoint(MethodShowTask))
	assert.Equal(t, DefaultSessionTimeout, client.cfg.SessionTimeout)
	assert.Equal(t, DefaultTimeout, client.cfg.Timeout)
	assert.Equal(t, DefaultRateLimit, client.cfg.RateLimitPerMinute)
	assert.Equal(t, DefaultSessionHeader, client.cfg.SessionHeader)
	assert.False(t, client.cfg.InsecureSkipVerify)

	// The caller's config is left as it was.
	assert.Equal(t, "https://mgmt.example.net/", cfg.Server)
	assert.Zero(t, cfg.SessionTimeout)
	assert.Empty(t, cfg.SessionHeader)
}

func TestNewWithConfigDoesNotModifyHTTPClient(t *testing.T) {
	t.Parallel()

	httpClient := &http.Client{Timeout: 5 * time.Second}
	client, err := NewWithConfig(&ClientConfig{
		Server:     "mgmt.example.net",
		User:       testUser,
		Password:   testPassword,
		HTTPClient: httpClient,
	})
	require.NoError(t, err)

	assert.Nil(t, httpClient.Transport)
	assert.NotSame(t, httpClient, client.http.HTTPClient())
	assert.Equal(t, 5*time.Second, client.http.HTTPClient().Timeout)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin: testutil.Login(),
	})

	cfg := testConfig(ms)
	cfg.ReadOnly = true
	cfg.SessionTimeout = 30 * time.Second
	client, err := NewWithConfig(cfg)
	require.NoError(t, err)

	require.NoError(t, client.Login(context.Background(), "nightly cleanup"))

	assert.Equal(t, "sid-1", client.SessionID())
	assert.True(t, client.LoggedIn())

	calls := ms.Calls()
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Token, "login must not carry a session token")
	assert.Equal(t, map[string]any{
		"user":                testUser,
		"password":            testPassword,
		"read-only":           true,
		"session-timeout":     float64(30),
		"session-description": "nightly cleanup",
	}, calls[0].Payload)
}

func TestLoginUsesConfiguredDescription(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin: testutil.Login(),
	})

	cfg := testConfig(ms)
	cfg.SessionDescription = "from config"
	client, err := NewWithConfig(cfg)
	require.NoError(t, err)

	require.NoError(t, client.Login(context.Background(), ""))
	require.NoError(t, client.Login(context.Background(), "explicit"))
	require.NoError(t, client.Login(context.Background(), ""))

	calls := ms.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "from config", calls[0].Payload["session-description"])
	assert.Equal(t, "explicit", calls[1].Payload["session-description"])
	assert.Equal(t, "explicit", calls[2].Payload["session-description"])
	assert.Equal(t, "sid-3", client.SessionID())
}

func TestLoginOmitsEmptyDescription(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin: testutil.Login(),
	})
	client := newTestClient(t, ms)

	require.NoError(t, client.Login(context.Background(), ""))

	calls := ms.Calls()
	require.Len(t, calls, 1)
	assert.NotContains(t, calls[0].Payload, "session-description")
	assert.Equal(t, float64(10), calls[0].Payload["session-timeout"])
	assert.Equal(t, false, calls[0].Payload["read-only"])
}

func TestLoginFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler testutil.HandlerFunc
		check   func(t *testing.T, err error)
	}{
		{
			name:    "rejected credentials",
			handler: testutil.Status(http.StatusBadRequest, testutil.APIError("err_login_failed", "Authentication to server failed.")),
			check: func(t *testing.T, err error) {
				t.Helper()
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "err_login_failed", apiErr.Code)
				assert.Equal(t, "Authentication to server failed.", apiErr.Message)
			},
		},
		{
			name:    "session expired code is not retried",
			handler: testutil.Status(http.StatusForbidden, testutil.APIError("generic_err_session_expired", "expired")),
			check: func(t *testing.T, err error) {
				t.Helper()
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.True(t, apiErr.SessionInvalid())
			},
		},
		{
			name:    "reply without sid",
			handler: testutil.OK(map[string]any{"session-timeout": 600}),
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.ErrorIs(t, err, ErrMissingSessionID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
				MethodLogin: tt.handler,
			})
			client := newTestClient(t, ms)

			err := client.Login(context.Background(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "login failed")
			tt.check(t, err)

			assert.False(t, client.LoggedIn())
			assert.Equal(t, 1, ms.Count(MethodLogin))
		})
	}
}

func TestLoginReplacesSession(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin: testutil.Sequence(
			testutil.Login(),
			testutil.Status(http.StatusBadRequest, testutil.APIError("err_login_failed", "nope")),
		),
	})
	client := newTestClient(t, ms)

	require.NoError(t, client.Login(context.Background(), ""))
	require.True(t, client.LoggedIn())

	require.Error(t, client.Login(context.Background(), ""))
	assert.False(t, client.LoggedIn(), "a failed login must not leave the old token behind")
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("without session makes no call", func(t *testing.T) {
		t.Parallel()

		ms := testutil.NewManagementServer(t, nil)
		client := newTestClient(t, ms)

		require.NoError(t, client.Logout(context.Background()))
		assert.Empty(t, ms.Calls())
	})

	t.Run("sends token and clears it", func(t *testing.T) {
		t.Parallel()

		ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
			MethodLogin:  testutil.Login(),
			MethodLogout: testutil.OK(map[string]any{"message": "OK"}),
		})
		client := newTestClient(t, ms)

		require.NoError(t, client.Login(context.Background(), ""))
		require.NoError(t, client.Logout(context.Background()))

		assert.False(t, client.LoggedIn())
		calls := ms.Calls()
		require.Len(t, calls, 2)
		assert.Equal(t, MethodLogout, calls[1].Method)
		assert.Equal(t, "sid-1", calls[1].Token)
	})

	t.Run("clears token when the call fails", func(t *testing.T) {
		t.Parallel()

		ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
			MethodLogin:  testutil.Login(),
			MethodLogout: testutil.Status(http.StatusInternalServerError, testutil.APIError("generic_error", "boom")),
		})
		client := newTestClient(t, ms)

		require.NoError(t, client.Login(context.Background(), ""))
		err := client.Logout(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "logout failed")
		assert.False(t, client.LoggedIn())
	})
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin:   testutil.Login(),
		MethodDiscard: testutil.OK(map[string]any{"number-of-discarded-changes": 2}),
		MethodLogout:  testutil.OK(map[string]any{"message": "OK"}),
	})
	client := newTestClient(t, ms)

	require.NoError(t, client.Login(context.Background(), ""))
	client.Shutdown(context.Background())

	assert.Equal(t, []string{MethodLogin, MethodDiscard, MethodLogout}, ms.Methods())
	assert.False(t, client.LoggedIn())

	// Second shutdown is a no-op.
	require.NoError(t, client.Close())
	assert.Len(t, ms.Calls(), 3)

	_, err := client.Call(context.Background(), "show-hosts", nil)
	require.ErrorIs(t, err, ErrClientClosed)
	require.ErrorIs(t, client.Login(context.Background(), ""), ErrClientClosed)
}

func TestShutdownWithoutSession(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, nil)
	client := newTestClient(t, ms)

	require.NoError(t, client.Close())
	assert.Empty(t, ms.Calls())

	_, err := client.Call(context.Background(), "show-hosts", nil)
	assert.True(t, errors.Is(err, ErrClientClosed))
}

func TestShutdownIgnoresFailures(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin:   testutil.Login(),
		MethodDiscard: testutil.Status(http.StatusInternalServerError, testutil.APIError("generic_error", "discard failed")),
		MethodLogout:  testutil.Status(http.StatusInternalServerError, testutil.APIError("generic_error", "logout failed")),
	})
	client := newTestClient(t, ms)

	require.NoError(t, client.Login(context.Background(), ""))
	client.Shutdown(context.Background())

	assert.Equal(t, []string{MethodLogin, MethodDiscard, MethodLogout}, ms.Methods())
	assert.False(t, client.LoggedIn())
}

func TestSessionHeader(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServerWithHeader(t, CheckPointSessionHeader, map[string]testutil.HandlerFunc{
		MethodLogin:       testutil.Login(),
		MethodShowSession: testutil.OK(map[string]any{"changes": 0}),
	})

	cfg := testConfig(ms)
	cfg.SessionHeader = CheckPointSessionHeader
	client, err := NewWithConfig(cfg)
	require.NoError(t, err)

	_, err = client.Call(context.Background(), MethodShowSession, nil)
	require.NoError(t, err)

	calls := ms.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "sid-1", calls[1].Token)
}

func TestCertificateVerification(t *testing.T) {
	t.Parallel()

	ms := testutil.NewManagementServer(t, map[string]testutil.HandlerFunc{
		MethodLogin: testutil.Login(),
	})

	cfg := testConfig(ms)
	cfg.InsecureSkipVerify = false
	client, err := NewWithConfig(cfg)
	require.NoError(t, err)

	err = client.Login(context.Background(), "")
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, MethodLogin, transportErr.APIMethod)
	assert.Empty(t, ms.Calls())
}
