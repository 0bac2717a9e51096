package response_test

import (
	"net/http"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-cpapi/internal/response"
)

func TestHandle(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"sid":"abc"}`)

		got, err := response.Handle(http.StatusOK, body)
		require.NoError(t, err)
		assert.Equal(t, body, got)
	})

	t.Run("success with invalid JSON", func(t *testing.T) {
		t.Parallel()

		_, err := response.Handle(http.StatusOK, []byte(`<html>`))
		require.Error(t, err)
		assert.True(t, errors.Is(err, response.ErrInvalidJSON))
	})

	t.Run("success with empty body", func(t *testing.T) {
		t.Parallel()

		_, err := response.Handle(http.StatusOK, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, response.ErrInvalidJSON))
	})

	t.Run("api error", func(t *testing.T) {
		t.Parallel()

		body := []byte(`{"code":"generic_err_object_not_found","message":"Requested object not found"}`)

		_, err := response.Handle(http.StatusNotFound, body)
		require.Error(t, err)

		var apiErr *response.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
		assert.Equal(t, "generic_err_object_not_found", apiErr.Code)
		assert.Equal(t, "Requested object not found", apiErr.Message)
		assert.False(t, apiErr.SessionInvalid())
	})
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		statusCode  int
		body        string
		wantCode    string
		wantMessage string
		wantSession bool
	}{
		{
			name:        "session expired",
			statusCode:  http.StatusUnauthorized,
			body:        `{"code":"generic_err_session_expired","message":"Session expired"}`,
			wantCode:    "generic_err_session_expired",
			wantMessage: "Session expired",
			wantSession: true,
		},
		{
			name:        "wrong session id",
			statusCode:  http.StatusBadRequest,
			body:        `{"code":"generic_err_wrong_session_id","message":"Wrong session id"}`,
			wantCode:    "generic_err_wrong_session_id",
			wantMessage: "Wrong session id",
			wantSession: true,
		},
		{
			name:        "plain text body",
			statusCode:  http.StatusBadGateway,
			body:        "upstream unavailable\n",
			wantMessage: "upstream unavailable",
		},
		{
			name:        "empty body",
			statusCode:  http.StatusInternalServerError,
			wantMessage: "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			apiErr := response.Decode(tt.statusCode, []byte(tt.body))

			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
			assert.Equal(t, tt.wantSession, apiErr.SessionInvalid())
		})
	}
}

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	withCode := &response.APIError{StatusCode: 400, Code: "generic_err_invalid_parameter", Message: "bad uid"}
	assert.Equal(t, "API error: status=400 code=generic_err_invalid_parameter: bad uid", withCode.Error())

	withoutCode := &response.APIError{StatusCode: 502, Message: "Bad Gateway"}
	assert.Equal(t, "API error: status=502: Bad Gateway", withoutCode.Error())
}
