// Package retry classifies management API error codes that warrant a new
// session and a single re-send of the failed request.
package retry

// Error codes returned by the management server when the session token sent
// with a request is no longer usable.
const (
	CodeSessionExpired = "generic_err_session_expired"
	CodeWrongSessionID = "generic_err_wrong_session_id"
)

// MaxSessionRenewals bounds how many times a single request may trigger a
// re-login. A request rejected again after renewal fails for good.
const MaxSessionRenewals = 1

// ShouldRenewSession reports whether the remote error code means the held
// session was invalidated and a fresh login can recover the request.
func ShouldRenewSession(code string) bool {
	switch code {
	case CodeSessionExpired, CodeWrongSessionID:
		return true
	default:
		return false
	}
}

// CanRenew reports whether another renewal is allowed after renewals have
// already been performed for the same request.
func CanRenew(renewals int) bool {
	return renewals < MaxSessionRenewals
}
