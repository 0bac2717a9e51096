// Package observability provides interfaces for logging and metrics collection
// in the go-cpapi library.
//
// This package defines standard interfaces that allow users to integrate their
// own logging and metrics implementations with the management API client.
//
// # Logger Interface
//
// The Logger interface supports structured logging with key-value pairs:
//
//	logger := myCustomLogger{} // implements observability.Logger
//	client, err := cpapi.NewWithConfig(&cpapi.ClientConfig{
//		Server:   "mgmt.example.net",
//		User:     "api-user",
//		Password: password,
//		Logger:   logger,
//	})
//
// A ready-made adapter for zerolog is available through NewZerologLogger.
//
// Supported log levels:
//   - Debug: HTTP exchanges and task progress
//   - Info: Session login and logout
//   - Warn: Session renewals and best-effort cleanup failures
//   - Error: Transport failures
//
// # MetricsRecorder Interface
//
// The MetricsRecorder interface tracks client metrics:
//
//	metrics := myMetricsRecorder{} // implements observability.MetricsRecorder
//	client, err := cpapi.NewWithConfig(&cpapi.ClientConfig{
//		Server:   "mgmt.example.net",
//		User:     "api-user",
//		Password: password,
//		Metrics:  metrics,
//	})
//
// Tracked metrics include:
//   - HTTP request count, status codes, and duration
//   - Session renewals after expiry
//   - Rate limiting events and wait times
//   - Error occurrences by type
//
// # Default Behavior
//
// If no logger or metrics recorder is provided, the client uses no-op
// implementations that discard all events.
package observability
