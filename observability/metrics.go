package observability

import "time"

// MetricsRecorder is an interface for recording client metrics.
// Implementations can use any metrics library (Prometheus, StatsD, etc.).
type MetricsRecorder interface {
	// RecordHTTPRequest records an HTTP exchange with the management server.
	RecordHTTPRequest(method, path string, statusCode int, duration time.Duration)

	// RecordSessionRenewal records a re-login triggered by an expired or rejected session.
	RecordSessionRenewal(apiMethod string)

	// RecordRateLimit records a rate limit wait event.
	RecordRateLimit(endpoint string, wait time.Duration)

	// RecordError records an error occurrence.
	RecordError(operation, errorType string)
}

type noopMetricsRecorder struct{}

// NoopMetricsRecorder returns a metrics recorder that does nothing.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NoopMetricsRecorder() MetricsRecorder {
	return &noopMetricsRecorder{}
}

func (m *noopMetricsRecorder) RecordHTTPRequest(string, string, int, time.Duration) {}
func (m *noopMetricsRecorder) RecordSessionRenewal(string)                          {}
func (m *noopMetricsRecorder) RecordRateLimit(string, time.Duration)                {}
func (m *noopMetricsRecorder) RecordError(string, string)                           {}
