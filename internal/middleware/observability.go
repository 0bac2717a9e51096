package middleware

import (
	"net/http"
	"path"
	"time"

	"github.com/lexfrei/go-cpapi/observability"
)

// Observability returns a middleware that logs and records metrics for HTTP requests.
// Request and response bodies are never logged: they carry credentials and session data.
func Observability(logger observability.Logger, metrics observability.MetricsRecorder) func(http.RoundTripper) http.RoundTripper {
	if logger == nil {
		logger = observability.NoopLogger()
	}
	if metrics == nil {
		metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		return &observabilityTransport{
			next:    next,
			logger:  logger,
			metrics: metrics,
		}
	}
}

type observabilityTransport struct {
	next    http.RoundTripper
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *observabilityTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	apiMethod := path.Base(req.URL.Path)

	t.logger.Debug("http request started",
		observability.Field{Key: "api_method", Value: apiMethod},
		observability.Field{Key: "host", Value: req.URL.Host},
	)

	resp, err := t.next.RoundTrip(req)

	duration := time.Since(start)

	if err != nil {
		t.logger.Error("http request failed",
			observability.Field{Key: "api_method", Value: apiMethod},
			observability.Field{Key: "host", Value: req.URL.Host},
			observability.Field{Key: "duration", Value: duration},
			observability.Field{Key: "error", Value: err.Error()},
		)

		t.metrics.RecordError("http_request", "NetworkError")

		//nolint:wrapcheck // Observability middleware logs error but passes it through unchanged
		return nil, err
	}

	fields := []observability.Field{
		{Key: "api_method", Value: apiMethod},
		{Key: "status", Value: resp.StatusCode},
		{Key: "duration", Value: duration},
	}

	if resp.StatusCode >= http.StatusBadRequest {
		t.logger.Warn("http request completed with error", fields...)
	} else {
		t.logger.Debug("http request completed", fields...)
	}

	// Paths are /web_api/{method}; the method set is small and fixed, so the
	// raw path is a safe metrics label.
	t.metrics.RecordHTTPRequest(req.Method, req.URL.Path, resp.StatusCode, duration)

	return resp, nil
}
