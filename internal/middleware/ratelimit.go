package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/time/rate"

	"github.com/lexfrei/go-cpapi/observability"
)

// RateLimitConfig configures the rate limit middleware.
type RateLimitConfig struct {
	Limiter *rate.Limiter // nil disables limiting
	Logger  observability.Logger
	Metrics observability.MetricsRecorder
}

// RateLimit returns a middleware that delays requests to stay within the
// configured limiter. Waiting honours request context cancellation.
func RateLimit(cfg RateLimitConfig) func(http.RoundTripper) http.RoundTripper {
	if cfg.Logger == nil {
		cfg.Logger = observability.NoopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetricsRecorder()
	}

	return func(next http.RoundTripper) http.RoundTripper {
		if cfg.Limiter == nil {
			return next
		}

		return &rateLimitTransport{
			next:    next,
			limiter: cfg.Limiter,
			logger:  cfg.Logger,
			metrics: cfg.Metrics,
		}
	}
}

type rateLimitTransport struct {
	next    http.RoundTripper
	limiter *rate.Limiter
	logger  observability.Logger
	metrics observability.MetricsRecorder
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.wait(req.Context(), req.URL.Path); err != nil {
		return nil, err
	}

	//nolint:wrapcheck // Middleware passes through errors from next handler in chain
	return t.next.RoundTrip(req)
}

func (t *rateLimitTransport) wait(ctx context.Context, path string) error {
	reservation := t.limiter.Reserve()
	if !reservation.OK() {
		return errors.New("rate limit reservation failed")
	}

	delay := reservation.Delay()
	if delay <= 0 {
		return nil
	}

	t.logger.Debug("rate limit delay",
		observability.Field{Key: "delay", Value: delay},
		observability.Field{Key: "path", Value: path},
	)

	t.metrics.RecordRateLimit(path, delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		reservation.Cancel()
		return errors.Wrap(ctx.Err(), "context canceled during rate limit wait")
	}
}
