// Package ratelimit builds token-bucket limiters for management API traffic.
package ratelimit

import "golang.org/x/time/rate"

// NewRateLimiter creates a limiter allowing requestsPerMinute calls per minute.
// Tokens are replenished continuously at requestsPerMinute/60 per second and the
// bucket holds at most burst tokens. A burst below one is raised to one.
//
// A non-positive requestsPerMinute disables limiting and returns nil; the
// RateLimit middleware treats a nil limiter as "pass through".
func NewRateLimiter(requestsPerMinute, burst int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}

	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60.0), burst)
}
