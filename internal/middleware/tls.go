package middleware

import (
	"crypto/tls"
	"net/http"
)

// TLSConfig returns a middleware that applies config to the underlying
// *http.Transport. It must be the innermost middleware: it replaces the
// transport it wraps with a configured clone.
func TLSConfig(config *tls.Config) func(http.RoundTripper) http.RoundTripper {
	return func(next http.RoundTripper) http.RoundTripper {
		transport, ok := next.(*http.Transport)
		if !ok {
			defaultTransport, ok := http.DefaultTransport.(*http.Transport)
			if !ok {
				return next
			}
			transport = defaultTransport.Clone()
			transport.ForceAttemptHTTP2 = true
		} else {
			transport = transport.Clone()
		}

		transport.TLSClientConfig = config

		return transport
	}
}

// ManagementTLS returns the TLS settings for talking to a management server.
// With skipVerify set, certificate and host name checks are disabled, which is
// what appliances with self-signed certificates need. The minimum version is TLS 1.2.
func ManagementTLS(skipVerify bool) *tls.Config {
	return &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: skipVerify, //nolint:gosec // Explicit opt-in via ClientConfig.InsecureSkipVerify
	}
}
