package cpapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/lexfrei/go-cpapi/internal/httpclient"
	"github.com/lexfrei/go-cpapi/internal/middleware"
	"github.com/lexfrei/go-cpapi/internal/ratelimit"
	"github.com/lexfrei/go-cpapi/observability"
)

const (
	// DefaultSessionTimeout is the idle timeout requested at login.
	DefaultSessionTimeout = 10 * time.Second

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit is the number of requests per minute the client allows
	// itself against one management server.
	DefaultRateLimit = 600

	// DefaultSessionHeader carries the session token unless SessionHeader is set.
	DefaultSessionHeader = "X-Session-Token"

	// CheckPointSessionHeader is the header Check Point management servers read.
	CheckPointSessionHeader = "X-chkp-sid"

	defaultRateBurst = 10
)

// API methods used by the client itself.
const (
	MethodLogin             = "login"
	MethodLogout            = "logout"
	MethodDiscard           = "discard"
	MethodPublish           = "publish"
	MethodShowSession       = "show-session"
	MethodShowTask          = "show-task"
	MethodShowPackages      = "show-packages"
	MethodShowPackage       = "show-package"
	MethodVerifyPolicy      = "verify-policy"
	MethodInstallPolicy     = "install-policy"
	MethodShowUnusedObjects = "show-unused-objects"
)

var validate = validator.New()

// Client is a session-managed management API client.
//
// A Client holds at most one session. It is not safe for concurrent use:
// calls are expected to come from a single logical flow.
type Client struct {
	cfg         ClientConfig
	baseURL     string
	http        *httpclient.Client
	logger      observability.Logger
	metrics     observability.MetricsRecorder
	sid         string
	description string
	closed      bool
}

// ClientConfig holds configuration for the management API client.
type ClientConfig struct {
	// Server is the management server host, optionally with a port.
	Server string `validate:"required"`

	// User and Password are the administrator credentials used at login.
	User     string `validate:"required"`
	Password string `validate:"required"`

	// SessionTimeout is the idle timeout requested at login, sent in whole
	// seconds (defaults to 10s). Non-zero values must be at least one second.
	SessionTimeout time.Duration `validate:"omitempty,gte=1s"`

	// ReadOnly requests a read-only session.
	ReadOnly bool

	// SessionDescription is sent at login when Login is given no description.
	SessionDescription string

	// SessionHeader is the request header carrying the session token
	// (defaults to X-Session-Token).
	SessionHeader string

	// InsecureSkipVerify disables server certificate verification. Only used
	// when HTTPClient is nil.
	InsecureSkipVerify bool

	// HTTPClient is the HTTP client to use (optional). It is copied, never
	// modified.
	HTTPClient *http.Client `validate:"-"`

	// Timeout sets the HTTP client timeout when HTTPClient is nil
	// (defaults to 30s).
	Timeout time.Duration

	// RateLimitPerMinute sets the request rate limit (defaults to 600).
	// A negative value disables rate limiting.
	RateLimitPerMinute int

	// Logger for structured logging (optional, defaults to no-op).
	Logger observability.Logger `validate:"-"`

	// Metrics for recording client metrics (optional, defaults to no-op).
	Metrics observability.MetricsRecorder `validate:"-"`
}

// New creates a client for server with default settings. Certificate
// verification is disabled, as management servers commonly run with
// self-signed certificates; use NewWithConfig to keep it on.
func New(server, user, password string) (*Client, error) {
	return NewWithConfig(&ClientConfig{
		Server:             server,
		User:               user,
		Password:           password,
		InsecureSkipVerify: true,
	})
}

// NewWithConfig creates a client with custom configuration.
// No request is made until the first call.
func NewWithConfig(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	conf := *cfg
	conf.Server = normalizeServer(conf.Server)
	if conf.SessionTimeout == 0 {
		conf.SessionTimeout = DefaultSessionTimeout
	}
	if conf.Timeout <= 0 {
		conf.Timeout = DefaultTimeout
	}
	if conf.RateLimitPerMinute == 0 {
		conf.RateLimitPerMinute = DefaultRateLimit
	}
	if conf.SessionHeader == "" {
		conf.SessionHeader = DefaultSessionHeader
	}
	if conf.Logger == nil {
		conf.Logger = observability.NoopLogger()
	}
	if conf.Metrics == nil {
		conf.Metrics = observability.NoopMetricsRecorder()
	}

	client := &Client{
		cfg:         conf,
		baseURL:     "https://" + conf.Server + "/web_api/",
		logger:      conf.Logger.With(observability.Field{Key: "server", Value: conf.Server}),
		metrics:     conf.Metrics,
		description: conf.SessionDescription,
	}

	middlewares := []httpclient.Middleware{
		middleware.Observability(conf.Logger, conf.Metrics),
		middleware.RateLimit(middleware.RateLimitConfig{
			Limiter: ratelimit.NewRateLimiter(conf.RateLimitPerMinute, defaultRateBurst),
			Logger:  conf.Logger,
			Metrics: conf.Metrics,
		}),
		middleware.Session(conf.SessionHeader, client.SessionID),
	}

	opts := []httpclient.Option{}
	if conf.HTTPClient != nil {
		base := *conf.HTTPClient
		opts = append(opts, httpclient.WithHTTPClient(&base))
	} else {
		opts = append(opts, httpclient.WithTimeout(conf.Timeout))
		middlewares = append(middlewares, middleware.TLSConfig(middleware.ManagementTLS(conf.InsecureSkipVerify)))
	}
	opts = append(opts, httpclient.WithMiddleware(middlewares...))

	client.http = httpclient.New(opts...)

	return client, nil
}

func validateConfig(cfg *ClientConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrap(err, "invalid client config")
	}

	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() != "required" {
			return errors.Newf("invalid client config: %s must be %s %s", fe.Field(), fe.Tag(), fe.Param())
		}
		missing = append(missing, fe.Field())
	}

	return errors.Wrapf(ErrMissingCredentials, "missing %s", strings.Join(missing, ", "))
}

func normalizeServer(server string) string {
	server = strings.TrimPrefix(server, "https://")
	return strings.TrimRight(server, "/")
}

// SessionID returns the current session token, or "" when logged out.
func (c *Client) SessionID() string {
	return c.sid
}

// LoggedIn reports whether a session token is held.
func (c *Client) LoggedIn() bool {
	return c.sid != ""
}

// Server returns the management server the client talks to.
func (c *Client) Server() string {
	return c.cfg.Server
}

// Login opens a new session. description is shown in the server's session
// list; it is remembered for logins the client performs on its own after a
// session expires. An empty description keeps the previous one.
// Any session already held is dropped first. Login is never retried.
func (c *Client) Login(ctx context.Context, description string) error {
	if c.closed {
		return errors.WithStack(ErrClientClosed)
	}

	if description != "" {
		c.description = description
	}

	return c.login(ctx)
}

func (c *Client) login(ctx context.Context) error {
	c.sid = ""

	payload := Payload{
		"user":            c.cfg.User,
		"password":        c.cfg.Password,
		"read-only":       c.cfg.ReadOnly,
		"session-timeout": int(c.cfg.SessionTimeout / time.Second),
	}
	if c.description != "" {
		payload["session-description"] = c.description
	}

	resp, err := c.send(ctx, MethodLogin, payload)
	if err != nil {
		return errors.Wrap(err, "login failed")
	}

	sid := resp.Get("sid").String()
	if sid == "" {
		return errors.Wrap(ErrMissingSessionID, "login failed")
	}
	c.sid = sid

	c.logger.Info("logged in",
		observability.Field{Key: "user", Value: c.cfg.User},
		observability.Field{Key: "read_only", Value: c.cfg.ReadOnly},
	)

	return nil
}

// Logout ends the current session. The token is cleared even when the
// logout call fails. Without a session Logout does nothing.
func (c *Client) Logout(ctx context.Context) error {
	if c.sid == "" {
		return nil
	}
	defer func() { c.sid = "" }()

	if _, err := c.Call(ctx, MethodLogout, nil); err != nil {
		return errors.Wrap(err, "logout failed")
	}

	c.logger.Info("logged out")

	return nil
}

// Shutdown discards unpublished changes and logs out, then releases the
// transport. Failures are logged and otherwise ignored. Calls after the first
// do nothing.
func (c *Client) Shutdown(ctx context.Context) {
	if c.closed {
		return
	}
	defer func() {
		c.closed = true
		c.http.Close()
	}()

	if c.sid == "" {
		return
	}

	if err := c.Discard(ctx); err != nil {
		c.logger.Warn("discard on shutdown failed", observability.Field{Key: "error", Value: err})
	}

	if err := c.Logout(ctx); err != nil {
		c.logger.Warn("logout on shutdown failed", observability.Field{Key: "error", Value: err})
	}
}

// Close is Shutdown with a background context. It always returns nil.
func (c *Client) Close() error {
	c.Shutdown(context.Background())
	return nil
}

func (c *Client) endpoint(method string) string {
	return c.baseURL + url.PathEscape(method)
}
