package parble

import (
	"io"
	"net/http"
	"time"
)

// Option configures a Session, Client or SDK.
type Option func(*options)

// options holds construction time settings.
type options struct {
	httpClient *http.Client
	userAgent  string
}

func newOptions(opts ...Option) *options {
	o := &options{
		httpClient: &http.Client{},
		userAgent:  "parble-go/" + Version,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithHTTPClient sets a custom HTTP client. Its own Timeout, if any, applies
// on top of the per-request timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		if c != nil {
			o.httpClient = c
		}
	}
}

// WithUserAgent sets a custom user agent string.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		o.userAgent = userAgent
	}
}

// RequestOption configures a single request.
type RequestOption func(*requestConfig)

type requestConfig struct {
	timeout time.Duration
	header  http.Header
	body    io.Reader
}

func newRequestConfig(timeout time.Duration, opts ...RequestOption) *requestConfig {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &requestConfig{
		timeout: timeout,
		header:  make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTimeout overrides the default timeout for one request.
func WithTimeout(timeout time.Duration) RequestOption {
	return func(c *requestConfig) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithHeader sets a request header, replacing the session default.
func WithHeader(key, value string) RequestOption {
	return func(c *requestConfig) {
		c.header.Set(key, value)
	}
}

// WithBody sets the request body and its content type.
func WithBody(contentType string, body io.Reader) RequestOption {
	return func(c *requestConfig) {
		c.body = body
		if contentType != "" {
			c.header.Set("Content-Type", contentType)
		}
	}
}
