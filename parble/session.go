package parble

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Version is reported in the User-Agent header
var Version = "dev"

const (
	headerAPIKey    = "X-API-Key"
	headerRequestID = "X-Request-ID"

	maxErrorBody = 512
)

// Response is a fully read API response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// ContentType returns the Content-Type header of the response
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Session applies the headers, base URL, timeout and error mapping shared by
// every API call. A Session is meant to be used by a single call chain at a time.
type Session struct {
	settings   *Settings
	httpClient *http.Client
	header     http.Header
	logger     zerolog.Logger
}

// NewSession creates a Session for the given settings
func NewSession(settings *Settings, logger zerolog.Logger, opts ...Option) *Session {
	o := newOptions(opts...)

	s := &Session{
		settings:   settings,
		httpClient: o.httpClient,
		header:     make(http.Header),
		logger:     logger,
	}
	s.header.Set(headerAPIKey, settings.APIKey.Value())
	s.header.Set("Accept", "application/json")
	s.header.Set("User-Agent", o.userAgent)

	return s
}

// Header returns a copy of the headers sent with every request
func (s *Session) Header() http.Header {
	return s.header.Clone()
}

// BuildURL resolves uri against the base URL. Absolute URLs are returned unchanged
// apart from normalization, a leading "/" replaces the base path.
func (s *Session) BuildURL(uri string) (string, error) {
	ref, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid uri %q: %w", uri, err)
	}

	base := s.settings.baseURL()
	if base == nil {
		return "", &ConfigurationError{Fields: []string{"url"}}
	}

	return base.ResolveReference(ref).String(), nil
}

// Get sends a GET request
func (s *Session) Get(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodGet, uri, opts...)
}

// Post sends a POST request
func (s *Session) Post(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodPost, uri, opts...)
}

// Patch sends a PATCH request
func (s *Session) Patch(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodPatch, uri, opts...)
}

// Delete sends a DELETE request
func (s *Session) Delete(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return s.Request(ctx, http.MethodDelete, uri, opts...)
}

// Request performs a single HTTP round trip (redirects are followed by the
// underlying client) and maps every failure to the SDK error taxonomy. No retry
// is attempted.
func (s *Session) Request(ctx context.Context, method, uri string, opts ...RequestOption) (*Response, error) {
	cfg := newRequestConfig(s.settings.DefaultTimeout, opts...)

	fullURL, err := s.BuildURL(uri)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, fullURL, cfg.body)
	if err != nil {
		return nil, &APIError{Kind: ErrInvalidCall, Method: method, URL: fullURL, Err: err}
	}

	for k, v := range s.header {
		req.Header[k] = v
	}
	for k, v := range cfg.header {
		req.Header[k] = v
	}

	reqID := uuid.New().String()
	req.Header.Set(headerRequestID, reqID)

	s.logger.Debug().
		Str("method", method).
		Str("url", fullURL).
		Str("request_id", reqID).
		Dur("timeout", cfg.timeout).
		Msg("Making Parble API request")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, s.transportError(method, fullURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, s.transportError(method, fullURL, err)
	}

	s.logger.Debug().
		Str("request_id", reqID).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Received Parble API response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        resp.Request.URL.String(),
			Body:       truncate(string(body), maxErrorBody),
			Err:        &StatusError{StatusCode: resp.StatusCode, Status: resp.Status},
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// transportError classifies failures that happened before a status was received
func (s *Session) transportError(method, fullURL string, err error) error {
	kind := ErrAPICall
	if isTimeout(err) {
		kind = ErrCallTimeout
	}
	return &APIError{Kind: kind, Method: method, URL: fullURL, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
