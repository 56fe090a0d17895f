package parble

import (
	"context"

	"github.com/rs/zerolog"
)

// Client is the low level Parble REST API client. It exposes the API resources
// and generic HTTP verbs on top of a Session.
type Client struct {
	Settings *Settings
	Files    *FilesResource

	session *Session
}

// NewClient creates a new Parble API client
func NewClient(settings *Settings, logger zerolog.Logger, opts ...Option) *Client {
	session := NewSession(settings, logger, opts...)

	return &Client{
		Settings: settings,
		Files:    NewFilesResource(session),
		session:  session,
	}
}

// Session returns the transport session shared by all resources
func (c *Client) Session() *Session {
	return c.session
}

// Get sends a GET request to an absolute or relative uri
func (c *Client) Get(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return c.session.Get(ctx, uri, opts...)
}

// Post sends a POST request to an absolute or relative uri
func (c *Client) Post(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return c.session.Post(ctx, uri, opts...)
}

// Patch sends a PATCH request to an absolute or relative uri
func (c *Client) Patch(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return c.session.Patch(ctx, uri, opts...)
}

// Delete sends a DELETE request to an absolute or relative uri
func (c *Client) Delete(ctx context.Context, uri string, opts ...RequestOption) (*Response, error) {
	return c.session.Delete(ctx, uri, opts...)
}
