package parble

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// SDK exposes high level operations built on top of the Client
type SDK struct {
	Client *Client

	files  FilesAPI
	logger zerolog.Logger
}

// New creates an SDK from explicit values, falling back to the PARBLE_*
// environment variables for the empty ones.
func New(url, apiKey string, logger zerolog.Logger, opts ...Option) (*SDK, error) {
	settings, err := LoadSettings(url, apiKey, 0)
	if err != nil {
		return nil, err
	}
	return NewSDK(settings, logger, opts...), nil
}

// NewSDK creates an SDK for already loaded settings
func NewSDK(settings *Settings, logger zerolog.Logger, opts ...Option) *SDK {
	client := NewClient(settings, logger, opts...)

	return &SDK{
		Client: client,
		files:  client.Files,
		logger: logger,
	}
}

// WithFiles replaces the files backend, mainly for tests
func (s *SDK) WithFiles(files FilesAPI) *SDK {
	s.files = files
	return s
}

// UploadPath uploads and processes the file at path. The content type is
// guessed from the extension and defaults to application/octet-stream.
func (s *SDK) UploadPath(ctx context.Context, path, inboxID string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return s.UploadFile(ctx, f, filepath.Base(path), contentTypeByName(path), inboxID)
}

// UploadFile uploads and processes content under fileName. An empty contentType
// is sent as application/octet-stream.
func (s *SDK) UploadFile(ctx context.Context, content io.Reader, fileName, contentType, inboxID string) (*File, error) {
	if contentType == "" {
		contentType = ContentTypeBinary
	}

	s.logger.Debug().
		Str("file_name", fileName).
		Str("content_type", contentType).
		Str("inbox_id", inboxID).
		Msg("Uploading file")

	payload, err := s.files.Create(ctx, content, fileName, inboxID, contentType)
	if err != nil {
		return nil, err
	}
	return s.NewFile(payload)
}

// GetFile retrieves the processed file with the given id
func (s *SDK) GetFile(ctx context.Context, id string) (*File, error) {
	content, err := s.files.Get(ctx, id, ContentTypeJSON)
	if err != nil {
		return nil, err
	}
	if !content.IsJSON() {
		return nil, &APIError{
			Kind: ErrAPICall,
			Err:  fmt.Errorf("expected JSON for file %s, got %s", id, content.ContentType),
		}
	}
	return s.NewFile(content.JSON)
}

// GetFilePDF retrieves the PDF content of a file. It does not use any File cache.
func (s *SDK) GetFilePDF(ctx context.Context, id string) (*bytes.Reader, error) {
	content, err := s.files.Get(ctx, id, ContentTypePDF)
	if err != nil {
		return nil, err
	}
	if content.IsJSON() {
		return bytes.NewReader(content.JSON), nil
	}
	return bytes.NewReader(content.Data), nil
}

// DeleteFile removes a file
func (s *SDK) DeleteFile(ctx context.Context, id string) error {
	return s.files.Delete(ctx, id)
}

// NewFile parses an API payload into a File bound to this SDK
func (s *SDK) NewFile(payload []byte) (*File, error) {
	return ParseFile(payload, s)
}

// contentTypeByName guesses a content type from a file extension
func contentTypeByName(name string) string {
	ct := mime.TypeByExtension(filepath.Ext(name))
	if ct == "" {
		return ContentTypeBinary
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ContentTypeBinary
	}
	return mediaType
}
