package parble

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	filesURI = "files"

	// UploadTimeout covers synchronous server-side processing of an upload
	UploadTimeout = 300 * time.Second

	ContentTypeJSON   = "application/json"
	ContentTypePDF    = "application/pdf"
	ContentTypeBinary = "application/octet-stream"
)

var inboxIDPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

// Content is the body of a fetched file, either JSON attributes or raw bytes
type Content struct {
	ContentType string
	JSON        json.RawMessage
	Data        []byte
}

// IsJSON reports whether the server answered with JSON
func (c *Content) IsJSON() bool {
	return c.JSON != nil
}

// FilesResource exposes the operations of the files collection
type FilesResource struct {
	session *Session
}

// NewFilesResource creates a FilesResource on top of a Session
func NewFilesResource(session *Session) *FilesResource {
	return &FilesResource{session: session}
}

func fileURI(id string) string {
	return filesURI + "/" + url.PathEscape(id)
}

// ValidateInboxID checks an inbox id is 24 lowercase hexadecimal characters
func ValidateInboxID(inboxID string) error {
	if !inboxIDPattern.MatchString(inboxID) {
		return &APIError{
			Kind: ErrInvalidCall,
			Err:  fmt.Errorf("inbox id %q must be 24 lowercase hexadecimal characters", inboxID),
		}
	}
	return nil
}

// Create uploads content as a multipart form and returns the JSON attributes of
// the processed file. When the server answers with a redirect to the file the
// redirect is followed and the target's body is returned.
func (r *FilesResource) Create(ctx context.Context, content io.Reader, fileName, inboxID, contentType string) (json.RawMessage, error) {
	if inboxID != "" {
		if err := ValidateInboxID(inboxID); err != nil {
			return nil, err
		}
	}
	if contentType == "" {
		contentType = ContentTypeBinary
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     "file",
		"filename": fileName,
	}))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload content: %w", err)
	}

	if inboxID != "" {
		if err := w.WriteField("inbox_id", inboxID); err != nil {
			return nil, fmt.Errorf("write inbox id: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart form: %w", err)
	}

	resp, err := r.session.Post(ctx, filesURI,
		WithBody(w.FormDataContentType(), &buf),
		WithTimeout(UploadTimeout),
	)
	if err != nil {
		return nil, err
	}

	return decodeJSON(resp)
}

// Get fetches a file. contentType selects the representation through the Accept
// header; JSON answers are returned in Content.JSON, anything else in Content.Data.
func (r *FilesResource) Get(ctx context.Context, id, contentType string) (*Content, error) {
	if contentType == "" {
		contentType = ContentTypeJSON
	}

	resp, err := r.session.Get(ctx, fileURI(id), WithHeader("Accept", contentType))
	if err != nil {
		return nil, err
	}

	ct := resp.ContentType()
	if ct == "" {
		ct = ContentTypeJSON
	}

	if isJSONMediaType(ct) {
		raw, err := decodeJSON(resp)
		if err != nil {
			return nil, err
		}
		return &Content{ContentType: ct, JSON: raw}, nil
	}

	return &Content{ContentType: ct, Data: resp.Body}, nil
}

// Delete removes a file
func (r *FilesResource) Delete(ctx context.Context, id string) error {
	_, err := r.session.Delete(ctx, fileURI(id))
	return err
}

func isJSONMediaType(ct string) bool {
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.HasPrefix(ct, ContentTypeJSON)
	}
	return mediaType == ContentTypeJSON
}

func decodeJSON(resp *Response) (json.RawMessage, error) {
	if !json.Valid(resp.Body) {
		return nil, &APIError{
			Kind: ErrAPICall,
			Err:  fmt.Errorf("response is not valid JSON: %q", truncate(string(resp.Body), 64)),
		}
	}
	return json.RawMessage(resp.Body), nil
}
