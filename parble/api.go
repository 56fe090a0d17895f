package parble

import (
	"context"
	"encoding/json"
	"io"
)

// FilesAPI defines the files collection operations the SDK relies on
type FilesAPI interface {
	// Create uploads content and returns the processed file attributes
	Create(ctx context.Context, content io.Reader, fileName, inboxID, contentType string) (json.RawMessage, error)

	// Get fetches a file in the requested representation
	Get(ctx context.Context, id, contentType string) (*Content, error)

	// Delete removes a file
	Delete(ctx context.Context, id string) error
}

var _ FilesAPI = (*FilesResource)(nil)
