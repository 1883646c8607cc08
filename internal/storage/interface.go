package storage

import (
	"context"
	"io"
)

// ObjectStorage is the archive for fetched source documents. The pipeline
// writes each acquired PDF once; nothing in the hot path reads it back.
type ObjectStorage interface {
	// Upload stores a document under the given key
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// GetURL returns the public URL for a stored document
	GetURL(key string) string

	// Exists checks if a document is already archived
	Exists(ctx context.Context, key string) (bool, error)
}
