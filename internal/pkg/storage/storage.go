package storage

import (
	"context"
	"io"
	"time"
)

// StoredFile describes a stored object. The checksum is the SHA-256 of
// the stored bytes, computed while writing.
type StoredFile struct {
	Path     string
	Checksum string
	Size     int64
}

type FileStorage interface {
	// Provider names the backing store, recorded on document metadata.
	Provider() string

	// Upload stores a file and returns its path and content checksum
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (StoredFile, error)

	// Download retrieves a file
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file
	Delete(ctx context.Context, path string) error

	// GetURL generates a presigned/public URL
	GetURL(ctx context.Context, path string, expiry time.Duration) (string, error)

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
