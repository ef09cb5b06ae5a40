package storage

import (
	"context"
	"io"
)

// UploadResult describes a stored object. Key is what callers persist;
// Location and ETag come back from the backing store as-is.
type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

// FileUploader stores user-submitted files (avatars, payment screenshots)
// under caller-chosen keys. Implementations must be safe for concurrent use.
type FileUploader interface {
	// Upload writes the reader's contents under key and returns the stored
	// object's metadata.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)

	// Delete removes the object at key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// GetPublicURL returns the browser-reachable URL for a stored key.
	GetPublicURL(key string) string
}
