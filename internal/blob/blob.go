// Package blob defines the file-storage collaborator used to offload
// oversized note content and canvas connection lists.
package blob

import (
	"context"
)

// Store is the minimal contract the application needs from object storage:
// write content and get an id back, fetch content by id, and produce a URL
// a browser can fetch directly.
type Store interface {
	// Put stores content and returns the new blob's id.
	Put(ctx context.Context, content []byte, contentType string) (string, error)

	// Get downloads a blob's content by id.
	Get(ctx context.Context, id string) ([]byte, error)

	// PreviewURL returns a directly fetchable URL for the blob. No network
	// round-trip is performed.
	PreviewURL(id string) string
}
