package interfaces

import (
	"context"
	"io"
)

// FileStore stores task document attachments. Handles are opaque to the
// core; only the store can resolve them.
type FileStore interface {
	// Put stores the content and returns an opaque handle
	Put(ctx context.Context, name string, r io.Reader) (string, error)

	// Get opens the content behind a handle
	Get(ctx context.Context, handle string) (io.ReadCloser, error)
}
