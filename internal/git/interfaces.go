package git

import (
	"context"
	"os"
)

// HistorySource defines the interface for reading the history of single files.
// This abstraction allows for easier testing and potential alternative implementations.
type HistorySource interface {
	// FileHistory returns the versions of path reachable from start, newest first.
	FileHistory(ctx context.Context, start string, path string, opts HistoryOptions) ([]RawVersion, error)
	// ObjectFileMode returns the permission bits stored for a blob.
	ObjectFileMode(hash string) (os.FileMode, error)
}

// Compile-time interface conformance check.
var _ HistorySource = (*Repository)(nil)
