package git

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
)

// MockHistorySource is a test double for Repository.
// It allows tests to provide predefined versions without needing a real Git repository.
type MockHistorySource struct {
	// Versions maps a path to its versions, newest first.
	Versions map[string][]RawVersion
	// Errors maps a path to the error FileHistory returns for it.
	Errors map[string]error
	// Modes maps a blob hash to its permission bits. Missing hashes
	// yield ErrObjectFileMissing.
	Modes map[string]os.FileMode

	mu    sync.Mutex
	calls []string
}

// NewMockHistorySource creates a new MockHistorySource with the given data.
func NewMockHistorySource(versions map[string][]RawVersion) *MockHistorySource {
	return &MockHistorySource{
		Versions: versions,
		Errors:   map[string]error{},
		Modes:    map[string]os.FileMode{},
	}
}

// FileHistory returns the predefined versions or error for path.
// A path with neither yields ErrPathNotFound.
func (m *MockHistorySource) FileHistory(ctx context.Context, _ string, path string, opts HistoryOptions) ([]RawVersion, error) {
	m.mu.Lock()
	m.calls = append(m.calls, path)
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := m.Errors[path]; ok {
		return nil, err
	}
	versions, ok := m.Versions[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	if len(versions) > opts.maxDepth() {
		versions = versions[:opts.maxDepth()]
	}
	return slices.Clone(versions), nil
}

// ObjectFileMode returns the predefined mode for hash.
func (m *MockHistorySource) ObjectFileMode(hash string) (os.FileMode, error) {
	if mode, ok := m.Modes[hash]; ok {
		return mode, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrObjectFileMissing, hash)
}

// Calls returns the paths FileHistory was called with, in call order.
func (m *MockHistorySource) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

// Compile-time interface conformance check.
var _ HistorySource = (*MockHistorySource)(nil)
