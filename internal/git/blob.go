package git

import (
	"context"
	"fmt"
	"io"
)

// ResolveBlob returns the content of path as recorded in the tree of the
// commit sha. A path with no file entry at that commit yields ErrPathNotFound,
// which callers walking history treat as "skip this entry".
func (r *Repository) ResolveBlob(ctx context.Context, sha, path string) (RawBlob, error) {
	if err := ctx.Err(); err != nil {
		return RawBlob{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.commitObject(sha)
	if err != nil {
		return RawBlob{}, fmt.Errorf("load commit %s: %w", sha, err)
	}

	entry, err := entryAt(c, path)
	if err != nil {
		return RawBlob{}, err
	}
	if entry == nil {
		return RawBlob{}, fmt.Errorf("%w: %s at %s", ErrPathNotFound, path, sha)
	}

	blob, err := r.repo.BlobObject(entry.Hash)
	if err != nil {
		return RawBlob{}, fmt.Errorf("load blob %s: %w", entry.Hash, err)
	}

	rd, err := blob.Reader()
	if err != nil {
		return RawBlob{}, fmt.Errorf("open blob %s: %w", entry.Hash, err)
	}
	defer rd.Close()

	data, err := io.ReadAll(rd)
	if err != nil {
		return RawBlob{}, fmt.Errorf("read blob %s: %w", entry.Hash, err)
	}

	return RawBlob{Hash: entry.Hash.String(), Data: data}, nil
}
