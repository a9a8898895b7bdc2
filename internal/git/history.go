package git

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// walkTask is one path to walk, starting at from. Its entries are spliced
// into the accumulated history at index at.
type walkTask struct {
	path string
	from string
	at   int
}

// FileEntries returns every commit that changed path, newest first,
// following the path back through renames.
//
// path must exist at start; otherwise the error wraps ErrPathNotFound.
// A rename commit appears once, under the name the file had after the
// rename. Deleted entries are dropped since they carry no content.
func (r *Repository) FileEntries(ctx context.Context, start string, path string, opts HistoryOptions) ([]HistoryEntry, error) {
	if err := r.checkStart(start, path); err != nil {
		return nil, err
	}

	w := &walker{
		r:       r,
		budget:  opts.maxDepth(),
		renames: opts.RenameDetect,
		onError: opts.OnWalkError,
	}

	var history []HistoryEntry
	emitted := make(map[string]bool)
	stack := []walkTask{{path: path, from: start}}

	for len(stack) > 0 && w.budget > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		found, err := w.walk(ctx, task.from, task.path)
		if err != nil {
			return nil, fmt.Errorf("walk %s from %s: %w", task.path, task.from, err)
		}

		kept := make([]HistoryEntry, 0, len(found))
		for _, e := range found {
			if e.Kind == ChangeKindDeleted || emitted[e.Commit.SHA] {
				continue
			}
			emitted[e.Commit.SHA] = true
			kept = append(kept, e)
		}
		history = slices.Insert(history, task.at, kept...)

		if len(kept) == 0 {
			continue
		}
		boundary := kept[len(kept)-1]
		if boundary.Kind == ChangeKindRenamed && boundary.Path == task.path && !boundary.Commit.IsRoot() {
			stack = append(stack, walkTask{
				path: boundary.OldPath,
				from: boundary.Commit.Parents[0],
				at:   task.at + len(kept),
			})
		}
	}

	return history, nil
}

func (r *Repository) checkStart(start, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, err := r.commitObject(start)
	if err != nil {
		return fmt.Errorf("load start commit %s: %w", start, err)
	}
	entry, err := entryAt(c, path)
	if err != nil {
		return err
	}
	if entry == nil {
		return fmt.Errorf("%w: %s at %s", ErrPathNotFound, path, start)
	}
	return nil
}

// FileHistory resolves the content of path at every commit that changed it,
// newest first. Entries whose blob cannot be read are skipped and reported
// through opts.OnSkip.
func (r *Repository) FileHistory(ctx context.Context, start string, path string, opts HistoryOptions) ([]RawVersion, error) {
	entries, err := r.FileEntries(ctx, start, path, opts)
	if err != nil {
		return nil, err
	}
	return r.resolveVersions(ctx, entries, opts)
}

func (r *Repository) resolveVersions(ctx context.Context, entries []HistoryEntry, opts HistoryOptions) ([]RawVersion, error) {
	slots := make([]*RawVersion, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.blobConcurrency())
	for i, e := range entries {
		g.Go(func() error {
			blob, err := r.ResolveBlob(gctx, e.Commit.SHA, e.Path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if opts.OnSkip != nil {
					opts.OnSkip(e, err)
				}
				return nil
			}
			slots[i] = &RawVersion{Commit: e.Commit, Path: e.Path, Blob: blob}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	versions := make([]RawVersion, 0, len(slots))
	for _, v := range slots {
		if v != nil {
			versions = append(versions, *v)
		}
	}
	return versions, nil
}
