package git

import (
	"context"
	"strings"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// RenameDetectMode controls how file renames are detected.
// The zero value follows renames with similarity matching.
type RenameDetectMode int

const (
	RenameDetectAuto RenameDetectMode = iota
	RenameDetectOff
	RenameDetectSimple
	RenameDetectAggressive
)

// String returns a string representation of the rename detection mode.
func (m RenameDetectMode) String() string {
	switch m {
	case RenameDetectAuto:
		return "auto"
	case RenameDetectOff:
		return "off"
	case RenameDetectSimple:
		return "simple"
	case RenameDetectAggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

func (m RenameDetectMode) diffOptions() *object.DiffTreeOptions {
	opts := *object.DefaultDiffTreeOptions
	opts.OnlyExactRenames = m == RenameDetectSimple
	return &opts
}

// walker visits the ancestors of a commit newest first and reports the
// commits that changed one path. budget is shared by every walk of a file so
// the whole rename chain stays within one depth bound.
type walker struct {
	r       *Repository
	budget  int
	renames RenameDetectMode
	onError func(sha string, err error)
}

// walk returns the commits reachable from sha that touched path, newest
// first. It stops after the commit where path was added or renamed into
// existence, at the root commit, or when the budget runs out. Merge commits
// are compared against their first parent only.
func (w *walker) walk(ctx context.Context, sha, path string) ([]HistoryEntry, error) {
	w.r.mu.Lock()
	start, err := w.r.commitObject(sha)
	w.r.mu.Unlock()
	if err != nil {
		return nil, err
	}

	queue := newCommitQueue()
	seen := map[plumbing.Hash]bool{start.Hash: true}
	queue.Push(start)

	var entries []HistoryEntry
	for !queue.Empty() && w.budget > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, _ := queue.Pop()
		c := v.(*object.Commit)
		w.budget--

		entry, touched, err := w.visit(ctx, c, path)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			w.report(c.Hash.String(), err)
		}
		if touched {
			entries = append(entries, entry)
			if entry.Kind == ChangeKindAdded || entry.Kind == ChangeKindRenamed {
				break
			}
		}

		w.r.mu.Lock()
		for _, ph := range c.ParentHashes {
			if seen[ph] {
				continue
			}
			seen[ph] = true
			parent, err := w.r.repo.CommitObject(ph)
			if err != nil {
				// Shallow clones end in parents that are not in the store.
				w.report(ph.String(), err)
				continue
			}
			queue.Push(parent)
		}
		w.r.mu.Unlock()
	}

	return entries, nil
}

// visit classifies how c changed path relative to its first parent.
func (w *walker) visit(ctx context.Context, c *object.Commit, path string) (HistoryEntry, bool, error) {
	w.r.mu.Lock()
	defer w.r.mu.Unlock()

	entry := HistoryEntry{Commit: commitInfo(c), Path: path}

	cur, err := entryAt(c, path)
	if err != nil {
		return entry, false, err
	}

	var parent *object.Commit
	if c.NumParents() > 0 {
		if parent, err = c.Parent(0); err != nil {
			parent = nil
		}
	}

	if parent == nil {
		if cur == nil {
			return entry, false, nil
		}
		entry.Kind = ChangeKindAdded
		return entry, true, nil
	}

	prev, err := entryAt(parent, path)
	if err != nil {
		return entry, false, err
	}

	switch {
	case cur == nil && prev == nil:
		return entry, false, nil
	case cur == nil:
		entry.Kind = ChangeKindDeleted
		return entry, true, nil
	case prev == nil:
		oldPath, err := w.renamedFrom(ctx, parent, c, path)
		if err != nil {
			return entry, false, err
		}
		if oldPath != "" {
			entry.Kind = ChangeKindRenamed
			entry.OldPath = oldPath
		} else {
			entry.Kind = ChangeKindAdded
		}
		return entry, true, nil
	case cur.Hash == prev.Hash && cur.Mode == prev.Mode:
		return entry, false, nil
	default:
		entry.Kind = ChangeKindModified
		return entry, true, nil
	}
}

// renamedFrom returns the path that path was renamed from between parent
// and c, or "" when path was newly added. The caller must hold the lock.
func (w *walker) renamedFrom(ctx context.Context, parent, c *object.Commit, path string) (string, error) {
	if w.renames == RenameDetectOff {
		return "", nil
	}

	from, err := parent.Tree()
	if err != nil {
		return "", err
	}
	to, err := c.Tree()
	if err != nil {
		return "", err
	}

	changes, err := object.DiffTreeWithOptions(ctx, from, to, w.renames.diffOptions())
	if err != nil {
		return "", err
	}

	for _, ch := range changes {
		if ch.To.Name == path && ch.From.Name != "" && ch.From.Name != path {
			return ch.From.Name, nil
		}
	}
	return "", nil
}

func (w *walker) report(sha string, err error) {
	if w.onError != nil {
		w.onError(sha, err)
	}
}

// newCommitQueue returns a heap that pops the most recently committed
// commit first. Ties are broken by hash so walks are deterministic.
func newCommitQueue() *binaryheap.Heap {
	return binaryheap.NewWith(func(a, b interface{}) int {
		ca, cb := a.(*object.Commit), b.(*object.Commit)
		switch {
		case ca.Committer.When.After(cb.Committer.When):
			return -1
		case ca.Committer.When.Before(cb.Committer.When):
			return 1
		default:
			return strings.Compare(ca.Hash.String(), cb.Hash.String())
		}
	})
}
