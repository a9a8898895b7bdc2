package git

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repository is a read-only handle on a Git object store.
//
// go-git storers are not safe for concurrent use, so every object read goes
// through mu. Callers may share one Repository between goroutines without
// any locking of their own.
type Repository struct {
	mu   sync.Mutex
	repo *git.Repository
	root string
}

// Open opens the repository containing root. Parent directories are searched
// for a .git directory, like the git command does.
func Open(root string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRepositoryNotFound, root, err)
	}

	// Bare repositories have no worktree; keep the path we were given.
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &Repository{repo: repo, root: root}, nil
}

// NewRepository wraps an already opened go-git repository, such as one
// backed by in-memory storage.
func NewRepository(repo *git.Repository) *Repository {
	return &Repository{repo: repo}
}

// Root returns the worktree root of the repository, or "" for wrapped repositories.
func (r *Repository) Root() string {
	return r.root
}

// ResolveHead resolves a reference name to the commit it points at.
// An empty name or "HEAD" resolves the current HEAD; anything else is
// handed to revision parsing (branch, tag, full or short hash).
func (r *Repository) ResolveHead(refName string) (CommitInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.resolveHash(strings.TrimSpace(refName))
	if err != nil {
		return CommitInfo{}, fmt.Errorf("%w: %q: %v", ErrReferenceNotFound, refName, err)
	}

	c, err := r.repo.CommitObject(hash)
	if err != nil {
		return CommitInfo{}, fmt.Errorf("%w: %q: %v", ErrReferenceNotFound, refName, err)
	}
	return commitInfo(c), nil
}

func (r *Repository) resolveHash(refName string) (plumbing.Hash, error) {
	if refName == "" || strings.EqualFold(refName, "HEAD") {
		ref, err := r.repo.Head()
		if err != nil {
			return plumbing.ZeroHash, err
		}
		return ref.Hash(), nil
	}

	hash, err := r.repo.ResolveRevision(plumbing.Revision(refName))
	if err != nil {
		return plumbing.ZeroHash, err
	}
	return *hash, nil
}

// commitObject loads a commit. The caller must hold mu.
func (r *Repository) commitObject(sha string) (*object.Commit, error) {
	if !plumbing.IsHash(sha) {
		return nil, fmt.Errorf("invalid commit hash %q", sha)
	}
	return r.repo.CommitObject(plumbing.NewHash(sha))
}

// entryAt returns the file entry for path in the tree of c, or nil when the
// tree has no file at that path. The caller must hold mu.
func entryAt(c *object.Commit, path string) (*object.TreeEntry, error) {
	tree, err := c.Tree()
	if err != nil {
		return nil, fmt.Errorf("read tree of %s: %w", c.Hash, err)
	}

	entry, err := tree.FindEntry(path)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) || errors.Is(err, object.ErrDirectoryNotFound) ||
			errors.Is(err, plumbing.ErrObjectNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup %s at %s: %w", path, c.Hash, err)
	}
	if !entry.Mode.IsFile() {
		return nil, nil
	}
	return entry, nil
}

func commitInfo(c *object.Commit) CommitInfo {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}

	return CommitInfo{
		SHA:     c.Hash.String(),
		When:    c.Committer.When,
		Author:  AuthorInfo{Name: c.Author.Name, Email: c.Author.Email},
		Message: c.Message,
		Parents: parents,
	}
}
