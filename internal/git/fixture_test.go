package git

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

var fixtureEpoch = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

// memRepo builds commits directly in an in-memory object store. Trees are
// flat: every file lives at the repository root.
type memRepo struct {
	t    *testing.T
	st   *memory.Storage
	head plumbing.Hash
	when time.Time
}

func newMemRepo(t *testing.T) *memRepo {
	t.Helper()
	return &memRepo{t: t, st: memory.NewStorage(), when: fixtureEpoch}
}

func (m *memRepo) storeBlob(data string) plumbing.Hash {
	m.t.Helper()
	obj := m.st.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	w, err := obj.Writer()
	if err != nil {
		m.t.Fatalf("blob writer: %v", err)
	}
	if _, err := w.Write([]byte(data)); err != nil {
		m.t.Fatalf("write blob: %v", err)
	}
	if err := w.Close(); err != nil {
		m.t.Fatalf("close blob: %v", err)
	}
	h, err := m.st.SetEncodedObject(obj)
	if err != nil {
		m.t.Fatalf("store blob: %v", err)
	}
	return h
}

func (m *memRepo) storeTree(files map[string]string) plumbing.Hash {
	m.t.Helper()
	entries := make([]object.TreeEntry, 0, len(files))
	for name, data := range files {
		entries = append(entries, object.TreeEntry{
			Name: name,
			Mode: filemode.Regular,
			Hash: m.storeBlob(data),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	obj := m.st.NewEncodedObject()
	if err := (&object.Tree{Entries: entries}).Encode(obj); err != nil {
		m.t.Fatalf("encode tree: %v", err)
	}
	h, err := m.st.SetEncodedObject(obj)
	if err != nil {
		m.t.Fatalf("store tree: %v", err)
	}
	return h
}

// commitWith stores a commit with explicit parents and returns its hash.
// It does not move head.
func (m *memRepo) commitWith(parents []plumbing.Hash, msg string, files map[string]string) plumbing.Hash {
	m.t.Helper()
	m.when = m.when.Add(time.Minute)
	sig := object.Signature{Name: "Test", Email: "test@example.com", When: m.when}

	c := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      msg,
		TreeHash:     m.storeTree(files),
		ParentHashes: parents,
	}
	obj := m.st.NewEncodedObject()
	if err := c.Encode(obj); err != nil {
		m.t.Fatalf("encode commit: %v", err)
	}
	h, err := m.st.SetEncodedObject(obj)
	if err != nil {
		m.t.Fatalf("store commit: %v", err)
	}
	return h
}

// commit stores a commit on top of head and moves head to it.
func (m *memRepo) commit(msg string, files map[string]string) plumbing.Hash {
	m.t.Helper()
	var parents []plumbing.Hash
	if !m.head.IsZero() {
		parents = []plumbing.Hash{m.head}
	}
	m.head = m.commitWith(parents, msg, files)
	return m.head
}

func (m *memRepo) open() *Repository {
	m.t.Helper()
	if err := m.st.SetReference(plumbing.NewHashReference(plumbing.Master, m.head)); err != nil {
		m.t.Fatalf("SetReference: %v", err)
	}
	if err := m.st.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.Master)); err != nil {
		m.t.Fatalf("SetReference(HEAD): %v", err)
	}
	repo, err := gogit.Open(m.st, nil)
	if err != nil {
		m.t.Fatalf("Open: %v", err)
	}
	return NewRepository(repo)
}

// diskRepo is a repository with a worktree under a temporary directory.
type diskRepo struct {
	t    *testing.T
	dir  string
	repo *gogit.Repository
	wt   *gogit.Worktree
	when time.Time
}

func newDiskRepo(t *testing.T) *diskRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	return &diskRepo{t: t, dir: dir, repo: repo, wt: wt, when: fixtureEpoch}
}

func (d *diskRepo) write(rel, content string) {
	d.t.Helper()
	full := filepath.Join(d.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		d.t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		d.t.Fatalf("WriteFile: %v", err)
	}
	if _, err := d.wt.Add(rel); err != nil {
		d.t.Fatalf("Add: %v", err)
	}
}

func (d *diskRepo) move(from, to string) {
	d.t.Helper()
	if _, err := d.wt.Move(from, to); err != nil {
		d.t.Fatalf("Move: %v", err)
	}
}

func (d *diskRepo) commit(msg string) string {
	d.t.Helper()
	d.when = d.when.Add(time.Minute)
	sig := &object.Signature{Name: "Test", Email: "test@example.com", When: d.when}
	h, err := d.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		d.t.Fatalf("Commit: %v", err)
	}
	return h.String()
}

// similarBody returns a multi-line document; bodies built with different
// tags differ in their last line only.
func similarBody(tag string) string {
	var s string
	for i := 0; i < 20; i++ {
		s += "line of shared content that keeps the documents similar\n"
	}
	return s + "tag: " + tag + "\n"
}
