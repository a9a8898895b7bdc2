package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRepo is a repository on disk whose commits are one minute apart.
type testRepo struct {
	t    *testing.T
	dir  string
	wt   *git.Worktree
	when time.Time
}

// createTestRepo creates a temporary git repository.
func createTestRepo(t *testing.T) *testRepo {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("Failed to initialize git repo: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}
	return &testRepo{t: t, dir: dir, wt: wt, when: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

// writeFile writes a file into the worktree without staging it.
func (r *testRepo) writeFile(rel, content string) {
	r.t.Helper()
	full := filepath.Join(r.dir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("Failed to write file: %v", err)
	}
}

// addCommit writes and stages files, then commits them.
func (r *testRepo) addCommit(message string, files map[string]string) {
	r.t.Helper()
	for rel, content := range files {
		r.writeFile(rel, content)
		if _, err := r.wt.Add(rel); err != nil {
			r.t.Fatalf("Failed to add file: %v", err)
		}
	}

	r.when = r.when.Add(time.Minute)
	sig := &object.Signature{Name: "Test Author", Email: "author@example.com", When: r.when}
	if _, err := r.wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
		r.t.Fatalf("Failed to commit: %v", err)
	}
}

// readJSONFile decodes the JSON document stored at path into v.
func readJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("Failed to decode output: %v\n%s", err, data)
	}
}
