package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masmgr/pagehistory-go/internal/git"
	"github.com/masmgr/pagehistory-go/internal/history"
)

// siteRepo is a repository holding a small site under src/.
type siteRepo struct {
	t    *testing.T
	dir  string
	wt   *gogit.Worktree
	when time.Time
}

func newSiteRepo(t *testing.T) *siteRepo {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	return &siteRepo{t: t, dir: dir, wt: wt, when: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (s *siteRepo) write(rel, data string) {
	s.t.Helper()
	full := filepath.Join(s.dir, rel)
	require.NoError(s.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(s.t, os.WriteFile(full, []byte(data), 0o644))
	_, err := s.wt.Add(rel)
	require.NoError(s.t, err)
}

func (s *siteRepo) move(from, to string) {
	s.t.Helper()
	_, err := s.wt.Move(from, to)
	require.NoError(s.t, err)
}

func (s *siteRepo) commit(msg string) string {
	s.t.Helper()
	s.when = s.when.Add(time.Hour)
	sig := &object.Signature{Name: "Site", Email: "site@example.com", When: s.when}
	h, err := s.wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(s.t, err)
	return h.String()
}

// buildSite creates src/posts/hello.md with three versions (added as
// old-name.md, renamed, edited), src/about.md with one version and an
// uncommitted src/new.md.
func buildSite(t *testing.T) (*siteRepo, []string) {
	s := newSiteRepo(t)
	var shas []string

	s.write("src/posts/old-name.md", "---\ntitle: Hello\n---\nfirst draft\n")
	s.write("src/about.md", "---\ntitle: About\n---\nabout us\n")
	shas = append(shas, s.commit("add posts"))

	s.move("src/posts/old-name.md", "src/posts/hello.md")
	shas = append(shas, s.commit("rename post"))

	s.write("src/posts/hello.md", "---\ntitle: Hello, world\n---\nfinal text\n")
	s.write("src/drafts/wip.md", "---\ntitle: WIP\n---\n")
	shas = append(shas, s.commit("edit post"))

	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "src", "new.md"), []byte("not committed\n"), 0o644))
	return s, shas
}

func TestPlugin_Run(t *testing.T) {
	s, shas := buildSite(t)
	src := filepath.Join(s.dir, "src")

	files, err := LoadDir(src, nil)
	require.NoError(t, err)

	p := New(Options{
		RepoPath:  s.dir,
		SourceDir: src,
		Include:   []string{"**/*.md"},
		Exclude:   []string{"drafts/**"},
	}, nil)

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, shas[2], report.Head.SHA)
	assert.Equal(t, []string{"src/about.md", "src/posts/hello.md"}, report.Paths())
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "src/new.md", report.Failures[0].Path)
	assert.ErrorIs(t, report.Failures[0], git.ErrPathNotFound)

	hello := files["posts/hello.md"]
	require.NotNil(t, hello.Version)
	assert.Equal(t, 2, *hello.Version)
	assert.Equal(t, shas[2], hello.Commit.ID)
	assert.Equal(t, "Hello, world", hello.Metadata["title"])
	require.Len(t, hello.Versions, 2)
	assert.Equal(t, "src/posts/old-name.md", hello.Versions[0].Path)
	assert.Equal(t, "src/posts/hello.md", hello.Versions[1].Path)

	v0 := files["posts/hello.md_versions/v0.md"]
	require.NotNil(t, v0)
	assert.Equal(t, 0, *v0.Version)
	assert.Equal(t, shas[0], v0.Commit.ID)
	assert.Equal(t, "Hello", v0.Metadata["title"])
	assert.Equal(t, "first draft\n", string(v0.Contents))

	v1 := files["posts/hello.md_versions/v1.md"]
	require.NotNil(t, v1)
	assert.Equal(t, shas[1], v1.Commit.ID)
	assert.Equal(t, "rename post", v1.Commit.Message)

	about := files["about.md"]
	require.NotNil(t, about.Version)
	assert.Equal(t, 0, *about.Version)
	assert.Empty(t, about.Versions)
	assert.NotContains(t, files, "about.md_versions/v0.md")

	assert.Nil(t, files["drafts/wip.md"].Version)
	assert.Nil(t, files["new.md"].Version)
}

func TestPlugin_RunAtRef(t *testing.T) {
	s, shas := buildSite(t)
	src := filepath.Join(s.dir, "src")

	files := Files{"posts/old-name.md": &File{}}
	p := New(Options{RepoPath: s.dir, SourceDir: src, Ref: shas[0], Include: []string{"**/*.md"}}, nil)

	report, err := p.Run(context.Background(), files)
	require.NoError(t, err)
	require.NoError(t, report.Err())

	f := files["posts/old-name.md"]
	require.NotNil(t, f.Version)
	assert.Equal(t, 0, *f.Version)
	assert.Equal(t, shas[0], f.Commit.ID)
}

func TestPlugin_LayoutOverride(t *testing.T) {
	s, _ := buildSite(t)
	src := filepath.Join(s.dir, "src")

	files := Files{"posts/hello.md": &File{}}
	p := New(Options{
		RepoPath:  s.dir,
		SourceDir: src,
		Include:   []string{"posts/*.md"},
		Resolve:   history.Options{Layout: "history.njk"},
	}, nil)

	_, err := p.Run(context.Background(), files)
	require.NoError(t, err)

	assert.Empty(t, files["posts/hello.md"].Layout)
	assert.Equal(t, "history.njk", files["posts/hello.md_versions/v0.md"].Layout)
	assert.Equal(t, "history.njk", files["posts/hello.md_versions/v1.md"].Layout)
}

func TestPlugin_ApplyFatalErrors(t *testing.T) {
	s, _ := buildSite(t)

	tests := []struct {
		name    string
		opts    Options
		wantErr error
	}{
		{
			name:    "Not a repository",
			opts:    Options{RepoPath: t.TempDir(), Include: []string{"**"}},
			wantErr: git.ErrRepositoryNotFound,
		},
		{
			name:    "Unknown reference",
			opts:    Options{RepoPath: s.dir, Ref: "does-not-exist", Include: []string{"**"}},
			wantErr: git.ErrReferenceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			New(tt.opts, nil).Apply(context.Background(), Files{"a.md": &File{}}, func(report *history.Report, err error) {
				calls++
				assert.Nil(t, report)
				assert.ErrorIs(t, err, tt.wantErr)
			})
			assert.Equal(t, 1, calls)
		})
	}
}

func TestPlugin_ApplyCallsDoneOnce(t *testing.T) {
	s, _ := buildSite(t)
	files, err := LoadDir(filepath.Join(s.dir, "src"), nil)
	require.NoError(t, err)

	calls := 0
	p := New(Options{RepoPath: s.dir, SourceDir: filepath.Join(s.dir, "src"), Include: []string{"**/*.md"}}, nil)
	p.Apply(context.Background(), files, func(report *history.Report, err error) {
		calls++
		require.NoError(t, err)
		assert.NotNil(t, report)
	})
	assert.Equal(t, 1, calls)
}

func TestPlugin_InvalidPattern(t *testing.T) {
	s, _ := buildSite(t)

	_, err := New(Options{RepoPath: s.dir, Include: []string{"[unclosed"}}, nil).Run(context.Background(), Files{})
	assert.Error(t, err)
}

func TestPlugin_SourceOutsideRepository(t *testing.T) {
	s, _ := buildSite(t)

	_, err := New(Options{RepoPath: s.dir, SourceDir: t.TempDir(), Include: []string{"**"}}, nil).Run(context.Background(), Files{})
	assert.Error(t, err)
}

func TestSourcePrefix(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "site", "src"), 0o755))

	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{name: "Empty", source: "", expected: ""},
		{name: "Root", source: root, expected: ""},
		{name: "Nested", source: filepath.Join(root, "site", "src"), expected: "site/src"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sourcePrefix(root, tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, err := sourcePrefix(filepath.Join(root, "site"), root)
	assert.Error(t, err)
}
