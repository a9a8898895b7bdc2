package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masmgr/pagehistory-go/internal/content"
)

func writeFile(t *testing.T, dir, rel, data string) {
	t.Helper()
	full := filepath.Join(dir, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(data), 0o644))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.md", "---\ntitle: Home\n---\nwelcome\n")
	writeFile(t, dir, "posts/a.md", "plain text\n")
	writeFile(t, dir, "img/logo.png", string([]byte{0x89, 'P', 'N', 'G', 0xff}))
	writeFile(t, dir, ".hidden/secret.md", "x\n")
	writeFile(t, dir, "posts/.draft.md", "x\n")

	files, err := LoadDir(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"img/logo.png", "index.md", "posts/a.md"}, files.Paths())
	assert.Equal(t, "Home", files["index.md"].Metadata["title"])
	assert.Equal(t, "welcome\n", string(files["index.md"].Contents))
	assert.Empty(t, files["posts/a.md"].Metadata)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', 0xff}, files["img/logo.png"].Contents)
	assert.Equal(t, os.FileMode(0o644), files["index.md"].Mode)
}

func TestLoadDir_InvalidFrontmatter(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.md", "---\ntitle: unclosed\n")

	_, err := LoadDir(dir, nil)
	assert.ErrorIs(t, err, content.ErrInvalidFrontmatter)
}

func TestWriteDir(t *testing.T) {
	files := Files{"notes.md": &File{Contents: []byte("current\n"), Metadata: content.Metadata{"title": "New"}}}
	files.Enrich("notes.md", sampleSet())
	files["logo.png"] = &File{Contents: []byte{0xff, 0x00, 0xfe}, Mode: 0o444}
	files["plain.txt"] = &File{Contents: []byte("no metadata\n")}

	dir := t.TempDir()
	require.NoError(t, WriteDir(dir, files))

	data, err := os.ReadFile(filepath.Join(dir, "notes.md_versions", "v0.md"))
	require.NoError(t, err)
	fm, err := content.Split(string(data))
	require.NoError(t, err)
	assert.Equal(t, "Old", fm.Data["title"])
	assert.Equal(t, 0, fm.Data["version"])
	assert.Equal(t, "history.njk", fm.Data["layout"])
	commit, ok := fm.Data["commit"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "c0", commit["id"])
	assert.Equal(t, "body c0\n", fm.Body)

	data, err = os.ReadFile(filepath.Join(dir, "notes.md"))
	require.NoError(t, err)
	fm, err = content.Split(string(data))
	require.NoError(t, err)
	assert.Equal(t, 2, fm.Data["version"])
	assert.Len(t, fm.Data["versions"], 2)

	data, err = os.ReadFile(filepath.Join(dir, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0x00, 0xfe}, data)

	data, err = os.ReadFile(filepath.Join(dir, "plain.txt"))
	require.NoError(t, err)
	assert.Equal(t, "no metadata\n", string(data))

	fi, err := os.Stat(filepath.Join(dir, "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), fi.Mode().Perm())
}

func TestWriteMode(t *testing.T) {
	tests := []struct {
		in, expected os.FileMode
	}{
		{in: 0, expected: 0o644},
		{in: 0o444, expected: 0o644},
		{in: 0o400, expected: 0o600},
		{in: 0o755, expected: 0o755},
	}

	for _, tt := range tests {
		if got := writeMode(tt.in); got != tt.expected {
			t.Errorf("writeMode(%o) = %o, expected %o", tt.in, got, tt.expected)
		}
	}
}

func TestListDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.md", "---\nnot: [valid\n---\n")
	writeFile(t, dir, "posts/a.md", "x\n")
	writeFile(t, dir, ".git/HEAD", "ref: refs/heads/master\n")

	files, err := ListDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.md", "posts/a.md"}, files.Paths())
	assert.Empty(t, files["index.md"].Contents)
}
