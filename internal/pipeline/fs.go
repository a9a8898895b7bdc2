package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/masmgr/pagehistory-go/internal/content"
)

// LoadDir reads every regular file below dir into a registry. Hidden files
// and directories are skipped. Text files have their frontmatter split off
// with split, or with content.Split when split is nil.
func LoadDir(dir string, split content.SplitFunc) (Files, error) {
	files := make(Files)
	fsys := os.DirFS(dir)

	err := doublestar.GlobWalk(fsys, "**", func(p string, d fs.DirEntry) error {
		if isHidden(p) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}

		doc, err := content.Parse(data, info.Mode().Perm(), split)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		files[p] = &File{Contents: doc.Body, Mode: doc.Mode, Metadata: doc.Metadata}
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	return files, nil
}

// ListDir registers every regular file below dir without reading it.
// Hidden files and directories are skipped.
func ListDir(dir string) (Files, error) {
	files := make(Files)
	err := doublestar.GlobWalk(os.DirFS(dir), "**", func(p string, d fs.DirEntry) error {
		if !isHidden(p) {
			files[p] = &File{}
		}
		return nil
	}, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	return files, nil
}

// WriteDir writes every file of the registry below dir. Text files get
// their fields rendered back as frontmatter.
func WriteDir(dir string, files Files) error {
	for _, p := range files.Paths() {
		f := files[p]
		target := filepath.Join(dir, filepath.FromSlash(p))

		data := f.Contents
		if content.IsText(f.Contents) {
			var err error
			data, err = content.Marshal(f.Fields(), f.Contents)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, data, writeMode(f.Mode)); err != nil {
			return err
		}
	}
	return nil
}

func writeMode(m os.FileMode) os.FileMode {
	perm := m.Perm() | 0o200
	if perm == 0o200 {
		return 0o644
	}
	return perm
}

func isHidden(p string) bool {
	for _, part := range strings.Split(p, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
