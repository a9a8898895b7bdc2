package git

import (
	"errors"
	"fmt"
	"os"
	"path"
	"strconv"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-git/v5/storage/filesystem"
)

// DefaultObjectFileMode is the permission git gives loose object files.
// It is used when an object has no file of its own (packed or in-memory).
const DefaultObjectFileMode os.FileMode = 0o444

// ObjectFileMode returns the permission bits of the loose object file that
// stores the object hash. Packed objects and repositories without an
// on-disk object store yield ErrObjectFileMissing.
func (r *Repository) ObjectFileMode(hash string) (os.FileMode, error) {
	st, ok := r.repo.Storer.(*filesystem.Storage)
	if !ok {
		return 0, fmt.Errorf("%w: %s: storage has no filesystem", ErrObjectFileMissing, hash)
	}
	return objectFileMode(st.Filesystem(), hash)
}

func objectFileMode(fs billy.Filesystem, hash string) (os.FileMode, error) {
	if len(hash) < 3 {
		return 0, fmt.Errorf("%w: invalid hash %q", ErrObjectFileMissing, hash)
	}

	fi, err := fs.Stat(path.Join("objects", hash[:2], hash[2:]))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("%w: %s", ErrObjectFileMissing, hash)
		}
		return 0, fmt.Errorf("stat object %s: %w", hash, err)
	}
	return fi.Mode().Perm(), nil
}

// ParseFileMode parses an octal permission string such as "0644" or "444".
func ParseFileMode(s string) (os.FileMode, error) {
	if s == "" {
		return DefaultObjectFileMode, nil
	}
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("parse file mode %q: %w", s, err)
	}
	if v > 0o777 {
		return 0, fmt.Errorf("parse file mode %q: not a permission value", s)
	}
	return os.FileMode(v), nil
}

// FormatFileMode renders permission bits as a four digit octal string.
func FormatFileMode(m os.FileMode) string {
	return fmt.Sprintf("%04o", uint32(m.Perm()))
}
