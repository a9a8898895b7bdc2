package history

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/masmgr/pagehistory-go/internal/git"
)

// FileFailure records a file whose versions could not be resolved.
type FileFailure struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (f FileFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Path, f.Err)
}

// Unwrap returns the underlying error.
func (f FileFailure) Unwrap() error {
	return f.Err
}

// Report is the outcome of resolving a set of files.
type Report struct {
	Head     git.CommitInfo
	Sets     map[string]*FileVersionSet
	Failures []FileFailure
}

// Paths returns the resolved paths in lexical order.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.Sets))
	for p := range r.Sets {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// TotalVersions returns the number of versions across all resolved files.
func (r *Report) TotalVersions() int {
	total := 0
	for _, s := range r.Sets {
		total += s.Len()
	}
	return total
}

// Err combines all failures into one error, or returns nil when every file
// was resolved.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, f := range r.Failures {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}
