package pipeline

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher selects registry paths by glob patterns.
type Matcher struct {
	include []string
	exclude []string
}

// NewMatcher validates the patterns and builds a matcher. An include pattern
// starting with "!" is treated as an exclude pattern.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	m := &Matcher{}
	for _, p := range include {
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			m.exclude = append(m.exclude, neg)
			continue
		}
		m.include = append(m.include, p)
	}
	m.exclude = append(m.exclude, exclude...)

	for _, p := range append(append([]string{}, m.include...), m.exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	return m, nil
}

// Match reports whether path is selected. Exclude patterns win over include
// patterns. Without include patterns nothing is selected.
func (m *Matcher) Match(path string) bool {
	// Normalize path separators
	path = strings.ReplaceAll(path, "\\", "/")

	for _, pattern := range m.exclude {
		if doublestar.MatchUnvalidated(pattern, path) {
			return false
		}
	}

	for _, pattern := range m.include {
		if doublestar.MatchUnvalidated(pattern, path) {
			return true
		}
	}
	return false
}

// Filter returns the paths of files that match, in lexical order.
func (m *Matcher) Filter(files Files) []string {
	var matched []string
	for _, p := range files.Paths() {
		if m.Match(p) {
			matched = append(matched, p)
		}
	}
	return matched
}
