// Package history turns the raw commit history of a file into numbered,
// parsed versions.
package history

import (
	"errors"
	"fmt"
	"os"
	"path"
	"slices"
	"sort"
	"strconv"
	"time"

	"github.com/masmgr/pagehistory-go/internal/content"
	"github.com/masmgr/pagehistory-go/internal/git"
)

// ErrNoVersions is returned when a file has no readable version at all.
var ErrNoVersions = errors.New("no versions found")

// CommitSummary is the commit metadata attached to every version.
type CommitSummary struct {
	ID      string    `json:"id" yaml:"id"`
	Subject string    `json:"subject" yaml:"subject"`
	Message string    `json:"message" yaml:"message"`
	Author  string    `json:"author" yaml:"author"`
	Date    time.Time `json:"date" yaml:"date"`
}

// NewCommitSummary summarizes c.
func NewCommitSummary(c git.CommitInfo) CommitSummary {
	return CommitSummary{
		ID:      c.SHA,
		Subject: c.Subject(),
		Message: c.Message,
		Author:  c.Author.Name,
		Date:    c.When,
	}
}

// ParsedVersion is one revision of a file.
type ParsedVersion struct {
	Metadata content.Metadata
	Contents []byte
	Mode     os.FileMode
	Commit   CommitSummary
	Version  int
	// Layout overrides the layout of historical versions when configured.
	Layout string
	// Path is where the file lived at that commit.
	Path     string
	BlobHash string
}

// FileVersionSet holds every version of one file. History is ordered oldest
// first and does not include Current.
type FileVersionSet struct {
	Path    string
	Current ParsedVersion
	// History is sorted by non-decreasing commit time. Commits with equal
	// timestamps keep the order of the walk.
	History []ParsedVersion
}

// Len returns the number of versions including the current one.
func (s *FileVersionSet) Len() int {
	return len(s.History) + 1
}

// VersionName returns the name under which version v of filePath is
// published: "<filePath>_versions/v<n><ext>", where ext is the extension of
// filePath or ".md" when it has none.
func VersionName(filePath string, v int) string {
	ext := path.Ext(filePath)
	if ext == "" {
		ext = ".md"
	}
	return filePath + "_versions/v" + strconv.Itoa(v) + ext
}

// Parser turns a raw blob into a ParsedVersion.
type Parser struct {
	Split content.SplitFunc
	// ModeLookup returns the permission bits for a blob hash. When nil or
	// failing, DefaultMode is used.
	ModeLookup  func(hash string) (os.FileMode, error)
	DefaultMode os.FileMode
	// OnModeFallback is called when ModeLookup fails.
	OnModeFallback func(hash string, err error)
}

func (p Parser) mode(hash string) os.FileMode {
	if p.ModeLookup == nil {
		return p.DefaultMode
	}
	m, err := p.ModeLookup(hash)
	if err != nil {
		if p.OnModeFallback != nil {
			p.OnModeFallback(hash, err)
		}
		return p.DefaultMode
	}
	return m
}

// Parse parses raw as version number n.
func (p Parser) Parse(raw git.RawVersion, n int) (ParsedVersion, error) {
	doc, err := content.Parse(raw.Blob.Data, p.mode(raw.Blob.Hash), p.Split)
	if err != nil {
		return ParsedVersion{}, err
	}

	return ParsedVersion{
		Metadata: doc.Metadata,
		Contents: doc.Body,
		Mode:     doc.Mode,
		Commit:   NewCommitSummary(raw.Commit),
		Version:  n,
		Path:     raw.Path,
		BlobHash: raw.Blob.Hash,
	}, nil
}

// Assemble numbers the versions of filePath and splits off the newest.
// raws is ordered newest first, as produced by git.Repository.FileHistory.
// Versions are numbered from 0 for the oldest commit; every version except
// the current one gets layout when it is not empty.
func Assemble(filePath string, raws []git.RawVersion, p Parser, layout string) (*FileVersionSet, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("%s: %w", filePath, ErrNoVersions)
	}

	ordered := slices.Clone(raws)
	slices.Reverse(ordered)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Commit.When.Before(ordered[j].Commit.When)
	})

	versions := make([]ParsedVersion, len(ordered))
	for i, raw := range ordered {
		v, err := p.Parse(raw, i)
		if err != nil {
			return nil, fmt.Errorf("%s: version %d at %s: %w", filePath, i, shortSHA(raw.Commit.SHA), err)
		}
		versions[i] = v
	}

	last := len(versions) - 1
	set := &FileVersionSet{
		Path:    filePath,
		Current: versions[last],
		History: versions[:last:last],
	}
	if layout != "" {
		for i := range set.History {
			set.History[i].Layout = layout
		}
	}
	return set, nil
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}
