// Package pipeline enriches a registry of content files with their version
// history and publishes every historical version as a file of its own.
package pipeline

import (
	"maps"
	"os"
	"slices"
	"sort"

	"github.com/masmgr/pagehistory-go/internal/content"
	"github.com/masmgr/pagehistory-go/internal/history"
)

// File is one entry of the registry.
type File struct {
	Contents []byte
	Mode     os.FileMode
	Metadata content.Metadata

	// Set on files with history. Version and Commit describe the newest
	// version; Versions lists the older ones, oldest first.
	Version  *int
	Commit   *history.CommitSummary
	Versions []history.ParsedVersion
	Layout   string
}

// Files maps registry paths, relative to the source directory, to files.
type Files map[string]*File

// Paths returns the registry paths in lexical order.
func (f Files) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Enrich attaches set to the file registered under key and registers every
// historical version under history.VersionName(key, n).
func (f Files) Enrich(key string, set *history.FileVersionSet) {
	file, ok := f[key]
	if !ok {
		file = &File{Contents: set.Current.Contents, Mode: set.Current.Mode, Metadata: set.Current.Metadata}
		f[key] = file
	}

	version := set.Current.Version
	commit := set.Current.Commit
	file.Version = &version
	file.Commit = &commit
	file.Versions = slices.Clone(set.History)

	for _, v := range set.History {
		f[history.VersionName(key, v.Version)] = versionFile(v)
	}
}

func versionFile(v history.ParsedVersion) *File {
	version := v.Version
	commit := v.Commit
	return &File{
		Contents: v.Contents,
		Mode:     v.Mode,
		Metadata: maps.Clone(v.Metadata),
		Version:  &version,
		Commit:   &commit,
		Layout:   v.Layout,
	}
}

// Fields returns the metadata of f with the history fields spread at the
// top level, the way templates see them.
func (f *File) Fields() content.Metadata {
	fields := maps.Clone(f.Metadata)
	if fields == nil {
		fields = content.Metadata{}
	}
	if f.Version != nil {
		fields["version"] = *f.Version
	}
	if f.Commit != nil {
		fields["commit"] = *f.Commit
	}
	if f.Layout != "" {
		fields["layout"] = f.Layout
	}
	if len(f.Versions) > 0 {
		refs := make([]map[string]any, 0, len(f.Versions))
		for _, v := range f.Versions {
			refs = append(refs, map[string]any{
				"version": v.Version,
				"commit":  v.Commit.ID,
				"date":    v.Commit.Date,
			})
		}
		fields["versions"] = refs
	}
	return fields
}
