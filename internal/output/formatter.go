package output

import (
	"os"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/masmgr/pagehistory-go/internal/git"
	"github.com/masmgr/pagehistory-go/internal/history"
)

// Compile-time interface conformance checks.
// These ensure that all writer types correctly implement the interface.
var (
	_ HistoryReportWriter = (*ConsoleHistoryWriter)(nil)
	_ HistoryReportWriter = (*JSONHistoryWriter)(nil)
	_ HistoryReportWriter = (*CSVHistoryWriter)(nil)
	_ HistoryReportWriter = (*MarkdownHistoryWriter)(nil)
	_ HistoryReportWriter = (*CIHistoryWriter)(nil)
)

// OutputFormat represents the output format type.
type OutputFormat string

const (
	FormatConsole  OutputFormat = "console"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatMarkdown OutputFormat = "markdown"
	FormatCI       OutputFormat = "ci"
)

// OutputOptions controls output behavior.
type OutputOptions struct {
	Format     OutputFormat
	Top        int
	OutputPath string
	// ShowVersions lists every version of every file, not only a summary.
	ShowVersions bool
}

// HistoryReport holds the resolved history of a set of files.
type HistoryReport struct {
	RepoPath    string
	Ref         string
	Head        git.CommitInfo
	GeneratedAt time.Time
	// Items are ordered by number of versions, most edited first.
	Items    []FileItem
	Failures []FailureItem
}

// FileItem is the history of one file.
type FileItem struct {
	Path string
	// Versions are ordered oldest first; the last one is the current version.
	Versions []VersionItem
}

// Current returns the newest version.
func (f FileItem) Current() VersionItem {
	return f.Versions[len(f.Versions)-1]
}

// Renamed reports whether the file lived under another path in any version.
func (f FileItem) Renamed() bool {
	return lo.SomeBy(f.Versions, func(v VersionItem) bool {
		return v.Path != f.Path
	})
}

// VersionItem is one version of a file.
type VersionItem struct {
	Version int
	Commit  string
	Subject string
	Author  string
	Date    time.Time
	// Path is where the file lived at that commit.
	Path string
	Size int
	Mode os.FileMode
}

// FailureItem is a file whose history could not be resolved.
type FailureItem struct {
	Path  string
	Error string
}

// NewHistoryReport converts a resolver report into a report for output.
func NewHistoryReport(repoPath, ref string, r *history.Report, generatedAt time.Time) *HistoryReport {
	items := lo.Map(r.Paths(), func(p string, _ int) FileItem {
		set := r.Sets[p]
		all := append(append([]history.ParsedVersion{}, set.History...), set.Current)
		return FileItem{Path: p, Versions: lo.Map(all, toVersionItem)}
	})
	sort.SliceStable(items, func(i, j int) bool {
		return len(items[i].Versions) > len(items[j].Versions)
	})

	return &HistoryReport{
		RepoPath:    repoPath,
		Ref:         ref,
		Head:        r.Head,
		GeneratedAt: generatedAt,
		Items:       items,
		Failures: lo.Map(r.Failures, func(f history.FileFailure, _ int) FailureItem {
			return FailureItem{Path: f.Path, Error: f.Err.Error()}
		}),
	}
}

func toVersionItem(v history.ParsedVersion, _ int) VersionItem {
	return VersionItem{
		Version: v.Version,
		Commit:  v.Commit.ID,
		Subject: v.Commit.Subject,
		Author:  v.Commit.Author,
		Date:    v.Commit.Date,
		Path:    v.Path,
		Size:    len(v.Contents),
		Mode:    v.Mode,
	}
}

// TotalVersions returns the number of versions across all files.
func (r *HistoryReport) TotalVersions() int {
	return lo.SumBy(r.Items, func(f FileItem) int { return len(f.Versions) })
}

// HistoryReportWriter writes history reports.
type HistoryReportWriter interface {
	Write(report *HistoryReport, options OutputOptions) error
}

// NewHistoryReportWriter creates a report writer for the specified format.
func NewHistoryReportWriter(format OutputFormat) HistoryReportWriter {
	switch format {
	case FormatJSON:
		return &JSONHistoryWriter{}
	case FormatCSV:
		return &CSVHistoryWriter{}
	case FormatMarkdown:
		return &MarkdownHistoryWriter{}
	case FormatCI:
		return &CIHistoryWriter{}
	default:
		return &ConsoleHistoryWriter{}
	}
}
