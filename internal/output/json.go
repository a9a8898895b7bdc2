package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"

	"github.com/masmgr/pagehistory-go/internal/git"
)

// JSONHistoryWriter writes history reports as JSON.
type JSONHistoryWriter struct{}

// JSONHistoryReport is the JSON output structure for a history report.
type JSONHistoryReport struct {
	RepoPath      string            `json:"repo"`
	Ref           string            `json:"ref"`
	Head          string            `json:"head"`
	GeneratedAt   string            `json:"generatedAt"`
	TotalFiles    int               `json:"totalFiles"`
	TotalVersions int               `json:"totalVersions"`
	Items         []JSONFileItem    `json:"items"`
	Failures      []JSONFailureItem `json:"failures"`
}

// JSONFileItem is the JSON output structure for a single file.
type JSONFileItem struct {
	Path         string        `json:"path"`
	VersionCount int           `json:"versionCount"`
	Renamed      bool          `json:"renamed"`
	Current      JSONVersion   `json:"current"`
	History      []JSONVersion `json:"history"`
}

// JSONVersion is the JSON output structure for one version of a file.
type JSONVersion struct {
	Version int    `json:"version"`
	Commit  string `json:"commit"`
	Subject string `json:"subject"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Path    string `json:"path"`
	Size    int    `json:"size"`
	Mode    string `json:"mode"`
}

// JSONFailureItem is the JSON output structure for a failed file.
type JSONFailureItem struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Write outputs the history report as JSON.
func (w *JSONHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	jsonItems := lo.Map(items, func(item FileItem, _ int) JSONFileItem {
		versions := lo.Map(item.Versions, toJSONVersion)
		last := len(versions) - 1
		return JSONFileItem{
			Path:         item.Path,
			VersionCount: len(versions),
			Renamed:      item.Renamed(),
			Current:      versions[last],
			History:      versions[:last],
		}
	})

	jsonReport := JSONHistoryReport{
		RepoPath:      report.RepoPath,
		Ref:           refLabel(report.Ref),
		Head:          report.Head.SHA,
		GeneratedAt:   report.GeneratedAt.Format(time.RFC3339),
		TotalFiles:    len(report.Items),
		TotalVersions: report.TotalVersions(),
		Items:         jsonItems,
		Failures: lo.Map(report.Failures, func(f FailureItem, _ int) JSONFailureItem {
			return JSONFailureItem(f)
		}),
	}

	return writeJSON(jsonReport, options.OutputPath)
}

func toJSONVersion(v VersionItem, _ int) JSONVersion {
	return JSONVersion{
		Version: v.Version,
		Commit:  v.Commit,
		Subject: v.Subject,
		Author:  v.Author,
		Date:    v.Date.Format(time.RFC3339),
		Path:    v.Path,
		Size:    v.Size,
		Mode:    git.FormatFileMode(v.Mode),
	}
}

func writeJSON(data interface{}, outputPath string) error {
	encoder := json.NewEncoder(os.Stdout)
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		encoder = json.NewEncoder(file)
	}

	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
