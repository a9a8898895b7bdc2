package output

import (
	"encoding/json"
	"fmt"
	"io"
)

// CIHistoryWriter writes history reports as NDJSON (one JSON object per line) for CI pipelines.
type CIHistoryWriter struct{}

// CISummary is the first line of CI output, containing aggregate statistics.
type CISummary struct {
	Type          string `json:"type"`
	Head          string `json:"head"`
	TotalFiles    int    `json:"totalFiles"`
	TotalVersions int    `json:"totalVersions"`
	FailedFiles   int    `json:"failedFiles"`
	MaxVersions   int    `json:"maxVersions"`
}

// CIFileEntry represents a single file entry in CI output.
type CIFileEntry struct {
	Type       string `json:"type"`
	Path       string `json:"path"`
	Versions   int    `json:"versions"`
	LastCommit string `json:"lastCommit"`
	Renamed    bool   `json:"renamed"`
}

// CIFailureEntry represents a failed file in CI output.
type CIFailureEntry struct {
	Type  string `json:"type"`
	Path  string `json:"path"`
	Error string `json:"error"`
}

// Write outputs the history report as NDJSON.
func (w *CIHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	var maxVersions int
	for _, item := range report.Items {
		if n := len(item.Versions); n > maxVersions {
			maxVersions = n
		}
	}

	// Write summary line
	summary := CISummary{
		Type:          "summary",
		Head:          report.Head.SHA,
		TotalFiles:    len(report.Items),
		TotalVersions: report.TotalVersions(),
		FailedFiles:   len(report.Failures),
		MaxVersions:   maxVersions,
	}
	if err := writeNDJSONLine(out, summary); err != nil {
		return err
	}

	// Write file entries
	for _, item := range items {
		entry := CIFileEntry{
			Type:       "file",
			Path:       item.Path,
			Versions:   len(item.Versions),
			LastCommit: item.Current().Commit,
			Renamed:    item.Renamed(),
		}
		if err := writeNDJSONLine(out, entry); err != nil {
			return err
		}
	}

	// Failures are never cut by Top.
	for _, f := range report.Failures {
		if err := writeNDJSONLine(out, CIFailureEntry{Type: "failure", Path: f.Path, Error: f.Error}); err != nil {
			return err
		}
	}

	return nil
}

func writeNDJSONLine(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal NDJSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}
