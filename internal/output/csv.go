package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/masmgr/pagehistory-go/internal/git"
)

// CSVHistoryWriter writes history reports as CSV, one row per version.
type CSVHistoryWriter struct{}

// Write outputs the history report as CSV.
func (w *CSVHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"Path", "Version", "Current", "Commit", "Author", "Date", "SourcePath", "Size", "Mode", "Subject"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, item := range items {
		last := len(item.Versions) - 1
		for i, v := range item.Versions {
			row := []string{
				item.Path,
				fmt.Sprintf("%d", v.Version),
				fmt.Sprintf("%t", i == last),
				v.Commit,
				v.Author,
				v.Date.UTC().Format(reportDateTimeLayout),
				v.Path,
				fmt.Sprintf("%d", v.Size),
				git.FormatFileMode(v.Mode),
				v.Subject,
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return csv.NewWriter(file), file, nil
	}
	return csv.NewWriter(os.Stdout), nil, nil
}
