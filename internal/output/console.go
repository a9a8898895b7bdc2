package output

import (
	"fmt"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/masmgr/pagehistory-go/internal/git"
)

// ConsoleHistoryWriter writes history reports to the console.
type ConsoleHistoryWriter struct{}

// Write outputs the history report to the console.
func (w *ConsoleHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	color.New(color.FgGreen).Fprintln(out, "File History Results")
	fmt.Fprintf(out, "Repository: %s\n", report.RepoPath)
	fmt.Fprintf(out, "Reference: %s (%s)\n", refLabel(report.Ref), shortSHA(report.Head.SHA))
	fmt.Fprintf(out, "Files resolved: %d, versions: %s\n\n",
		len(report.Items), humanize.Comma(int64(report.TotalVersions())))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "#\tPath\tVersions\tLast Commit\tLast Changed\tAuthor")
	for i, item := range items {
		cur := item.Current()
		path := item.Path
		if item.Renamed() {
			path += " " + color.CyanString("(renamed)")
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n",
			i+1,
			path,
			len(item.Versions),
			shortSHA(cur.Commit),
			humanize.Time(cur.Date),
			cur.Author,
		)

		if options.ShowVersions {
			for _, v := range item.Versions {
				fmt.Fprintf(tw, "\t  v%d %s\t%s\t%s\t%s\t%s\n",
					v.Version,
					git.FormatFileMode(v.Mode),
					humanize.Bytes(uint64(v.Size)),
					shortSHA(v.Commit),
					v.Date.Format(reportDateLayout),
					truncateMessage(v.Subject, 40),
				)
			}
		}
	}

	tw.Flush()

	if len(report.Failures) > 0 {
		fmt.Fprintln(out)
		color.New(color.FgRed).Fprintf(out, "Failed files: %d\n", len(report.Failures))
		for _, f := range report.Failures {
			fmt.Fprintf(out, "  %s: %s\n", f.Path, f.Error)
		}
	}

	return nil
}

// Helper functions

// truncateMessage shortens msg to at most maxLen runes, cutting on a rune
// boundary.
func truncateMessage(msg string, maxLen int) string {
	if utf8.RuneCountInString(msg) <= maxLen {
		return msg
	}
	runes := []rune(msg)
	return string(runes[:maxLen-3]) + "..."
}
