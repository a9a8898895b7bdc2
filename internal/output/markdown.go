package output

import (
	"fmt"
	"strings"
)

// MarkdownHistoryWriter writes history reports as Markdown.
type MarkdownHistoryWriter struct{}

// Write outputs the history report as Markdown.
func (w *MarkdownHistoryWriter) Write(report *HistoryReport, options OutputOptions) error {
	items := limitTop(report.Items, options.Top)

	out, file, err := openOutputWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	// Header
	fmt.Fprintln(out, "# File History Results")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "**Repository:** %s\n\n", report.RepoPath)
	fmt.Fprintf(out, "**Reference:** %s (`%s`)\n\n", escapeMarkdown(refLabel(report.Ref)), shortSHA(report.Head.SHA))
	fmt.Fprintf(out, "**Total Files:** %d, **Total Versions:** %d\n\n", len(report.Items), report.TotalVersions())

	// Table header
	fmt.Fprintln(out, "## Files")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "| # | Path | Versions | Last Commit | Last Changed | Author |")
	fmt.Fprintln(out, "|---|------|----------|-------------|--------------|--------|")

	// Table rows
	for i, item := range items {
		cur := item.Current()
		fmt.Fprintf(out, "| %d | `%s` | %d | `%s` | %s | %s |\n",
			i+1, item.Path, len(item.Versions), shortSHA(cur.Commit),
			cur.Date.Format(reportDateLayout), escapeMarkdown(cur.Author))
	}

	if options.ShowVersions {
		for _, item := range items {
			fmt.Fprintln(out)
			fmt.Fprintf(out, "### `%s`\n\n", item.Path)
			fmt.Fprintln(out, "| Version | Commit | Date | Author | Path | Subject |")
			fmt.Fprintln(out, "|---------|--------|------|--------|------|---------|")
			for _, v := range item.Versions {
				fmt.Fprintf(out, "| v%d | `%s` | %s | %s | `%s` | %s |\n",
					v.Version, shortSHA(v.Commit), v.Date.Format(reportDateLayout),
					escapeMarkdown(v.Author), v.Path, escapeMarkdown(v.Subject))
			}
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "## Failures")
		fmt.Fprintln(out)
		for _, f := range report.Failures {
			fmt.Fprintf(out, "- `%s`: %s\n", f.Path, escapeMarkdown(f.Error))
		}
	}

	return nil
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"|", "\\|",
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
