package cmd

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/masmgr/pagehistory-go/internal/history"
	"github.com/masmgr/pagehistory-go/internal/output"
)

func writeHistoryReport(c *cli.Context, ctx *CommandContext, report *history.Report) error {
	opts := OutputOptions(c)
	writer := output.NewHistoryReportWriter(opts.Format)
	out := output.NewHistoryReport(ctx.Options.RepoPath, ctx.Options.Ref, report, time.Now())
	return writer.Write(out, opts)
}
