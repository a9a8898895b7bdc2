package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/pagehistory-go/internal/history"
	"github.com/masmgr/pagehistory-go/internal/pipeline"
)

// BuildCmd returns the build command.
func BuildCmd() *cli.Command {
	flags := append(commonFlags(),
		&cli.StringFlag{
			Name:     "destination",
			Aliases:  []string{"d"},
			Usage:    "Directory the enriched files and their versions are written to",
			Required: true,
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Exit with an error when any file fails to resolve",
		},
	)

	return &cli.Command{
		Name:   "build",
		Usage:  "Copy the source directory, adding every historical version as a file of its own",
		Flags:  flags,
		Action: buildAction,
	}
}

func buildAction(c *cli.Context) error {
	start := time.Now()

	ctx, err := NewCommandContext(c, "")
	if err != nil {
		return err
	}
	defer ctx.Close()

	files, err := pipeline.LoadDir(ctx.Options.SourceDir, nil)
	if err != nil {
		return err
	}
	loaded := len(files)

	color.Green("Building %v into %v", ctx.Options.SourceDir, c.String("destination"))

	var (
		report *history.Report
		runErr error
	)
	pipeline.New(ctx.Options, ctx.Logger).Apply(context.Background(), files, func(r *history.Report, err error) {
		report, runErr = r, err
	})
	if runErr != nil {
		return runErr
	}

	if err := pipeline.WriteDir(c.String("destination"), files); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	fmt.Printf("Files: %d, with history: %d, versions written: %d\n",
		loaded, len(report.Sets), len(files)-loaded)
	for _, f := range report.Failures {
		fmt.Println(color.YellowString("skipped %s: %v", f.Path, f.Err))
	}

	fmt.Fprintf(os.Stderr, "\nCompleted in %s\n", time.Since(start))
	if c.Bool("strict") {
		return report.Err()
	}
	return nil
}
