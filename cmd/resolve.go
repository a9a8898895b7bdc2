package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/masmgr/pagehistory-go/internal/pipeline"
)

// ResolveCmd returns the resolve command.
func ResolveCmd() *cli.Command {
	return &cli.Command{
		Name:      "resolve",
		Aliases:   []string{"r"},
		Usage:     "Report the version history of matching files",
		ArgsUsage: "[file ...]",
		Flags:     append(commonFlags(), reportFlags()...),
		Action: func(c *cli.Context) error {
			return runResolve(c, "", c.Args().Slice())
		},
	}
}

// runResolve resolves the files given in paths, relative to the source
// directory, or every file of the source directory when paths is empty.
func runResolve(c *cli.Context, repoOverride string, paths []string) error {
	start := time.Now()

	ctx, err := NewCommandContext(c, repoOverride)
	if err != nil {
		return err
	}
	defer ctx.Close()

	files, err := registry(ctx.Options.SourceDir, paths)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, color.GreenString("Resolving history in %v", ctx.Options.RepoPath))

	report, err := pipeline.New(ctx.Options, ctx.Logger).Run(context.Background(), files)
	if err != nil {
		return err
	}

	if err := writeHistoryReport(c, ctx, report); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nCompleted in %s\n", time.Since(start))
	if c.Bool("strict") {
		return report.Err()
	}
	return nil
}

func registry(sourceDir string, paths []string) (pipeline.Files, error) {
	if len(paths) == 0 {
		return pipeline.ListDir(sourceDir)
	}
	files := make(pipeline.Files, len(paths))
	for _, p := range paths {
		files[filepath.ToSlash(filepath.Clean(p))] = &pipeline.File{}
	}
	return files, nil
}
