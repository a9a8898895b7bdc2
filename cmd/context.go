package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/pagehistory-go/config"
	"github.com/masmgr/pagehistory-go/internal/git"
	"github.com/masmgr/pagehistory-go/internal/history"
	"github.com/masmgr/pagehistory-go/internal/output"
	"github.com/masmgr/pagehistory-go/internal/pipeline"
)

// CommandContext holds common state for command execution.
// It encapsulates the shared setup logic across all commands.
type CommandContext struct {
	Config  *config.Config
	Logger  *zap.Logger
	Options pipeline.Options
}

// NewCommandContext creates a context from CLI flags.
// repoOverride, when not empty, replaces the configured repository path.
func NewCommandContext(c *cli.Context, repoOverride string) (*CommandContext, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if repoOverride != "" {
		cfg.Repository.Path = repoOverride
	}

	opts, err := pipelineOptions(cfg)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(c)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &CommandContext{Config: cfg, Logger: logger, Options: opts}, nil
}

// pipelineOptions translates configuration into plugin options. The source
// directory defaults to the repository path so registry keys and repository
// paths agree.
func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	mode, err := git.ParseFileMode(cfg.History.DefaultFileMode)
	if err != nil {
		return pipeline.Options{}, err
	}
	renames, err := parseRenameDetectFlag(cfg.History.RenameDetect)
	if err != nil {
		return pipeline.Options{}, err
	}
	timeout, err := cfg.History.Timeout()
	if err != nil {
		return pipeline.Options{}, err
	}

	repoPath := cfg.Repository.Path
	if repoPath == "" {
		repoPath = "."
	}
	sourceDir := cfg.Repository.SourceDir
	if sourceDir == "" {
		sourceDir = repoPath
	}

	return pipeline.Options{
		RepoPath:  repoPath,
		SourceDir: sourceDir,
		Ref:       cfg.Repository.Ref,
		Include:   cfg.Filters.Include,
		Exclude:   cfg.Filters.Exclude,
		Resolve: history.Options{
			MaxDepth:        cfg.History.MaxDepth,
			Concurrency:     cfg.History.Concurrency,
			BlobConcurrency: cfg.History.BlobConcurrency,
			FileTimeout:     timeout,
			Layout:          cfg.History.Layout,
			RenameDetect:    renames,
			DefaultMode:     mode,
		},
	}, nil
}

// Close flushes the logger.
func (ctx *CommandContext) Close() {
	_ = ctx.Logger.Sync()
}

// OutputOptions creates OutputOptions from CLI flags.
func OutputOptions(c *cli.Context) output.OutputOptions {
	return output.OutputOptions{
		Format:       getOutputFormat(c.String("format")),
		Top:          c.Int("top"),
		OutputPath:   c.String("output"),
		ShowVersions: c.Bool("show-versions"),
	}
}
