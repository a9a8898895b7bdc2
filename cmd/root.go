package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/masmgr/pagehistory-go/config"
	"github.com/masmgr/pagehistory-go/internal/git"
	"github.com/masmgr/pagehistory-go/internal/output"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "pagehistory",
		Usage:     "Publish every historical version of files tracked in a Git repository",
		Version:   "1.0.0",
		ArgsUsage: "[repository path]",
		Commands: []*cli.Command{
			ResolveCmd(),
			BuildCmd(),
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log history resolution details to stderr",
			},
		},
		Action: legacyAction,
	}
}

// Common flags shared across commands
func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "repo",
			Aliases: []string{"r"},
			Usage:   "Path to Git repository",
		},
		&cli.StringFlag{
			Name:    "ref",
			Aliases: []string{"b"},
			Usage:   "Branch, tag or commit to read history from (default: HEAD)",
		},
		&cli.StringFlag{
			Name:    "source",
			Aliases: []string{"s"},
			Usage:   "Content directory inside the repository (default: repository path)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "Glob patterns to include (can be specified multiple times)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Glob patterns to exclude (can be specified multiple times)",
		},
		&cli.IntFlag{
			Name:  "max-depth",
			Usage: "Maximum number of commits inspected per file",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "Number of files resolved in parallel",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Per-file resolution timeout, e.g. 30s (0 disables)",
		},
		&cli.StringFlag{
			Name:  "layout",
			Usage: "Layout assigned to historical versions",
		},
		&cli.StringFlag{
			Name:  "rename-detect",
			Usage: "Rename detection mode (auto, off, simple, aggressive)",
		},
		&cli.StringFlag{
			Name:  "default-mode",
			Usage: "Octal file mode used when an object has no loose file, e.g. 0444",
		},
	}
}

// reportFlags are the flags of commands that print a history report.
func reportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (console, json, csv, markdown, ci)",
			Value:   "console",
		},
		&cli.IntFlag{
			Name:    "top",
			Aliases: []string{"n"},
			Usage:   "Number of files to show (0 shows all)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output file path (default: stdout)",
		},
		&cli.BoolFlag{
			Name:  "show-versions",
			Usage: "List every version of every file",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Exit with an error when any file fails to resolve",
		},
	}
}

// getOutputFormat parses the output format flag.
func getOutputFormat(s string) output.OutputFormat {
	switch s {
	case "json":
		return output.FormatJSON
	case "csv":
		return output.FormatCSV
	case "markdown", "md":
		return output.FormatMarkdown
	case "ci", "ndjson":
		return output.FormatCI
	default:
		return output.FormatConsole
	}
}

// parseRenameDetectFlag parses a rename detection mode name.
func parseRenameDetectFlag(s string) (git.RenameDetectMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return git.RenameDetectAuto, nil
	case "off", "false", "none":
		return git.RenameDetectOff, nil
	case "simple", "exact":
		return git.RenameDetectSimple, nil
	case "aggressive", "similarity":
		return git.RenameDetectAggressive, nil
	default:
		return 0, fmt.Errorf("invalid rename detection mode %q (expected auto, off, simple or aggressive)", s)
	}
}

// loadConfig loads configuration from file or defaults.
// CLI flags that were set explicitly override the file.
func loadConfig(c *cli.Context) (*config.Config, error) {
	configPath := c.String("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("repo") {
		cfg.Repository.Path = c.String("repo")
	}
	if c.IsSet("ref") {
		cfg.Repository.Ref = c.String("ref")
	}
	if c.IsSet("source") {
		cfg.Repository.SourceDir = c.String("source")
	}

	// Apply filter overrides from CLI
	if includes := c.StringSlice("include"); len(includes) > 0 {
		cfg.Filters.Include = includes
	}
	if excludes := c.StringSlice("exclude"); len(excludes) > 0 {
		cfg.Filters.Exclude = excludes
	}

	if c.IsSet("max-depth") {
		cfg.History.MaxDepth = c.Int("max-depth")
	}
	if c.IsSet("jobs") {
		cfg.History.Concurrency = c.Int("jobs")
	}
	if c.IsSet("timeout") {
		cfg.History.FileTimeout = c.Duration("timeout").String()
	}
	if c.IsSet("layout") {
		cfg.History.Layout = c.String("layout")
	}
	if c.IsSet("rename-detect") {
		cfg.History.RenameDetect = c.String("rename-detect")
	}
	if c.IsSet("default-mode") {
		cfg.History.DefaultFileMode = c.String("default-mode")
	}

	return cfg, nil
}

// newLogger returns a development logger when --verbose is set and a no-op
// logger otherwise.
func newLogger(c *cli.Context) (*zap.Logger, error) {
	if !c.Bool("verbose") {
		return zap.NewNop(), nil
	}
	return zap.NewDevelopment()
}

// legacyAction handles the default (legacy) command behavior.
// When a repository path is provided as an argument, it runs the resolve command on it.
func legacyAction(c *cli.Context) error {
	// If no args and no subcommand, show help
	if c.NArg() == 0 {
		return cli.ShowAppHelp(c)
	}

	return runResolve(c, c.Args().Get(0), nil)
}
