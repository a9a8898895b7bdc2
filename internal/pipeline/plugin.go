package pipeline

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/masmgr/pagehistory-go/internal/git"
	"github.com/masmgr/pagehistory-go/internal/history"
)

// Options configures a Plugin.
type Options struct {
	// RepoPath locates the repository. Parent directories are searched.
	RepoPath string
	// SourceDir is the directory the registry paths are relative to. It must
	// lie inside the repository worktree; empty means the worktree root.
	SourceDir string
	// Ref names the commit history is read from. Empty means HEAD.
	Ref     string
	Include []string
	Exclude []string
	Resolve history.Options
}

// Plugin adds version history to the files of a registry.
type Plugin struct {
	opts   Options
	logger *zap.Logger
}

// New creates a plugin. A nil logger discards all output.
func New(opts Options, logger *zap.Logger) *Plugin {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plugin{opts: opts, logger: logger}
}

// Run resolves the history of every matching file in files and enriches
// the registry in place.
//
// Failing to open the repository or resolve the reference aborts the run
// and returns an error with no report. Failures of single files are
// collected in the report; the remaining files are still enriched.
func (p *Plugin) Run(ctx context.Context, files Files) (*history.Report, error) {
	matcher, err := NewMatcher(p.opts.Include, p.opts.Exclude)
	if err != nil {
		return nil, err
	}

	repo, err := git.Open(p.opts.RepoPath)
	if err != nil {
		return nil, err
	}
	head, err := repo.ResolveHead(p.opts.Ref)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("opened repository",
		zap.String("root", repo.Root()),
		zap.String("head", head.SHA))

	prefix, err := sourcePrefix(repo.Root(), p.opts.SourceDir)
	if err != nil {
		return nil, err
	}

	keys := matcher.Filter(files)
	byGitPath := make(map[string]string, len(keys))
	gitPaths := make([]string, 0, len(keys))
	for _, key := range keys {
		gp := path.Join(prefix, filepath.ToSlash(key))
		byGitPath[gp] = key
		gitPaths = append(gitPaths, gp)
	}

	resolver := history.NewResolver(repo, head, p.opts.Resolve, p.logger)
	report := resolver.ResolveAll(ctx, gitPaths)

	for _, gp := range report.Paths() {
		set := report.Sets[gp]
		files.Enrich(byGitPath[gp], set)
		p.logger.Debug("enriched file",
			zap.String("file", byGitPath[gp]),
			zap.Int("versions", set.Len()))
	}
	return report, nil
}

// DoneFunc receives the outcome of Apply.
type DoneFunc func(report *history.Report, err error)

// Apply runs the plugin and signals completion through done, which is
// called exactly once after every matched file has been processed.
func (p *Plugin) Apply(ctx context.Context, files Files, done DoneFunc) {
	report, err := p.Run(ctx, files)
	done(report, err)
}

// sourcePrefix returns sourceDir relative to the repository root, in slash
// form, or "" when they are the same directory.
func sourcePrefix(root, sourceDir string) (string, error) {
	if sourceDir == "" || root == "" {
		return "", nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	absSource, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}
	if resolved, err := filepath.EvalSymlinks(absSource); err == nil {
		absSource = resolved
	}

	rel, err := filepath.Rel(absRoot, absSource)
	if err != nil {
		return "", fmt.Errorf("source directory %s: %w", sourceDir, err)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("source directory %s is outside repository %s", sourceDir, root)
	}
	if rel == "." {
		return "", nil
	}
	return rel, nil
}
