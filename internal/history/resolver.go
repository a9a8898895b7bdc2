package history

import (
	"context"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/masmgr/pagehistory-go/internal/content"
	"github.com/masmgr/pagehistory-go/internal/git"
)

// DefaultConcurrency is the number of files resolved in parallel when
// Options.Concurrency is not set.
const DefaultConcurrency = 4

// Options configures a Resolver.
type Options struct {
	MaxDepth        int
	Concurrency     int
	BlobConcurrency int
	// FileTimeout bounds the resolution of one file. Zero disables it.
	FileTimeout  time.Duration
	Layout       string
	RenameDetect git.RenameDetectMode
	DefaultMode  os.FileMode
	Split        content.SplitFunc
}

// Resolver resolves the version sets of files at one starting commit.
type Resolver struct {
	repo   git.HistorySource
	head   git.CommitInfo
	opts   Options
	logger *zap.Logger
}

// NewResolver creates a resolver walking repo backwards from head.
// A nil logger discards all output.
func NewResolver(repo git.HistorySource, head git.CommitInfo, opts Options, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.DefaultMode == 0 {
		opts.DefaultMode = git.DefaultObjectFileMode
	}
	return &Resolver{repo: repo, head: head, opts: opts, logger: logger}
}

// Head returns the commit the resolver starts from.
func (r *Resolver) Head() git.CommitInfo {
	return r.head
}

// ResolveFile builds the version set of one file. path is relative to the
// repository root.
func (r *Resolver) ResolveFile(ctx context.Context, path string) (*FileVersionSet, error) {
	if r.opts.FileTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.FileTimeout)
		defer cancel()
	}

	log := r.logger.With(zap.String("path", path))

	raws, err := r.repo.FileHistory(ctx, r.head.SHA, path, git.HistoryOptions{
		MaxDepth:        r.opts.MaxDepth,
		BlobConcurrency: r.opts.BlobConcurrency,
		RenameDetect:    r.opts.RenameDetect,
		OnSkip: func(e git.HistoryEntry, err error) {
			log.Debug("skipping history entry",
				zap.String("commit", e.Commit.SHA),
				zap.String("entryPath", e.Path),
				zap.Error(err))
		},
		OnWalkError: func(sha string, err error) {
			log.Debug("skipping unreadable commit", zap.String("commit", sha), zap.Error(err))
		},
	})
	if err != nil {
		return nil, err
	}
	log.Debug("history resolved", zap.Int("versions", len(raws)))

	parser := Parser{
		Split:       r.opts.Split,
		ModeLookup:  r.repo.ObjectFileMode,
		DefaultMode: r.opts.DefaultMode,
		OnModeFallback: func(hash string, err error) {
			log.Debug("using default file mode", zap.String("blob", hash), zap.Error(err))
		},
	}
	return Assemble(path, raws, parser, r.opts.Layout)
}

// ResolveAll resolves every path with bounded concurrency. A failing path is
// recorded in the report and never stops the others.
func (r *Resolver) ResolveAll(ctx context.Context, paths []string) *Report {
	report := &Report{
		Head: r.head,
		Sets: make(map[string]*FileVersionSet, len(paths)),
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(r.opts.Concurrency)

	for _, p := range paths {
		g.Go(func() error {
			set, err := r.ResolveFile(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				r.logger.Warn("file history failed", zap.String("path", p), zap.Error(err))
				report.Failures = append(report.Failures, FileFailure{Path: p, Err: err})
				return nil
			}
			r.logger.Debug("file versions", zap.String("path", p), zap.Int("count", set.Len()))
			report.Sets[p] = set
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(report.Failures, func(i, j int) bool {
		return report.Failures[i].Path < report.Failures[j].Path
	})
	return report
}
