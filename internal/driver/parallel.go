package driver

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Summary aggregates the results of Run.
type Summary struct {
	Files   int
	Cached  int
	Changed int
	Written int
	Errors  int
	Fixable int
	Elapsed time.Duration
}

// Run processes files concurrently, at most opts.Jobs at a time. Results
// keep the order of files. Each file's passes run sequentially.
func Run(ctx context.Context, files []string, opts Options) ([]*FileResult, Summary, error) {
	opts.normalize()
	started := time.Now()
	results := make([]*FileResult, len(files))
	if len(files) == 0 {
		return results, Summary{}, nil
	}
	for _, path := range files {
		emit(opts.Progress, Event{File: path, Status: StatusQueued})
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			res, err := ProcessFile(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	sum := Summary{Files: len(files), Elapsed: time.Since(started)}
	for _, r := range results {
		if r.Cached {
			sum.Cached++
		}
		if r.Changed() {
			sum.Changed++
		}
		if r.Written {
			sum.Written++
		}
		if r.Bag.HasErrors() {
			sum.Errors++
		}
		sum.Fixable += r.Bag.CountFixable()
	}
	opts.Logger.Info("run finished",
		zap.Stringer("mode", opts.Mode),
		zap.Int("files", sum.Files),
		zap.Int("cached", sum.Cached),
		zap.Int("changed", sum.Changed),
		zap.Duration("elapsed", sum.Elapsed),
	)
	return results, sum, nil
}
