package process

import (
	"context"
	"fmt"
	"slices"

	"github.com/maruel/natural"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rptcore/report"
)

// Target is a single output destination with its own page geometry.
type Target struct {
	Name       string
	PageHeight int64
}

// RunTargets runs one independent pass per target, at most workers at a
// time. Every pass owns its break list and render tree. First failure
// cancels remaining passes. Results are ordered by target name.
func RunTargets(ctx context.Context, rep *report.Report, targets []Target, workers int, opts Options, log *zap.Logger) ([]*Result, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no output targets requested")
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]*Result, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, t := range targets {
		g.Go(func() error {
			o := opts
			o.Target, o.PageHeight = t.Name, t.PageHeight
			res, err := Run(gctx, rep, o, log.Named(t.Name))
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortStableFunc(results, func(a, b *Result) int {
		switch {
		case natural.Less(a.Target, b.Target):
			return -1
		case natural.Less(b.Target, a.Target):
			return 1
		default:
			return 0
		}
	})
	return results, nil
}
