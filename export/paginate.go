// Package export connects report loading, pagination and output of listings
// to the command line.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rptcore/common"
	"rptcore/config"
	"rptcore/layout"
	"rptcore/process"
	"rptcore/report"
	"rptcore/state"
)

// Paginate is "paginate" subcommand action.
func Paginate(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Named("paginate")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no report definition has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if mode := cmd.String("detail-mode"); len(mode) > 0 {
		dm, err := common.ParseDetailMode(mode)
		if err != nil {
			return fmt.Errorf("unable to use detail mode: %w", err)
		}
		env.Cfg.Crosstab.DetailMode = dm
	}
	env.Overwrite = cmd.Bool("overwrite")

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return paginate(ctx, src, dst, cmd.StringSlice("target"), log)
}

// paginate handles the core logic independently of CLI framework: loads
// report definition, lays it out for every selected target and writes
// listings to dst.
func paginate(ctx context.Context, src, dst string, names []string, log *zap.Logger) error {
	env := state.EnvFromContext(ctx)

	rep, err := report.LoadFile(src, log)
	if err != nil {
		return err
	}
	env.Rpt.Store("source/"+filepath.Base(src), src)

	targets, err := selectTargets(env.Cfg.Layout.Targets, names)
	if err != nil {
		return err
	}

	workers := env.Cfg.Layout.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}
	opts := process.Options{
		DetailMode:      env.Cfg.Crosstab.DetailMode,
		HeaderRowHeight: layout.FromPoints(env.Cfg.Layout.HeaderRowHeight),
	}

	results, err := process.RunTargets(ctx, rep, targets, workers, opts, log)
	if err != nil {
		return err
	}

	// nothing is written until every listing has a place to go
	outputs, err := planOutputs(results, rep.Name, src, dst, env)
	if err != nil {
		return err
	}
	for i, res := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeListing(res, outputs[i], env, log); err != nil {
			return fmt.Errorf("target %q: %w", res.Target, err)
		}
	}
	return nil
}

// selectTargets returns configured targets restricted to requested names,
// in configuration order. No names means all targets.
func selectTargets(conf []config.TargetConfig, names []string) ([]process.Target, error) {
	for _, n := range names {
		if !slices.ContainsFunc(conf, func(t config.TargetConfig) bool { return t.Name == n }) {
			return nil, fmt.Errorf("unknown target requested: %q", n)
		}
	}

	out := make([]process.Target, 0, len(conf))
	for _, t := range conf {
		if len(names) > 0 && !slices.Contains(names, t.Name) {
			continue
		}
		out = append(out, process.Target{Name: t.Name, PageHeight: t.PageHeightMicro()})
	}
	return out, nil
}

// planOutputs resolves listing path for every result. Two targets resolving
// to the same file or an existing file without overwrite permission fail the
// whole run.
func planOutputs(results []*process.Result, reportName, src, dst string, env *state.LocalEnv) ([]string, error) {
	outputs := make([]string, 0, len(results))
	claimed := make(map[string]string, len(results))
	for _, res := range results {
		outputName := buildOutputPath(res, reportName, src, dst, env)
		if prev, ok := claimed[outputName]; ok {
			return nil, fmt.Errorf("targets %q and %q resolve to the same output file %s, output name template must include {{ .Target }}",
				prev, res.Target, outputName)
		}
		claimed[outputName] = res.Target

		if _, err := os.Stat(outputName); err == nil {
			if !env.Overwrite {
				return nil, fmt.Errorf("target %q: output file already exists: %s", res.Target, outputName)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("target %q: %w", res.Target, err)
		}
		outputs = append(outputs, outputName)
	}
	return outputs, nil
}

func writeListing(res *process.Result, outputName string, env *state.LocalEnv, log *zap.Logger) error {
	if _, err := os.Stat(outputName); err == nil {
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	listing := []byte(res.Listing())
	if err := os.WriteFile(outputName, listing, 0644); err != nil {
		return fmt.Errorf("unable to write listing: %w", err)
	}
	env.Rpt.StoreData("targets/"+config.CleanFileName(res.Target)+listingExt, listing)

	log.Info("Listing written",
		zap.String("target", res.Target),
		zap.Int("pages", len(res.Pages())),
		zap.Int("split", len(res.Split())),
		zap.String("to", outputName))
	return nil
}
