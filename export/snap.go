package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"rptcore/layout"
	"rptcore/layout/render"
	"rptcore/process"
	"rptcore/report"
	"rptcore/state"
)

// SnapRequest describes single snap query.
type SnapRequest struct {
	Position int64
	// Report is optional path to report definition, when present its
	// placed boxes contribute element positions.
	Report string
	Target string
	// Owner names box being dragged, its own edges are preferred over closer
	// positions.
	Owner string
	// Guides are added to configured ones.
	Guides []int64
}

// Snap is "snap" subcommand action.
func Snap(ctx context.Context, cmd *cli.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Named("snap")

	req := SnapRequest{
		Position: layout.FromPoints(cmd.Float64("position")),
		Report:   cmd.String("report"),
		Target:   cmd.String("target"),
		Owner:    cmd.String("owner"),
	}
	for _, g := range cmd.Float64Slice("guide") {
		req.Guides = append(req.Guides, layout.FromPoints(g))
	}
	if cmd.IsSet("grid") {
		env.Cfg.Snap.Grid = cmd.Float64("grid")
	}
	if len(req.Report) > 0 {
		p, err := filepath.Abs(req.Report)
		if err != nil {
			return err
		}
		req.Report = p
	}

	snapped, err := snapPosition(ctx, req, log)
	if err != nil {
		return err
	}
	log.Debug("Position snapped",
		zap.String("from", layout.FormatLength(req.Position)),
		zap.String("to", layout.FormatLength(snapped)))

	_, err = fmt.Fprintln(cmd.Root().Writer, layout.FormatLength(snapped))
	return err
}

// snapPosition builds snap model from configuration and optional report
// layout and resolves requested position.
func snapPosition(ctx context.Context, req SnapRequest, log *zap.Logger) (int64, error) {
	env := state.EnvFromContext(ctx)
	conf := env.Cfg.Snap

	opts := process.SnapOptions{
		Grid:            layout.FromPoints(conf.Grid),
		Threshold:       layout.FromPoints(conf.Threshold),
		Guides:          append(conf.GuidesMicro(), req.Guides...),
		PageGuides:      conf.PageGuides,
		GridEnabled:     conf.EnableGrid,
		ElementsEnabled: conf.EnableElements,
		GuidesEnabled:   conf.EnableGuides,
	}

	if len(req.Report) == 0 {
		if len(req.Owner) > 0 {
			return 0, errors.New("owner requires report definition")
		}
		return process.NewSnapModel(nil, opts).Snap(req.Position, nil), nil
	}

	rep, err := report.LoadFile(req.Report, log)
	if err != nil {
		return 0, err
	}
	targets, err := selectTargets(env.Cfg.Layout.Targets, nonEmpty(req.Target))
	if err != nil {
		return 0, err
	}
	res, err := process.Run(ctx, rep, process.Options{
		Target:          targets[0].Name,
		PageHeight:      targets[0].PageHeight,
		DetailMode:      env.Cfg.Crosstab.DetailMode,
		HeaderRowHeight: layout.FromPoints(env.Cfg.Layout.HeaderRowHeight),
	}, log)
	if err != nil {
		return 0, err
	}

	var owner *render.Box
	if len(req.Owner) > 0 {
		if owner = findBox(res.Tree, req.Owner); owner == nil {
			return 0, fmt.Errorf("box %q not found in target %q", req.Owner, res.Target)
		}
	}
	return process.NewSnapModel(res, opts).Snap(req.Position, owner), nil
}

func nonEmpty(s string) []string {
	if len(s) == 0 {
		return nil
	}
	return []string{s}
}

// findBox returns first box with name in document order.
func findBox(tree *render.Tree, name string) *render.Box {
	var found *render.Box
	tree.Walk(tree.Root(), func(b *render.Box, _ int) bool {
		if found != nil {
			return false
		}
		if b.Kind != render.KindRoot && b.Name == name {
			found = b
			return false
		}
		return true
	})
	return found
}
