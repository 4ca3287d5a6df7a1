// Package process drives pagination sweeps over report event streams.
package process

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"rptcore/common"
	"rptcore/layout"
	"rptcore/layout/breaks"
	"rptcore/layout/crosstab"
	"rptcore/layout/render"
	"rptcore/report"
)

// Options of a single pagination pass.
type Options struct {
	Target     string
	PageHeight int64
	// DetailMode is used for crosstabs which do not specify their own.
	DetailMode common.DetailMode
	// HeaderRowHeight is used for crosstabs which do not specify their own.
	HeaderRowHeight int64
}

// Result of a single pass. It is owned by the caller, nothing else refers to
// it after Run returns.
type Result struct {
	Target     string
	PageHeight int64
	Height     int64
	Breaks     *breaks.List
	Tree       *render.Tree
}

type crosstabRun struct {
	def       *report.Crosstab
	table     *render.Box
	tracker   *crosstab.Tracker
	details   *crosstab.DetailEmitter[*report.Item]
	rowHeight int64
	placed    bool
}

type sweep struct {
	opts Options
	log  *zap.Logger
	pag  *Paginator
	res  *Result
	ct   *crosstabRun
}

// Run performs one sequential pagination sweep over report events. Any
// error aborts the pass and no partial result is returned. Context is
// checked between events.
func Run(ctx context.Context, rep *report.Report, opts Options, log *zap.Logger) (*Result, error) {
	list := breaks.New()
	pag, err := NewPaginator(list, opts.PageHeight)
	if err != nil {
		return nil, fmt.Errorf("target %q: %w", opts.Target, err)
	}
	s := &sweep{
		opts: opts,
		log:  log,
		pag:  pag,
		res: &Result{
			Target:     opts.Target,
			PageHeight: opts.PageHeight,
			Breaks:     list,
			Tree:       render.NewTree(),
		},
	}

	for _, ev := range rep.Events() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.handle(ev); err != nil {
			return nil, fmt.Errorf("target %q: %s %q: %w", opts.Target, ev.Kind, ev.Cursor.Label, err)
		}
	}
	s.res.Height = pag.Y()

	log.Debug("Pagination sweep complete",
		zap.String("target", opts.Target),
		zap.Int("pages", list.MajorBreakCount()),
		zap.Int("breaks", list.Len()),
		zap.Int("boxes", s.res.Tree.Len()),
		zap.String("height", layout.FormatLength(s.res.Height)))
	return s.res, nil
}

func (s *sweep) handle(ev report.Event) error {
	switch ev.Kind {
	case report.EventBandEmitted:
		return s.band(ev.Band)

	case report.EventGroupStarted:
		if !ev.Cursor.Crosstab {
			s.log.Debug("Group started", zap.Int("group", ev.Cursor.GroupIndex), zap.Int("depth", ev.Cursor.Depth), zap.String("name", ev.Cursor.Label))
			return nil
		}
		if s.ct == nil {
			return layout.Errorf(layout.KindContract, "start column group", "column group %q outside of crosstab", ev.Cursor.Label)
		}
		return s.ct.tracker.StartColumnGroup(ev.Cursor.GroupIndex, ev.Title, ev.Cursor.Label)

	case report.EventGroupFinished:
		if !ev.Cursor.Crosstab {
			return nil
		}
		if s.ct == nil {
			return layout.Errorf(layout.KindContract, "finish column group", "column group %q outside of crosstab", ev.Cursor.Label)
		}
		return s.ct.tracker.FinishColumnGroup(ev.Cursor.GroupIndex)

	case report.EventCrosstabStarted:
		return s.startCrosstab(ev.Crosstab)

	case report.EventCrosstabFinished:
		return s.finishCrosstab()

	case report.EventItemsStarted:
		if err := s.closeHeader(); err != nil {
			return err
		}
		s.ct.details.Start()
		return nil

	case report.EventItemsAdvanced:
		if s.ct == nil {
			return layout.Errorf(layout.KindContract, "advance items", "items outside of crosstab")
		}
		return s.items(s.ct.details.Advance(ev.Item))

	case report.EventItemsFinished:
		if s.ct == nil {
			return layout.Errorf(layout.KindContract, "finish items", "items outside of crosstab")
		}
		return s.items(s.ct.details.Finish())

	case report.EventSummary:
		if s.ct == nil {
			return layout.Errorf(layout.KindContract, "summary row", "summary outside of crosstab")
		}
		return s.ct.details.Summary()

	default:
		s.log.Warn("Unexpected report event, ignoring", zap.Stringer("event", ev.Kind))
		return nil
	}
}

func (s *sweep) band(b *report.Band) error {
	if b.PagebreakBefore {
		if err := s.pag.BreakPage(); err != nil {
			return err
		}
	}
	if b.ColumnBreak {
		if err := s.pag.BreakColumn(); err != nil {
			return err
		}
	}
	y, err := s.pag.Place(b.Height)
	if err != nil {
		return err
	}
	_, err = s.res.Tree.Add(s.res.Tree.Root().ID, &render.Box{Kind: render.KindBand, Name: b.Name, Y: y, Height: b.Height})
	return err
}

func (s *sweep) startCrosstab(def *report.Crosstab) error {
	if s.ct != nil {
		return layout.Errorf(layout.KindContract, "start crosstab", "crosstab %q is nested in %q", def.Name, s.ct.def.Name)
	}
	mode := s.opts.DetailMode
	if def.DetailMode != nil {
		mode = *def.DetailMode
	}
	details, err := crosstab.NewDetailEmitter[*report.Item](mode)
	if err != nil {
		return err
	}
	rowHeight := def.HeaderHeight
	if rowHeight == 0 {
		rowHeight = s.opts.HeaderRowHeight
	}

	table := &render.Box{Kind: render.KindTable, Name: def.Name, Y: s.pag.Y()}
	id, err := s.res.Tree.Add(s.res.Tree.Root().ID, table)
	if err != nil {
		return err
	}
	s.ct = &crosstabRun{
		def:       def,
		table:     table,
		tracker:   crosstab.NewTracker(s.res.Tree, id, s.log.Named("crosstab")),
		details:   details,
		rowHeight: rowHeight,
	}
	return nil
}

// closeHeader freezes header spans and places header rows as one block.
func (s *sweep) closeHeader() error {
	ct := s.ct
	if ct == nil {
		return layout.Errorf(layout.KindContract, "close header", "no crosstab is being processed")
	}
	if ct.tracker.State() == crosstab.StateHeaderClosed {
		return nil
	}
	ct.tracker.CloseHeader()

	rows := ct.table.Children
	if len(rows) == 0 {
		return nil
	}
	y, err := s.place(int64(len(rows)) * ct.rowHeight)
	if err != nil {
		return err
	}
	for i, row := range rows {
		row.Y, row.Height = y+int64(i)*ct.rowHeight, ct.rowHeight
	}
	return nil
}

func (s *sweep) place(height int64) (int64, error) {
	y, err := s.pag.Place(height)
	if err != nil {
		return 0, err
	}
	if !s.ct.placed {
		s.ct.placed = true
		s.ct.table.Y = y
	}
	return y, nil
}

func (s *sweep) items(items []*report.Item) error {
	for _, it := range items {
		y, err := s.place(it.Height)
		if err != nil {
			return err
		}
		if _, err := s.res.Tree.Add(s.ct.table.ID, &render.Box{Kind: render.KindRow, Name: it.Label, Y: y, Height: it.Height}); err != nil {
			return err
		}
	}
	return nil
}

func (s *sweep) finishCrosstab() error {
	if err := s.closeHeader(); err != nil {
		return err
	}
	ct := s.ct
	if !ct.placed {
		ct.table.Y = s.pag.Y()
	}
	ct.table.Height = s.pag.Y() - ct.table.Y
	s.log.Debug("Crosstab complete",
		zap.String("name", ct.def.Name),
		zap.Int("columns", ct.tracker.Columns()),
		zap.Stringer("detail_mode", ct.details.Mode()))
	ct.tracker.Reset()
	s.ct = nil
	return nil
}
