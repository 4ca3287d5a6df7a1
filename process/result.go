package process

import (
	"fmt"

	"rptcore/layout"
	"rptcore/layout/render"
	"rptcore/utils/debug"
)

// Page is a slice of logical coordinate space between two major breaks.
type Page struct {
	Number int
	Start  int64
	End    int64
	// Shift is unused remainder of the previous page, content of this page
	// is physically moved down by that much.
	Shift int64
}

// Pages enumerates pages of the result in order.
func (r *Result) Pages() []Page {
	var pages []Page
	for _, e := range r.Breaks.Entries() {
		if !e.Major {
			continue
		}
		end := r.Breaks.FindPageEndForPageStartPosition(e.Position)
		if end == e.Position {
			end = max(r.Height, e.Position)
		}
		pages = append(pages, Page{Number: len(pages) + 1, Start: e.Position, End: end, Shift: e.AfterShift})
	}
	return pages
}

// PageOf returns page number holding logical position.
func (r *Result) PageOf(position int64) int {
	start := r.Breaks.FindPreviousBreakPosition(position)
	if !r.Breaks.IsPageStart(start) {
		start = r.Breaks.FindPageStartPositionForPageEndPosition(start)
	}
	for _, p := range r.Pages() {
		if p.Start == start {
			return p.Number
		}
	}
	return 1
}

// Split returns placed boxes which cross a page boundary.
func (r *Result) Split() []*render.Box {
	var out []*render.Box
	r.Tree.Walk(r.Tree.Root(), func(b *render.Box, _ int) bool {
		if b.Kind == render.KindBand || b.Kind == render.KindRow {
			if r.Breaks.IsCrossingPagebreak(b.Y, b.Height, 0) {
				out = append(out, b)
			}
		}
		return true
	})
	return out
}

// Listing renders human readable pagination report of the pass.
func (r *Result) Listing() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "target %q page height %s content height %s", r.Target, layout.FormatLength(r.PageHeight), layout.FormatLength(r.Height))

	pages := r.Pages()
	tw.Line(0, "pages: %d", len(pages))
	for _, p := range pages {
		tw.Tagged(1, fmt.Sprintf("page %d [%s, %s)", p.Number, layout.FormatLength(p.Start), layout.FormatLength(p.End)),
			debug.Tag(p.Shift > 0, "shift "+layout.FormatLength(p.Shift)))
	}

	tw.Line(0, "boxes:")
	r.Tree.Walk(r.Tree.Root(), func(b *render.Box, depth int) bool {
		switch b.Kind {
		case render.KindRoot:
		case render.KindCell, render.KindTitle:
			tw.Line(depth, "%s %q span %dx%d", b.Kind, b.Name, b.RowSpan, b.ColSpan)
		default:
			tw.Tagged(depth, fmt.Sprintf("%s %q at %s height %s page %d", b.Kind, b.Name, layout.FormatLength(b.Y), layout.FormatLength(b.Height), r.PageOf(b.Y)),
				debug.Tag(r.Breaks.IsCrossingPagebreak(b.Y, b.Height, 0), "(split)"))
		}
		return true
	})
	return tw.String()
}
