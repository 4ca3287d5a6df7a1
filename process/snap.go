package process

import (
	"rptcore/layout/render"
	"rptcore/layout/snap"
)

// SnapOptions select sources of vertical snap positions.
type SnapOptions struct {
	Grid      int64
	Threshold int64
	Guides    []int64
	// PageGuides adds every page start of the result as a guide.
	PageGuides bool

	GridEnabled     bool
	ElementsEnabled bool
	GuidesEnabled   bool
}

// NewSnapModel builds vertical snap model over placed boxes of result. Box
// edges become element positions owned by the box. Result may be nil.
func NewSnapModel(res *Result, opts SnapOptions) *snap.Full[render.Box] {
	m := snap.NewFull[render.Box](opts.Grid)
	m.GridEnabled, m.ElementsEnabled, m.GuidesEnabled = opts.GridEnabled, opts.ElementsEnabled, opts.GuidesEnabled
	m.Threshold = opts.Threshold

	for _, g := range opts.Guides {
		m.Guides.Add(g, nil)
	}
	if res == nil {
		return m
	}
	if opts.PageGuides {
		for _, p := range res.Pages() {
			m.Guides.Add(p.Start, nil)
		}
	}
	res.Tree.Walk(res.Tree.Root(), func(b *render.Box, _ int) bool {
		if b.Kind != render.KindRoot && b.Height > 0 {
			m.Elements.AddElement(b.Y, b.Height, b)
		}
		return true
	})
	return m
}
