// Package report loads report definitions and flattens them into the event
// stream driving a pagination sweep.
package report

import (
	"fmt"

	"rptcore/common"
	"rptcore/layout"
	"rptcore/utils/debug"
)

// Node is an element of report body: *Band, *Group or *Crosstab.
type Node interface {
	node()
}

// Band is a block of fixed height. Bands are the only content which takes
// vertical space outside of crosstabs.
type Band struct {
	Name            string
	Height          int64
	PagebreakBefore bool
	ColumnBreak     bool
}

// Group scopes nested bands and groups. Index is the depth first ordinal of
// the group in report.
type Group struct {
	Name     string
	Index    int
	Children []Node
}

// Item is a single crosstab detail row.
type Item struct {
	Label  string
	Height int64
}

// Value is a single column group value with nested column values and detail
// items.
type Value struct {
	Label     string
	Columns   []*Value
	Items     []Item
	Summaries []Item
}

// Level describes one column group axis level.
type Level struct {
	Group string
	Title string
}

// Crosstab is a table with incrementally discovered column header.
type Crosstab struct {
	Name string
	// DetailMode is nil when definition does not specify it and run
	// options decide.
	DetailMode   *common.DetailMode
	HeaderHeight int64
	Levels       []Level
	Columns      []*Value
}

func (*Band) node()     {}
func (*Group) node()    {}
func (*Crosstab) node() {}

// Report is a loaded report definition. It is never modified after loading
// so it could be shared by concurrent pagination passes.
type Report struct {
	Name     string
	Children []Node

	groups int
}

// Groups returns number of regular groups in report.
func (r *Report) Groups() int {
	return r.groups
}

// String dumps definition for debugging.
func (r *Report) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "report %q", r.Name)
	dumpNodes(tw, 1, r.Children)
	return tw.String()
}

func dumpNodes(tw *debug.TreeWriter, depth int, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Band:
			tw.Tagged(depth, fmt.Sprintf("band %q height %s", n.Name, layout.FormatLength(n.Height)),
				debug.Tag(n.PagebreakBefore, "pagebreak-before"),
				debug.Tag(n.ColumnBreak, "column-break"))
		case *Group:
			tw.Line(depth, "group %q #%d", n.Name, n.Index)
			dumpNodes(tw, depth+1, n.Children)
		case *Crosstab:
			mode := "default"
			if n.DetailMode != nil {
				mode = n.DetailMode.String()
			}
			tw.Line(depth, "crosstab %q detail-mode %s levels %d", n.Name, mode, len(n.Levels))
			dumpValues(tw, depth+1, n.Columns)
		default:
			panic(fmt.Sprintf("unexpected report node %T", n))
		}
	}
}

func dumpValues(tw *debug.TreeWriter, depth int, values []*Value) {
	for _, v := range values {
		tw.Line(depth, "value %q items %d", v.Label, len(v.Items))
		dumpValues(tw, depth+1, v.Columns)
	}
}
