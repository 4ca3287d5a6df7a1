package report

import (
	"fmt"
)

// EventKind enumerates report processing events.
type EventKind int

const (
	EventGroupStarted EventKind = iota
	EventGroupFinished
	EventCrosstabStarted
	EventCrosstabFinished
	EventItemsStarted
	EventItemsAdvanced
	EventItemsFinished
	EventSummary
	EventBandEmitted
)

var eventNames = [...]string{
	EventGroupStarted:     "group-started",
	EventGroupFinished:    "group-finished",
	EventCrosstabStarted:  "crosstab-started",
	EventCrosstabFinished: "crosstab-finished",
	EventItemsStarted:     "items-started",
	EventItemsAdvanced:    "items-advanced",
	EventItemsFinished:    "items-finished",
	EventSummary:          "summary",
	EventBandEmitted:      "band-emitted",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// Cursor is report state at the moment event fires.
//
// For regular groups GroupIndex is the depth first ordinal of the group in
// report. For crosstab column groups it is the column axis level, which is
// what crosstab header layout works with.
type Cursor struct {
	GroupIndex int
	Depth      int
	Crosstab   bool
	Label      string
}

// Event is a single step of report processing. Only fields relevant for the
// Kind are set.
type Event struct {
	Kind     EventKind
	Cursor   Cursor
	Title    string
	Band     *Band
	Item     *Item
	Crosstab *Crosstab
}

// Events flattens definition into event sequence of a single processing
// sweep. Every call produces a fresh slice, report itself is not changed.
//
// Crosstab produces its whole column header first (one group start and
// finish per column value, depth first), then detail items for every column
// value which has them.
func (r *Report) Events() []Event {
	var out []Event
	return r.appendNodes(out, r.Children, 0)
}

func (r *Report) appendNodes(out []Event, nodes []Node, depth int) []Event {
	for _, n := range nodes {
		switch n := n.(type) {
		case *Band:
			out = append(out, Event{Kind: EventBandEmitted, Cursor: Cursor{Depth: depth, Label: n.Name}, Band: n})
		case *Group:
			cur := Cursor{GroupIndex: n.Index, Depth: depth, Label: n.Name}
			out = append(out, Event{Kind: EventGroupStarted, Cursor: cur})
			out = r.appendNodes(out, n.Children, depth+1)
			out = append(out, Event{Kind: EventGroupFinished, Cursor: cur})
		case *Crosstab:
			cur := Cursor{Depth: depth, Crosstab: true, Label: n.Name}
			out = append(out, Event{Kind: EventCrosstabStarted, Cursor: cur, Crosstab: n})
			out = appendHeader(out, n, n.Columns, 0, depth+1)
			out = appendItems(out, n.Columns, 0, depth+1)
			out = append(out, Event{Kind: EventCrosstabFinished, Cursor: cur, Crosstab: n})
		}
	}
	return out
}

func appendHeader(out []Event, ct *Crosstab, values []*Value, level, depth int) []Event {
	for _, v := range values {
		cur := Cursor{GroupIndex: level, Depth: depth, Crosstab: true, Label: v.Label}
		out = append(out, Event{Kind: EventGroupStarted, Cursor: cur, Title: ct.Levels[level].Title})
		out = appendHeader(out, ct, v.Columns, level+1, depth+1)
		out = append(out, Event{Kind: EventGroupFinished, Cursor: cur})
	}
	return out
}

func appendItems(out []Event, values []*Value, level, depth int) []Event {
	for _, v := range values {
		if len(v.Items) > 0 || len(v.Summaries) > 0 {
			cur := Cursor{GroupIndex: level, Depth: depth, Crosstab: true, Label: v.Label}
			out = append(out, Event{Kind: EventItemsStarted, Cursor: cur})
			for i := range v.Items {
				out = append(out, Event{Kind: EventItemsAdvanced, Cursor: cur, Item: &v.Items[i]})
			}
			for i := range v.Summaries {
				out = append(out, Event{Kind: EventSummary, Cursor: cur, Item: &v.Summaries[i]})
			}
			out = append(out, Event{Kind: EventItemsFinished, Cursor: cur})
		}
		out = appendItems(out, v.Columns, level+1, depth+1)
	}
	return out
}
