// Package crosstab widens crosstab title and header cells while column
// groups are discovered. Real column count is only known incrementally as
// deeper groups start, so cells emitted earlier are widened retroactively
// through their render tree handles.
package crosstab

import (
	"fmt"

	"go.uber.org/zap"

	"rptcore/layout"
	"rptcore/layout/render"
)

// State of the header being rendered.
type State int

const (
	StateIdle State = iota
	StateHeaderOpen
	StateProcessingHeader
	StateHeaderClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHeaderOpen:
		return "header-open"
	case StateProcessingHeader:
		return "processing-header"
	case StateHeaderClosed:
		return "header-closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// SlotKind distinguishes group title cells from value header cells.
type SlotKind int

const (
	SlotTitle SlotKind = iota
	SlotHeader
)

// Slot is a spanning cell produced for a column group.
type Slot struct {
	GroupIndex int
	Kind       SlotKind
	Cell       render.ID
	Label      string
	RowSpan    int
	ColSpan    int

	children int
}

// Boxes is the part of render tree tracker needs.
type Boxes interface {
	Add(parent render.ID, box *render.Box) (render.ID, error)
	Find(id render.ID) (*render.Box, bool)
}

// Tracker follows one crosstab header. It is driven by a single pagination
// sweep and is not safe for concurrent use.
type Tracker struct {
	boxes     Boxes
	container render.ID
	log       *zap.Logger

	state   State
	root    Slot     // virtual parent of top level header cells
	rows    []render.ID
	titles  []*Slot  // one per group level
	open    []*Slot  // currently open header cell per level
	slots   []*Slot  // all slots in creation order
	columns int
}

// NewTracker returns tracker which places header rows under container box.
func NewTracker(boxes Boxes, container render.ID, log *zap.Logger) *Tracker {
	return &Tracker{boxes: boxes, container: container, log: log}
}

func (t *Tracker) State() State {
	return t.state
}

// Columns returns number of leaf columns discovered so far.
func (t *Tracker) Columns() int {
	return t.columns
}

// Slots returns snapshot of all cells in creation order.
func (t *Tracker) Slots() []Slot {
	out := make([]Slot, 0, len(t.slots))
	for _, s := range t.slots {
		out = append(out, *s)
	}
	return out
}

// StartColumnGroup records start of column group value at level groupIndex.
// Title cell of the level is created on its first appearance. Every value
// which is not the first child of its parent adds a leaf column: all open
// ancestor headers and all group titles are widened by one.
func (t *Tracker) StartColumnGroup(groupIndex int, title, label string) error {
	const op = "start column group"

	if t.state == StateHeaderClosed {
		return layout.Errorf(layout.KindContract, op, "header is already closed, group %d (%q) cannot start", groupIndex, label)
	}
	if groupIndex < 0 || groupIndex > len(t.open) {
		return layout.Errorf(layout.KindContract, op, "group %d started with only %d levels open", groupIndex, len(t.open))
	}

	switch t.state {
	case StateIdle:
		t.state = StateHeaderOpen
		t.log.Debug("Crosstab header opened", zap.Int("group", groupIndex), zap.String("label", label))
	case StateHeaderOpen:
		t.state = StateProcessingHeader
	}
	t.open = t.open[:groupIndex]

	parent := &t.root
	if groupIndex > 0 {
		parent = t.open[groupIndex-1]
	}

	if t.columns == 0 {
		t.columns = 1
	} else if parent.children > 0 {
		if err := t.widen(); err != nil {
			return err
		}
	}
	parent.children++

	if groupIndex == len(t.titles) {
		ts, err := t.newSlot(groupIndex, SlotTitle, title, t.columns)
		if err != nil {
			return err
		}
		t.titles = append(t.titles, ts)
	}

	header, err := t.newSlot(groupIndex, SlotHeader, label, 1)
	if err != nil {
		return err
	}
	t.open = append(t.open, header)
	return nil
}

// FinishColumnGroup closes header cells at level groupIndex and deeper.
// Groups finishing after the header has been closed are ignored.
func (t *Tracker) FinishColumnGroup(groupIndex int) error {
	switch t.state {
	case StateIdle:
		return layout.Errorf(layout.KindContract, "finish column group", "no crosstab header is open for group %d", groupIndex)
	case StateHeaderClosed:
		return nil
	}
	if groupIndex < 0 || groupIndex >= len(t.open) {
		return layout.Errorf(layout.KindContract, "finish column group", "group %d is not open", groupIndex)
	}
	t.open = t.open[:groupIndex]
	return nil
}

// CloseHeader freezes all spans, item rows begin.
func (t *Tracker) CloseHeader() {
	if t.state != StateHeaderClosed {
		t.log.Debug("Crosstab header closed", zap.Int("columns", t.columns), zap.Int("cells", len(t.slots)))
	}
	t.state = StateHeaderClosed
	t.open = t.open[:0]
}

// Reset prepares tracker for the next page or group iteration. Cells already
// in render tree keep their spans.
func (t *Tracker) Reset() {
	t.state = StateIdle
	t.root = Slot{}
	t.rows = nil
	t.titles = nil
	t.open = nil
	t.slots = nil
	t.columns = 0
}

func (t *Tracker) row(level int) (render.ID, error) {
	for len(t.rows) <= level {
		id, err := t.boxes.Add(t.container, &render.Box{Kind: render.KindRow, Name: fmt.Sprintf("column-header-%d", len(t.rows))})
		if err != nil {
			return id, fmt.Errorf("unable to add crosstab header row: %w", err)
		}
		t.rows = append(t.rows, id)
	}
	return t.rows[level], nil
}

func (t *Tracker) newSlot(level int, kind SlotKind, label string, colSpan int) (*Slot, error) {
	row, err := t.row(level)
	if err != nil {
		return nil, err
	}
	bk := render.KindCell
	if kind == SlotTitle {
		bk = render.KindTitle
	}
	id, err := t.boxes.Add(row, &render.Box{Kind: bk, Name: label, RowSpan: 1, ColSpan: colSpan})
	if err != nil {
		return nil, fmt.Errorf("unable to add crosstab cell %q: %w", label, err)
	}
	s := &Slot{GroupIndex: level, Kind: kind, Cell: id, Label: label, RowSpan: 1, ColSpan: colSpan}
	t.slots = append(t.slots, s)
	return s, nil
}

// widen accounts for a new leaf column.
func (t *Tracker) widen() error {
	t.columns++
	for _, s := range t.titles {
		if err := t.widenSlot(s); err != nil {
			return err
		}
	}
	for _, s := range t.open {
		if err := t.widenSlot(s); err != nil {
			return err
		}
	}
	return nil
}

func (t *Tracker) widenSlot(s *Slot) error {
	box, ok := t.boxes.Find(s.Cell)
	if !ok {
		return layout.Errorf(layout.KindStructure, "widen crosstab cell",
			"cell %q (group %d) is not present in render tree", s.Label, s.GroupIndex)
	}
	s.ColSpan++
	box.ColSpan = s.ColSpan
	t.log.Debug("Crosstab cell widened", zap.String("label", s.Label), zap.Int("group", s.GroupIndex), zap.Int("span", s.ColSpan))
	return nil
}
