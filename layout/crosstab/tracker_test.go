package crosstab

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"rptcore/layout"
	"rptcore/layout/render"
)

func newTracker(t *testing.T) (*Tracker, *render.Tree) {
	t.Helper()
	tree := render.NewTree()
	table, err := tree.Add(tree.Root().ID, &render.Box{Kind: render.KindTable, Name: "crosstab"})
	if err != nil {
		t.Fatal(err)
	}
	log := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	return NewTracker(tree, table, log), tree
}

var titles = []string{"Year", "Quarter", "Month"}

type step struct {
	finish bool
	group  int
	label  string
}

func run(t *testing.T, tr *Tracker, steps []step) {
	t.Helper()
	for _, s := range steps {
		var err error
		if s.finish {
			err = tr.FinishColumnGroup(s.group)
		} else {
			err = tr.StartColumnGroup(s.group, titles[s.group], s.label)
		}
		if err != nil {
			t.Fatalf("step %+v: %v", s, err)
		}
	}
}

func TestTracker_NestedColumns(t *testing.T) {
	tr, tree := newTracker(t)

	run(t, tr, []step{
		{group: 0, label: "2020"},
		{group: 1, label: "Q1"},
		{finish: true, group: 1},
		{group: 1, label: "Q2"},
		{finish: true, group: 1},
		{finish: true, group: 0},
		{group: 0, label: "2021"},
		{group: 1, label: "Q1"},
		{finish: true, group: 1},
		{finish: true, group: 0},
	})
	tr.CloseHeader()

	type cell struct {
		Group int
		Kind  SlotKind
		Label string
		Span  int
	}
	var got []cell
	for _, s := range tr.Slots() {
		got = append(got, cell{s.GroupIndex, s.Kind, s.Label, s.ColSpan})
		box, ok := tree.Find(s.Cell)
		if !ok {
			t.Fatalf("slot %q not in tree", s.Label)
		}
		if box.ColSpan != s.ColSpan {
			t.Errorf("box %q span %d, slot span %d", s.Label, box.ColSpan, s.ColSpan)
		}
	}
	want := []cell{
		{0, SlotTitle, "Year", 3},
		{0, SlotHeader, "2020", 2},
		{1, SlotTitle, "Quarter", 3},
		{1, SlotHeader, "Q1", 1},
		{1, SlotHeader, "Q2", 1},
		{0, SlotHeader, "2021", 1},
		{1, SlotHeader, "Q1", 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}
	if tr.Columns() != 3 {
		t.Errorf("Columns() = %d, want 3", tr.Columns())
	}
	if tr.State() != StateHeaderClosed {
		t.Errorf("State() = %s, want header-closed", tr.State())
	}
}

func TestTracker_ThreeLevels(t *testing.T) {
	tr, _ := newTracker(t)
	run(t, tr, []step{
		{group: 0, label: "2020"},
		{group: 1, label: "Q1"},
		{group: 2, label: "Jan"},
		{group: 2, label: "Feb"}, // sibling start implicitly finishes Jan
		{group: 2, label: "Mar"},
		{group: 1, label: "Q2"},
		{group: 2, label: "Apr"},
		{group: 2, label: "May"},
	})

	spans := map[string]int{}
	for _, s := range tr.Slots() {
		if s.Kind == SlotHeader {
			spans[s.Label] = s.ColSpan
		}
	}
	want := map[string]int{"2020": 5, "Q1": 3, "Q2": 2, "Jan": 1, "Feb": 1, "Mar": 1, "Apr": 1, "May": 1}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
	for _, s := range tr.Slots() {
		if s.Kind == SlotTitle && s.ColSpan != 5 {
			t.Errorf("title %d span %d, want 5", s.GroupIndex, s.ColSpan)
		}
	}
}

func TestTracker_StateMachine(t *testing.T) {
	tr, _ := newTracker(t)
	if tr.State() != StateIdle {
		t.Fatalf("initial state %s", tr.State())
	}
	if err := tr.StartColumnGroup(0, "T", "a"); err != nil {
		t.Fatal(err)
	}
	if tr.State() != StateHeaderOpen {
		t.Fatalf("state after first start %s", tr.State())
	}
	if err := tr.StartColumnGroup(1, "T", "b"); err != nil {
		t.Fatal(err)
	}
	if tr.State() != StateProcessingHeader {
		t.Fatalf("state after nested start %s", tr.State())
	}
	tr.CloseHeader()
	if tr.State() != StateHeaderClosed {
		t.Fatalf("state after close %s", tr.State())
	}

	err := tr.StartColumnGroup(0, "T", "late")
	if !layout.IsContract(err) {
		t.Errorf("start after close error = %v, want contract violation", err)
	}
	// finishing groups after header closed is fine
	if err := tr.FinishColumnGroup(0); err != nil {
		t.Errorf("finish after close error = %v", err)
	}

	tr.Reset()
	if tr.State() != StateIdle || len(tr.Slots()) != 0 || tr.Columns() != 0 {
		t.Errorf("Reset() left state %s, %d slots, %d columns", tr.State(), len(tr.Slots()), tr.Columns())
	}
	if err := tr.StartColumnGroup(0, "T", "again"); err != nil {
		t.Errorf("start after reset error = %v", err)
	}
}

func TestTracker_ContractErrors(t *testing.T) {
	tr, _ := newTracker(t)
	if err := tr.FinishColumnGroup(0); !layout.IsContract(err) {
		t.Errorf("finish while idle error = %v", err)
	}
	if err := tr.StartColumnGroup(0, "T", "a"); err != nil {
		t.Fatal(err)
	}
	if err := tr.StartColumnGroup(2, "T", "skipped"); !layout.IsContract(err) {
		t.Errorf("skipping level error = %v", err)
	}
	if err := tr.StartColumnGroup(-1, "T", "negative"); !layout.IsContract(err) {
		t.Errorf("negative level error = %v", err)
	}
	if err := tr.FinishColumnGroup(3); !layout.IsContract(err) {
		t.Errorf("finishing unopened level error = %v", err)
	}
}

func TestTracker_MissingCellIsFatal(t *testing.T) {
	tr, tree := newTracker(t)
	run(t, tr, []step{
		{group: 0, label: "2020"},
		{group: 1, label: "Q1"},
	})

	var victim render.ID
	for _, s := range tr.Slots() {
		if s.Kind == SlotHeader && s.Label == "2020" {
			victim = s.Cell
		}
	}
	if !tree.Remove(victim) {
		t.Fatal("unable to remove cell from tree")
	}

	err := tr.StartColumnGroup(1, "Quarter", "Q2")
	if err == nil {
		t.Fatal("expected error when widened cell is gone")
	}
	if !layout.IsStructure(err) {
		t.Errorf("error = %v, want structure error", err)
	}
}

func TestTracker_SingleLevel(t *testing.T) {
	tr, tree := newTracker(t)
	run(t, tr, []step{
		{group: 0, label: "A"},
		{group: 0, label: "B"},
		{group: 0, label: "C"},
	})
	tr.CloseHeader()

	slots := tr.Slots()
	if len(slots) != 4 {
		t.Fatalf("got %d slots, want 4", len(slots))
	}
	if slots[0].Kind != SlotTitle || slots[0].ColSpan != 3 {
		t.Errorf("title = %+v, want span 3", slots[0])
	}
	for _, s := range slots[1:] {
		if s.ColSpan != 1 {
			t.Errorf("header %q span %d, want 1", s.Label, s.ColSpan)
		}
	}
	// table -> one header row -> title + three headers
	table := tree.Root().Children[0]
	if len(table.Children) != 1 || len(table.Children[0].Children) != 4 {
		t.Errorf("unexpected tree shape:\n%s", tree.Dump())
	}
}

func TestTracker_SlotsSnapshot(t *testing.T) {
	tr, _ := newTracker(t)
	run(t, tr, []step{{group: 0, label: "A"}})
	snap := tr.Slots()
	run(t, tr, []step{{group: 0, label: "B"}})
	if snap[0].ColSpan != 1 {
		t.Errorf("snapshot changed after widening: %+v", snap[0])
	}
	if diff := cmp.Diff(tr.Slots()[0], Slot{GroupIndex: 0, Kind: SlotTitle, Label: "Year", RowSpan: 1, ColSpan: 2},
		cmpopts.IgnoreFields(Slot{}, "Cell"), cmpopts.IgnoreUnexported(Slot{})); diff != "" {
		t.Errorf("title slot mismatch (-got +want):\n%s", diff)
	}
}

func TestState_String(t *testing.T) {
	if StateProcessingHeader.String() != "processing-header" {
		t.Errorf("String() = %q", StateProcessingHeader.String())
	}
	if State(9).String() != "state(9)" {
		t.Errorf("String() = %q", State(9).String())
	}
}
