package breaks

import (
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"rptcore/layout"
)

func mixedList(t *testing.T) *List {
	t.Helper()
	l := New()
	for _, p := range []int64{0, 5000, 10000, 15000, 20000, 25000, 30000} {
		var err error
		if p%10000 == 0 {
			err = l.AddMajorBreak(p, 0)
		} else {
			err = l.AddMinorBreak(p)
		}
		if err != nil {
			t.Fatalf("add break %d: %v", p, err)
		}
	}
	return l
}

func TestFindNextBreakPosition_Mixed(t *testing.T) {
	l := mixedList(t)

	tests := []struct {
		name     string
		position int64
		want     int64
		major    bool
	}{
		{"before first", -1, 0, false},
		{"on first", 0, 0, false},
		{"next minor", 1, 5000, false},
		{"next major", 1, 10000, true},
		{"exact minor", 15000, 15000, false},
		{"exact minor majors only", 15000, 20000, true},
		{"beyond last", 40000, 30000, false},
		{"beyond last major", 40000, 30000, true},
		{"far before major", -100000, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got int64
			if tt.major {
				got = l.FindNextMajorBreakPosition(tt.position)
			} else {
				got = l.FindNextBreakPosition(tt.position)
			}
			if got != tt.want {
				t.Errorf("find(%d) = %d, want %d", tt.position, got, tt.want)
			}
		})
	}
}

func TestFindNextBreakPosition_SmallestNotBelow(t *testing.T) {
	positions := []int64{-300, 0, 7, 7, 12, 1000, 1001, 99999}
	l := New()
	for _, p := range positions {
		if err := l.AddMajorBreak(p, 0); err != nil {
			t.Fatalf("AddMajorBreak(%d) error = %v", p, err)
		}
	}
	for p := int64(-500); p <= 100500; p += 13 {
		want := positions[len(positions)-1]
		for _, q := range positions {
			if q >= p {
				want = q
				break
			}
		}
		if got := l.FindNextBreakPosition(p); got != want {
			t.Fatalf("FindNextBreakPosition(%d) = %d, want %d", p, got, want)
		}
	}
}

func TestFindPageEndForPageStartPosition(t *testing.T) {
	l := New()
	if err := l.AddMajorBreak(0, 0); err != nil {
		t.Fatal(err)
	}
	if err := l.AddMajorBreak(100000, 0); err != nil {
		t.Fatal(err)
	}

	if got := l.FindPageEndForPageStartPosition(0); got != 100000 {
		t.Errorf("page end for 0 = %d, want 100000", got)
	}
	if got := l.FindPageEndForPageStartPosition(100000); got != 100000 {
		t.Errorf("page end for 100000 = %d, want 100000", got)
	}
	if got := l.FindPageEndForPageStartPosition(50); got != 100000 {
		t.Errorf("page end for 50 = %d, want 100000", got)
	}
	if got := l.FindPageStartPositionForPageEndPosition(100000); got != 0 {
		t.Errorf("page start for 100000 = %d, want 0", got)
	}
	if got := l.FindPageStartPositionForPageEndPosition(0); got != 0 {
		t.Errorf("page start for 0 = %d, want 0", got)
	}
}

func TestSingleShiftedBreak(t *testing.T) {
	l := New()
	if err := l.AddMajorBreak(58446100, 14300000); err != nil {
		t.Fatal(err)
	}

	if got := l.FindNextBreakPosition(9271300); got != 58446100 {
		t.Errorf("FindNextBreakPosition() = %d, want 58446100", got)
	}
	if l.IsCrossingPagebreak(9271300, 1000600, 0) {
		t.Error("box far above the break must not cross")
	}
	if got := l.AfterShift(58446100); got != 14300000 {
		t.Errorf("AfterShift() = %d, want 14300000", got)
	}
	if got := l.AfterShift(100); got != 0 {
		t.Errorf("AfterShift() for unknown position = %d, want 0", got)
	}
}

func TestIsCrossingPagebreak(t *testing.T) {
	l := New()
	for _, p := range []int64{0, 1000, 2000} {
		if err := l.AddMajorBreak(p, 0); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.AddMinorBreak(2500); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name             string
		y, height, shift int64
		want             bool
	}{
		{"zero height on break", 1000, 0, 0, false},
		{"zero height inside", 500, 0, 0, false},
		{"zero height shifted", 900, 0, 100, false},
		{"negative height", 900, -200, 0, false},
		{"exactly fills gap", 500, 500, 0, false},
		{"starts on break", 1000, 1000, 0, false},
		{"straddles", 900, 200, 0, true},
		{"straddles after shift", 700, 200, 200, true},
		{"shift moves below", 900, 200, 150, false},
		{"spans several", 100, 2500, 0, true},
		{"minor ignored", 2100, 800, 0, false},
		{"beyond last", 3000, 1000, 0, false},
		{"one past boundary", 500, 501, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.IsCrossingPagebreak(tt.y, tt.height, tt.shift); got != tt.want {
				t.Errorf("IsCrossingPagebreak(%d, %d, %d) = %v, want %v", tt.y, tt.height, tt.shift, got, tt.want)
			}
		})
	}
}

func TestIsCrossingPagebreak_ZeroHeightNeverCrosses(t *testing.T) {
	l := mixedList(t)
	for y := int64(-20000); y <= 50000; y += 250 {
		for _, shift := range []int64{-5000, 0, 1, 4999, 5000} {
			if l.IsCrossingPagebreak(y, 0, shift) {
				t.Fatalf("zero height box at %d shift %d crosses", y, shift)
			}
		}
	}
}

func TestIsCrossingPagebreak_GapBoundary(t *testing.T) {
	l := mixedList(t)
	for y := int64(1); y < 30000; y += 333 {
		gap := l.FindPageEndForPageStartPosition(y) - y
		if l.FindPageEndForPageStartPosition(y) == y {
			continue
		}
		if l.IsCrossingPagebreak(y, gap, 0) {
			t.Fatalf("box at %d with height equal to gap %d crosses", y, gap)
		}
		if !l.IsCrossingPagebreak(y, gap+1, 0) {
			t.Fatalf("box at %d with height %d must cross", y, gap+1)
		}
	}
}

func TestIsCrossingPagebreak_NearMaxPosition(t *testing.T) {
	l := New()
	if err := l.AddMajorBreak(math.MaxInt64-10, 0); err != nil {
		t.Fatal(err)
	}
	if !l.IsCrossingPagebreak(math.MaxInt64-100, 1000, 0) {
		t.Error("box running past the last representable position must cross break inside it")
	}
	if l.IsCrossingPagebreak(math.MaxInt64-5, 1000, 0) {
		t.Error("box below the last break must not cross")
	}
	if l.IsCrossingPagebreak(math.MaxInt64-1000, 990, 0) {
		t.Error("box ending exactly on the break must not cross")
	}
}

func TestDuplicateMajorKeepsMaxShift(t *testing.T) {
	orders := [][]int64{{10, 50, 30}, {50, 10, 30}, {30, 10, 50}}
	want := []Entry{{Position: 0, Major: true}, {Position: 1000, AfterShift: 50, Major: true}, {Position: 2000, Major: true}}
	for _, shifts := range orders {
		l := New()
		if err := l.AddMajorBreak(0, 0); err != nil {
			t.Fatal(err)
		}
		// minor first, major upgrade must stick
		if err := l.AddMinorBreak(0); err != nil {
			t.Fatal(err)
		}
		for _, s := range shifts {
			if err := l.AddMajorBreak(1000, s); err != nil {
				t.Fatal(err)
			}
		}
		if err := l.AddMinorBreak(1000); err != nil {
			t.Fatal(err)
		}
		if err := l.AddMajorBreak(2000, 0); err != nil {
			t.Fatal(err)
		}

		if diff := cmp.Diff(want, l.Entries()); diff != "" {
			t.Errorf("Entries() mismatch for %v (-want +got):\n%s", shifts, diff)
		}
		if l.FindNextMajorBreakPosition(1) != 1000 || l.FindPageEndForPageStartPosition(1000) != 2000 {
			t.Errorf("queries affected by duplicate insertion order %v", shifts)
		}
		if l.MajorBreakCount() != 3 {
			t.Errorf("MajorBreakCount() = %d, want 3", l.MajorBreakCount())
		}
	}
}

func TestMinorUpgradedToMajor(t *testing.T) {
	l := New()
	if err := l.AddMinorBreak(500); err != nil {
		t.Fatal(err)
	}
	if l.IsPageStart(500) {
		t.Error("minor break reported as page start")
	}
	if err := l.AddMajorBreak(500, 7); err != nil {
		t.Fatal(err)
	}
	if !l.IsPageStart(500) {
		t.Error("upgraded break is not a page start")
	}
	if l.Len() != 1 || l.MajorBreakCount() != 1 {
		t.Errorf("Len() = %d, MajorBreakCount() = %d, want 1, 1", l.Len(), l.MajorBreakCount())
	}
}

func TestOutOfOrderInsert(t *testing.T) {
	l := New()
	if err := l.AddMajorBreak(1000, 0); err != nil {
		t.Fatal(err)
	}
	err := l.AddMajorBreak(999, 0)
	if err == nil {
		t.Fatal("expected error for out of order major break")
	}
	if !layout.IsContract(err) {
		t.Errorf("expected contract violation, got %v", err)
	}
	if err := l.AddMinorBreak(10); !layout.IsContract(err) {
		t.Errorf("expected contract violation for minor break, got %v", err)
	}
	if l.Len() != 1 {
		t.Errorf("failed inserts changed list, Len() = %d", l.Len())
	}
}

func TestEmptyList(t *testing.T) {
	l := New()
	if got := l.FindNextBreakPosition(42); got != 42 {
		t.Errorf("FindNextBreakPosition() = %d, want 42", got)
	}
	if got := l.FindNextMajorBreakPosition(42); got != 42 {
		t.Errorf("FindNextMajorBreakPosition() = %d, want 42", got)
	}
	if got := l.FindPreviousBreakPosition(42); got != 42 {
		t.Errorf("FindPreviousBreakPosition() = %d, want 42", got)
	}
	if got := l.FindPageEndForPageStartPosition(42); got != 42 {
		t.Errorf("FindPageEndForPageStartPosition() = %d, want 42", got)
	}
	if l.IsCrossingPagebreak(0, 1000, 0) {
		t.Error("empty list reports crossing")
	}
	if _, ok := l.LastMajorBreak(); ok {
		t.Error("LastMajorBreak() on empty list reported ok")
	}
}

func TestFindPreviousBreakPosition(t *testing.T) {
	l := mixedList(t)
	tests := []struct{ in, want int64 }{
		{-10, 0},
		{0, 0},
		{4999, 0},
		{5000, 5000},
		{29999, 25000},
		{90000, 30000},
	}
	for _, tt := range tests {
		if got := l.FindPreviousBreakPosition(tt.in); got != tt.want {
			t.Errorf("FindPreviousBreakPosition(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestResetAndString(t *testing.T) {
	l := mixedList(t)
	s := l.String()
	if !strings.Contains(s, "breaks: 7 (major: 4)") {
		t.Errorf("String() header missing, got:\n%s", s)
	}
	if !strings.Contains(s, "minor 5000 (5pt)") {
		t.Errorf("String() minor entry missing, got:\n%s", s)
	}

	l.Reset()
	if l.Len() != 0 || l.MajorBreakCount() != 0 {
		t.Fatalf("Reset() left entries: %d/%d", l.Len(), l.MajorBreakCount())
	}
	// after reset any order is valid again
	if err := l.AddMajorBreak(-5, 0); err != nil {
		t.Errorf("AddMajorBreak() after Reset() error = %v", err)
	}
	if pos, ok := l.LastMajorBreak(); !ok || pos != -5 {
		t.Errorf("LastMajorBreak() = %d, %v", pos, ok)
	}
}
