// Package breaks records page (major) and area (minor) break positions found
// during a single top-to-bottom pagination sweep and answers nearest/next
// break queries.
package breaks

import (
	"math"
	"sort"

	"rptcore/layout"
	"rptcore/utils/debug"
)

// Entry is a single recorded break.
type Entry struct {
	Position   int64
	AfterShift int64
	Major      bool
}

// List keeps entries in strictly increasing position order. Positions must
// be added in non-decreasing order as pagination proceeds. Majors are indexed
// separately so major-only queries stay O(log n).
//
// List is not safe for concurrent use, every pagination pass owns its own.
type List struct {
	entries []Entry
	majors  []int // indexes into entries
}

func New() *List {
	return &List{}
}

// Reset drops all recorded breaks, list is rebuilt for every run.
func (l *List) Reset() {
	l.entries = l.entries[:0]
	l.majors = l.majors[:0]
}

func (l *List) Len() int {
	return len(l.entries)
}

func (l *List) MajorBreakCount() int {
	return len(l.majors)
}

// Entries returns copy of recorded breaks in position order.
func (l *List) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// AddMajorBreak records page boundary at position. When entry already exists
// at this position larger shift is kept and entry becomes major.
func (l *List) AddMajorBreak(position, afterShift int64) error {
	return l.add("add major break", position, afterShift, true)
}

// AddMinorBreak records non-page break usable for sub-page flow decisions.
func (l *List) AddMinorBreak(position int64) error {
	return l.add("add minor break", position, 0, false)
}

func (l *List) add(op string, position, shift int64, major bool) error {
	n := len(l.entries)
	if n > 0 {
		last := &l.entries[n-1]
		switch {
		case position < last.Position:
			return layout.Errorf(layout.KindContract, op, "position %d is before last recorded break %d", position, last.Position)
		case position == last.Position:
			last.AfterShift = max(last.AfterShift, shift)
			if major && !last.Major {
				last.Major = true
				l.majors = append(l.majors, n-1)
			}
			return nil
		}
	}
	l.entries = append(l.entries, Entry{Position: position, AfterShift: shift, Major: major})
	if major {
		l.majors = append(l.majors, n)
	}
	return nil
}

// searchAll returns index of first entry with position >= p.
func (l *List) searchAll(p int64) int {
	return sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Position >= p })
}

// searchMajor returns index (in majors) of first major with position >= p.
func (l *List) searchMajor(p int64) int {
	return sort.Search(len(l.majors), func(i int) bool { return l.entries[l.majors[i]].Position >= p })
}

// searchMajorAfter returns index (in majors) of first major with position > p.
func (l *List) searchMajorAfter(p int64) int {
	return sort.Search(len(l.majors), func(i int) bool { return l.entries[l.majors[i]].Position > p })
}

func (l *List) major(i int) *Entry {
	return &l.entries[l.majors[i]]
}

// FindNextBreakPosition returns smallest recorded break position >= position.
// Result saturates: first entry for positions at or before it, last entry
// for positions beyond it.
func (l *List) FindNextBreakPosition(position int64) int64 {
	if len(l.entries) == 0 {
		return position
	}
	i := l.searchAll(position)
	if i == len(l.entries) {
		return l.entries[i-1].Position
	}
	return l.entries[i].Position
}

// FindNextMajorBreakPosition is FindNextBreakPosition restricted to majors.
func (l *List) FindNextMajorBreakPosition(position int64) int64 {
	if len(l.majors) == 0 {
		return position
	}
	i := l.searchMajor(position)
	if i == len(l.majors) {
		return l.major(i - 1).Position
	}
	return l.major(i).Position
}

// FindPreviousBreakPosition returns largest recorded position <= position,
// saturating to the first entry.
func (l *List) FindPreviousBreakPosition(position int64) int64 {
	if len(l.entries) == 0 {
		return position
	}
	i := sort.Search(len(l.entries), func(i int) bool { return l.entries[i].Position > position })
	if i == 0 {
		return l.entries[0].Position
	}
	return l.entries[i-1].Position
}

// FindPageEndForPageStartPosition returns next major break strictly after
// pageStart or pageStart itself for the terminal page.
func (l *List) FindPageEndForPageStartPosition(pageStart int64) int64 {
	i := l.searchMajorAfter(pageStart)
	if i == len(l.majors) {
		return pageStart
	}
	return l.major(i).Position
}

// FindPageStartPositionForPageEndPosition returns last major break strictly
// before pageEnd or pageEnd itself when there is none.
func (l *List) FindPageStartPositionForPageEndPosition(pageEnd int64) int64 {
	i := l.searchMajor(pageEnd)
	if i == 0 {
		return pageEnd
	}
	return l.major(i - 1).Position
}

// IsPageStart reports if major break is recorded exactly at position.
func (l *List) IsPageStart(position int64) bool {
	i := l.searchMajor(position)
	return i < len(l.majors) && l.major(i).Position == position
}

// AfterShift returns shift recorded for the major break at position, 0 if
// there is no such break.
func (l *List) AfterShift(position int64) int64 {
	i := l.searchMajor(position)
	if i < len(l.majors) && l.major(i).Position == position {
		return l.major(i).AfterShift
	}
	return 0
}

// LastMajorBreak returns position of the last recorded page boundary.
func (l *List) LastMajorBreak() (int64, bool) {
	if len(l.majors) == 0 {
		return 0, false
	}
	return l.major(len(l.majors) - 1).Position, true
}

// IsCrossingPagebreak reports if box [y+shift, y+shift+height) has a major
// break strictly inside, boundaries excluded.
func (l *List) IsCrossingPagebreak(y, height, shift int64) bool {
	if height <= 0 {
		return false
	}
	top := y + shift
	i := l.searchMajorAfter(top)
	if i == len(l.majors) {
		return false
	}
	bottom := int64(math.MaxInt64)
	if top <= math.MaxInt64-height {
		bottom = top + height
	}
	return l.major(i).Position < bottom
}

// String dumps list for debugging.
func (l *List) String() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "breaks: %d (major: %d)", len(l.entries), len(l.majors))
	for _, e := range l.entries {
		kind := "minor"
		if e.Major {
			kind = "major"
		}
		tw.Line(1, "%s %d (%s) shift %d", kind, e.Position, layout.FormatLength(e.Position), e.AfterShift)
	}
	return tw.String()
}
