package process

import (
	"fmt"

	"rptcore/layout/breaks"
)

// Paginator places boxes top to bottom in logical coordinates and records
// page breaks as they become known. Logical coordinates never jump: when a
// box is moved to the next page the unused remainder of the previous page is
// recorded as shift of the new page break.
type Paginator struct {
	breaks     *breaks.List
	pageHeight int64 // 0 means single endless page
	pageStart  int64
	y          int64
}

// NewPaginator resets list and records initial page boundary at 0.
func NewPaginator(list *breaks.List, pageHeight int64) (*Paginator, error) {
	if pageHeight < 0 {
		return nil, fmt.Errorf("negative page height %d", pageHeight)
	}
	list.Reset()
	if err := list.AddMajorBreak(0, 0); err != nil {
		return nil, err
	}
	return &Paginator{breaks: list, pageHeight: pageHeight}, nil
}

// Y returns next free logical position.
func (p *Paginator) Y() int64 {
	return p.y
}

// PageStart returns logical position of the current page top.
func (p *Paginator) PageStart() int64 {
	return p.pageStart
}

func (p *Paginator) paginated() bool {
	return p.pageHeight > 0
}

func (p *Paginator) pageEnd() int64 {
	return p.pageStart + p.pageHeight
}

func (p *Paginator) newPage(at, shift int64) error {
	if err := p.breaks.AddMajorBreak(at, shift); err != nil {
		return err
	}
	p.pageStart = at
	return nil
}

// Place reserves height and returns logical position of the box. Box which
// does not fit current page and is not at its top starts a new page. Boxes
// taller than a page are split at page ends.
func (p *Paginator) Place(height int64) (int64, error) {
	if height < 0 {
		return 0, fmt.Errorf("negative box height %d", height)
	}
	y := p.y
	if p.paginated() && height > 0 && y > p.pageStart && y+height > p.pageEnd() {
		if err := p.newPage(y, p.pageEnd()-y); err != nil {
			return 0, err
		}
	}
	p.y = y + height
	if p.paginated() {
		for p.pageEnd() < p.y {
			if err := p.newPage(p.pageEnd(), 0); err != nil {
				return 0, err
			}
		}
	}
	return y, nil
}

// BreakPage forces new page at the current position unless already at page
// top.
func (p *Paginator) BreakPage() error {
	if p.y == p.pageStart {
		return nil
	}
	var shift int64
	if p.paginated() {
		shift = p.pageEnd() - p.y
	}
	return p.newPage(p.y, shift)
}

// BreakColumn records area break at the current position.
func (p *Paginator) BreakColumn() error {
	return p.breaks.AddMinorBreak(p.y)
}
