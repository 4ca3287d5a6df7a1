package snap

import (
	"sort"
	"weak"
)

type point[E any] struct {
	key   int64
	owner weak.Pointer[E]
}

// Positions is a sorted list of candidate positions, each optionally owned by
// an element. Owners are held weakly, registering position does not keep
// element alive. Every key maps to at most one owner, last writer wins.
type Positions[E any] struct {
	points []point[E]
}

func NewPositions[E any]() *Positions[E] {
	return &Positions[E]{}
}

func (p *Positions[E]) search(key int64) int {
	return sort.Search(len(p.points), func(i int) bool { return p.points[i].key >= key })
}

// Add registers key for owner, owner may be nil.
func (p *Positions[E]) Add(key int64, owner *E) {
	var wp weak.Pointer[E]
	if owner != nil {
		wp = weak.Make(owner)
	}
	i := p.search(key)
	if i < len(p.points) && p.points[i].key == key {
		p.points[i].owner = wp
		return
	}
	p.points = append(p.points, point[E]{})
	copy(p.points[i+1:], p.points[i:])
	p.points[i] = point[E]{key: key, owner: wp}
}

// AddElement registers both edges of element occupying [offset, offset+size).
func (p *Positions[E]) AddElement(offset, size int64, owner *E) {
	p.Add(offset, owner)
	if size > 0 {
		p.Add(offset+size, owner)
	}
}

// Remove drops key, reports if it was present.
func (p *Positions[E]) Remove(key int64) bool {
	i := p.search(key)
	if i == len(p.points) || p.points[i].key != key {
		return false
	}
	p.points = append(p.points[:i], p.points[i+1:]...)
	return true
}

func (p *Positions[E]) Clear() {
	p.points = p.points[:0]
}

func (p *Positions[E]) Len() int {
	return len(p.points)
}

// Keys returns registered positions in increasing order.
func (p *Positions[E]) Keys() []int64 {
	out := make([]int64, 0, len(p.points))
	for _, pt := range p.points {
		out = append(out, pt.key)
	}
	return out
}

// Owner returns owner registered for key, nil if key is unowned, unknown or
// owner is gone.
func (p *Positions[E]) Owner(key int64) *E {
	i := p.search(key)
	if i == len(p.points) || p.points[i].key != key {
		return nil
	}
	return p.points[i].owner.Value()
}

// Snap picks the neighbouring position for position. When owner is given and
// one of the neighbours belongs to it, that neighbour is used regardless of
// distance (successor checked first). Otherwise the closer neighbour wins,
// equal distance goes to the successor.
func (p *Positions[E]) Snap(position int64, owner *E) int64 {
	if len(p.points) == 0 {
		return position
	}
	i := p.search(position)
	if i < len(p.points) && p.points[i].key == position {
		return position
	}
	if i == 0 {
		return p.points[0].key
	}
	prev := p.points[i-1]
	if i == len(p.points) {
		return prev.key
	}
	next := p.points[i]

	if owner != nil {
		wp := weak.Make(owner)
		if next.owner == wp {
			return next.key
		}
		if prev.owner == wp {
			return prev.key
		}
	}
	if position-prev.key < next.key-position {
		return prev.key
	}
	return next.key
}
