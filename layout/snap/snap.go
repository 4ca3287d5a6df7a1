// Package snap adjusts tentative coordinates of elements being moved in the
// designer so they align to grid, other elements or guides.
//
// All resolvers work on a single axis; callers keep separate models for
// horizontal and vertical snapping.
package snap

import "math"

// Resolver returns adjusted coordinate to be used instead of position. Owner
// identifies element being moved, it may be nil.
type Resolver[E any] interface {
	Snap(position int64, owner *E) int64
}

// ResolverFunc adapts ordinary function to Resolver.
type ResolverFunc[E any] func(position int64, owner *E) int64

func (f ResolverFunc[E]) Snap(position int64, owner *E) int64 {
	return f(position, owner)
}

func displacement(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}

// Grid snaps to the nearest multiple of Size.
type Grid[E any] struct {
	Size int64
}

// Snap returns position unchanged when grid is disabled (size below 2) or
// position is not positive. Exact midpoint goes to the upper line.
func (g Grid[E]) Snap(position int64, _ *E) int64 {
	if g.Size < 2 || position <= 0 {
		return position
	}
	lower := (position / g.Size) * g.Size
	if lower > math.MaxInt64-g.Size {
		return lower
	}
	upper := lower + g.Size
	if position-lower < upper-position {
		return lower
	}
	return upper
}

// Compound returns result of whichever sub-resolver moved position the
// least. Ties keep the earlier resolver.
type Compound[E any] []Resolver[E]

func (c Compound[E]) Snap(position int64, owner *E) int64 {
	best, bestDist := position, int64(-1)
	for _, r := range c {
		if r == nil {
			continue
		}
		p := r.Snap(position, owner)
		if d := displacement(p, position); bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}
	return best
}
