package snap

// Full combines grid, element and guide snapping. Resolvers are consulted in
// fixed order (grid, elements, guides) and candidate is accepted only when it
// actually moves position and moves it less than the best one accepted so
// far.
type Full[E any] struct {
	Grid     Grid[E]
	Elements *Positions[E]
	Guides   *Positions[E]

	GridEnabled     bool
	ElementsEnabled bool
	GuidesEnabled   bool

	// Threshold limits accepted displacement, 0 means no limit.
	Threshold int64
}

// NewFull returns model with all resolvers enabled and empty position lists.
func NewFull[E any](gridSize int64) *Full[E] {
	return &Full[E]{
		Grid:            Grid[E]{Size: gridSize},
		Elements:        NewPositions[E](),
		Guides:          NewPositions[E](),
		GridEnabled:     true,
		ElementsEnabled: true,
		GuidesEnabled:   true,
	}
}

func (f *Full[E]) Snap(position int64, owner *E) int64 {
	best, bestDist := position, int64(-1)

	consider := func(enabled bool, r Resolver[E]) {
		if !enabled || r == nil {
			return
		}
		p := r.Snap(position, owner)
		d := displacement(p, position)
		if d == 0 || (f.Threshold > 0 && d > f.Threshold) {
			return
		}
		if bestDist < 0 || d < bestDist {
			best, bestDist = p, d
		}
	}

	consider(f.GridEnabled, f.Grid)
	if f.Elements != nil {
		consider(f.ElementsEnabled, f.Elements)
	}
	if f.Guides != nil {
		consider(f.GuidesEnabled, f.Guides)
	}
	return best
}
