package crosstab

import (
	"rptcore/common"
	"rptcore/layout"
)

// DetailEmitter decides which detail items of a column group are emitted.
// With DetailModeLast emission is deferred until the group finishes.
type DetailEmitter[T any] struct {
	mode    common.DetailMode
	pending T
	have    bool
	seen    int
}

// NewDetailEmitter fails with contract error on unknown mode.
func NewDetailEmitter[T any](mode common.DetailMode) (*DetailEmitter[T], error) {
	if !mode.IsValid() {
		return nil, layout.Errorf(layout.KindContract, "detail emitter", "unknown detail mode %s", mode)
	}
	return &DetailEmitter[T]{mode: mode}, nil
}

func (d *DetailEmitter[T]) Mode() common.DetailMode {
	return d.mode
}

// Start begins new group occurrence, anything deferred is dropped.
func (d *DetailEmitter[T]) Start() {
	var zero T
	d.pending, d.have, d.seen = zero, false, 0
}

// Advance registers next item and returns items to be emitted now.
func (d *DetailEmitter[T]) Advance(item T) []T {
	d.seen++
	switch d.mode {
	case common.DetailModeFirst:
		if d.seen == 1 {
			return []T{item}
		}
	case common.DetailModeLast:
		d.pending, d.have = item, true
	case common.DetailModeAll:
		return []T{item}
	}
	return nil
}

// Finish ends group occurrence and returns deferred items.
func (d *DetailEmitter[T]) Finish() []T {
	defer d.Start()
	if d.mode == common.DetailModeLast && d.have {
		return []T{d.pending}
	}
	return nil
}

// Summary rows are never allowed inside column group processing.
func (d *DetailEmitter[T]) Summary() error {
	return layout.Errorf(layout.KindDisallowed, "summary row", "summary rows cannot be emitted inside column group (detail mode %s)", d.mode)
}
