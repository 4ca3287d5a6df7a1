// Package layout holds definitions shared by the pagination core: fixed
// point coordinates and the error taxonomy of a layout run.
package layout

import (
	"errors"
	"fmt"
)

// Kind classifies fatal layout failures. None of them is recoverable, the
// current run must be aborted.
type Kind int

const (
	// KindContract is a caller programming error, e.g. out of order break
	// insertion or unknown detail mode.
	KindContract Kind = iota + 1
	// KindStructure means render tree is inconsistent with what was recorded
	// earlier in the run.
	KindStructure
	// KindDisallowed is an operation which is never permitted in the current
	// context.
	KindDisallowed
)

func (k Kind) String() string {
	switch k {
	case KindContract:
		return "contract violation"
	case KindStructure:
		return "inconsistent structure"
	case KindDisallowed:
		return "operation not allowed"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is returned by all layout core operations.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds layout error of requested kind.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

func isKind(err error, kind Kind) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind == kind
	}
	return false
}

func IsContract(err error) bool   { return isKind(err, KindContract) }
func IsStructure(err error) bool  { return isKind(err, KindStructure) }
func IsDisallowed(err error) bool { return isKind(err, KindDisallowed) }
