// Package debug has helpers producing stable human readable dumps of layout
// structures.
package debug

import (
	"fmt"
	"strings"
)

// TreeWriter accumulates indented lines, two spaces per depth level.
type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Tagged writes line followed by non-empty tags separated by spaces.
func (tw TreeWriter) Tagged(depth int, line string, tags ...string) {
	tw.indent(depth)
	tw.w.WriteString(line)
	for _, t := range tags {
		if t == "" {
			continue
		}
		tw.w.WriteByte(' ')
		tw.w.WriteString(t)
	}
	tw.w.WriteByte('\n')
}

// Tag returns name if cond holds, empty string otherwise.
func Tag(cond bool, name string) string {
	if cond {
		return name
	}
	return ""
}
