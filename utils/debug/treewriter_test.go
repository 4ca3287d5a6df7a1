package debug

import (
	"strings"
	"testing"
)

func TestNewTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw == nil {
		t.Fatal("NewTreeWriter() returned nil")
	}
	if tw.w == nil {
		t.Error("TreeWriter builder is nil")
	}
}

func TestTreeWriter_String(t *testing.T) {
	tw := NewTreeWriter()
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}

	tw.w.WriteString("test content")
	if tw.String() != "test content" {
		t.Errorf("String() = %q, want %q", tw.String(), "test content")
	}
}

func TestTreeWriter_Line(t *testing.T) {
	tests := []struct {
		name   string
		depth  int
		format string
		args   []any
		want   string
	}{
		{
			name:   "no depth",
			depth:  0,
			format: "test",
			args:   nil,
			want:   "test\n",
		},
		{
			name:   "depth 1",
			depth:  1,
			format: "indented",
			args:   nil,
			want:   "  indented\n",
		},
		{
			name:   "depth 2",
			depth:  2,
			format: "double indent",
			args:   nil,
			want:   "    double indent\n",
		},
		{
			name:   "with formatting",
			depth:  1,
			format: "value: %d",
			args:   []any{42},
			want:   "  value: 42\n",
		},
		{
			name:   "multiple args",
			depth:  0,
			format: "%s = %d",
			args:   []any{"count", 5},
			want:   "count = 5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Line(tt.depth, tt.format, tt.args...)
			got := tw.String()
			if got != tt.want {
				t.Errorf("Line() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Tagged(t *testing.T) {
	tests := []struct {
		name  string
		depth int
		line  string
		tags  []string
		want  string
	}{
		{name: "no tags", depth: 0, line: "band", want: "band\n"},
		{name: "all tags", depth: 1, line: "band", tags: []string{"a", "b"}, want: "  band a b\n"},
		{name: "empty tags skipped", depth: 2, line: "row", tags: []string{"", "split", ""}, want: "    row split\n"},
		{name: "conditional", depth: 0, line: "page 1", tags: []string{Tag(false, "shift 1pt"), Tag(true, "last")}, want: "page 1 last\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tw := NewTreeWriter()
			tw.Tagged(tt.depth, tt.line, tt.tags...)
			if got := tw.String(); got != tt.want {
				t.Errorf("Tagged() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTreeWriter_Mixed(t *testing.T) {
	tw := NewTreeWriter()
	tw.Line(0, "report %q", "r")
	tw.Tagged(1, `band "b"`, Tag(true, "column-break"))
	tw.Line(1, "group %d", 0)

	want := "report \"r\"\n  band \"b\" column-break\n  group 0\n"
	if got := tw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if n := strings.Count(tw.String(), "\n"); n != 3 {
		t.Errorf("got %d lines, want 3", n)
	}
}
