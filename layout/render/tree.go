// Package render keeps laid out box tree produced by a layout run before it
// is handed to format specific writers.
package render

import (
	"fmt"

	"github.com/google/uuid"

	"rptcore/layout"
	"rptcore/utils/debug"
)

// ID is opaque box identity, stable for the whole run.
type ID = uuid.UUID

// Kind of the box.
type Kind int

const (
	KindRoot Kind = iota
	KindPage
	KindBand
	KindTable
	KindRow
	KindCell
	KindTitle
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindPage:
		return "page"
	case KindBand:
		return "band"
	case KindTable:
		return "table"
	case KindRow:
		return "row"
	case KindCell:
		return "cell"
	case KindTitle:
		return "title"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Box is a node of the render tree. Y and Height are in micro-points.
type Box struct {
	ID       ID
	Kind     Kind
	Name     string
	Y        int64
	Height   int64
	RowSpan  int
	ColSpan  int
	Children []*Box

	parent *Box
}

func (b *Box) Parent() *Box {
	return b.parent
}

// Tree indexes boxes by identity.
type Tree struct {
	root  *Box
	index map[ID]*Box
}

func NewTree() *Tree {
	root := &Box{ID: uuid.New(), Kind: KindRoot, Name: "root", RowSpan: 1, ColSpan: 1}
	return &Tree{root: root, index: map[ID]*Box{root.ID: root}}
}

func (t *Tree) Root() *Box {
	return t.root
}

func (t *Tree) Len() int {
	return len(t.index)
}

// Add attaches box to parent and returns its identity. Zero spans are
// normalized to 1, missing ID is generated.
func (t *Tree) Add(parent ID, box *Box) (ID, error) {
	p, ok := t.index[parent]
	if !ok {
		return uuid.Nil, layout.Errorf(layout.KindStructure, "add box", "parent %s not found", parent)
	}
	if box.ID == uuid.Nil {
		box.ID = uuid.New()
	}
	if _, exists := t.index[box.ID]; exists {
		return uuid.Nil, layout.Errorf(layout.KindContract, "add box", "box %s already in tree", box.ID)
	}
	box.RowSpan = max(box.RowSpan, 1)
	box.ColSpan = max(box.ColSpan, 1)
	box.parent = p
	p.Children = append(p.Children, box)
	t.index[box.ID] = box
	return box.ID, nil
}

// Find looks up previously added box.
func (t *Tree) Find(id ID) (*Box, bool) {
	b, ok := t.index[id]
	return b, ok
}

// Remove detaches box with its subtree.
func (t *Tree) Remove(id ID) bool {
	b, ok := t.index[id]
	if !ok || b == t.root {
		return false
	}
	p := b.parent
	for i, c := range p.Children {
		if c == b {
			p.Children = append(p.Children[:i], p.Children[i+1:]...)
			break
		}
	}
	t.Walk(b, func(n *Box, _ int) bool {
		delete(t.index, n.ID)
		return true
	})
	b.parent = nil
	return true
}

// Walk visits box and its descendants depth first. Returning false from fn
// skips children of visited box.
func (t *Tree) Walk(from *Box, fn func(b *Box, depth int) bool) {
	var walk func(b *Box, depth int)
	walk = func(b *Box, depth int) {
		if !fn(b, depth) {
			return
		}
		for _, c := range b.Children {
			walk(c, depth+1)
		}
	}
	walk(from, 0)
}

// Dump returns textual representation of the tree. Box identities are left
// out so output is stable between runs.
func (t *Tree) Dump() string {
	tw := debug.NewTreeWriter()
	t.Walk(t.root, func(b *Box, depth int) bool {
		switch {
		case b.Kind == KindCell || b.Kind == KindTitle:
			tw.Line(depth, "%s %q span %dx%d", b.Kind, b.Name, b.RowSpan, b.ColSpan)
		case b.Height > 0:
			tw.Line(depth, "%s %q y=%d h=%d", b.Kind, b.Name, b.Y, b.Height)
		default:
			tw.Line(depth, "%s %q", b.Kind, b.Name)
		}
		return true
	})
	return tw.String()
}
