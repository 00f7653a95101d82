package span

import (
	"fmt"
	"strings"

	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/tree"
)

// Tree is a [tree.Tree] whose nodes carry derived time intervals. It shares
// node indices with its source tree.
type Tree struct {
	src        *tree.Tree
	boundaries []Boundary
	intervals  []Interval
	leafLo     []int
	leafHi     []int
}

// Build assigns bs to the terminals of t in left-to-right order and derives
// the interval of every nonterminal as the hull of its children.
//
// It fails with BOUNDARY_COUNT_MISMATCH when len(bs) differs from the number
// of terminals, and with INVALID_INTERVAL when a boundary has start > end or
// a non-finite endpoint. No tree is returned on failure.
func Build(t *tree.Tree, bs []Boundary) (*Tree, error) {
	if t == nil || t.Len() == 0 {
		return nil, errors.New(errors.ErrCodeEmptyTree, "tree has no nodes")
	}
	if n := t.NumTerminals(); n != len(bs) {
		return nil, errors.New(errors.ErrCodeBoundaryMismatch,
			"tree has %d terminals but %d boundaries were given", n, len(bs))
	}
	for i, b := range bs {
		if !b.Interval().Valid() {
			return nil, errors.New(errors.ErrCodeInvalidInterval,
				"boundary %d (%q) has invalid interval [%v, %v]", i, b.Label, b.Start, b.End)
		}
	}

	n := t.Len()
	st := &Tree{
		src:        t,
		boundaries: append([]Boundary(nil), bs...),
		intervals:  make([]Interval, n),
		leafLo:     make([]int, n),
		leafHi:     make([]int, n),
	}
	// Arena indices are pre-order, so walking them backwards visits every
	// child before its parent.
	for i := n - 1; i >= 0; i-- {
		node := t.Node(i)
		if node.IsTerminal() {
			st.intervals[i] = bs[node.Leaf].Interval()
			st.leafLo[i], st.leafHi[i] = node.Leaf, node.Leaf+1
			continue
		}
		first := node.Children[0]
		iv := st.intervals[first]
		lo, hi := st.leafLo[first], st.leafHi[first]
		for _, c := range node.Children[1:] {
			iv = iv.Hull(st.intervals[c])
			lo, hi = min(lo, st.leafLo[c]), max(hi, st.leafHi[c])
		}
		st.intervals[i] = iv
		st.leafLo[i], st.leafHi[i] = lo, hi
	}
	return st, nil
}

// MustBuild is like [Build] but panics on error.
func MustBuild(t *tree.Tree, bs []Boundary) *Tree {
	st, err := Build(t, bs)
	if err != nil {
		panic(err)
	}
	return st
}

// Source returns the underlying tree.
func (t *Tree) Source() *tree.Tree { return t.src }

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.intervals) }

// Node returns node i of the source tree.
func (t *Tree) Node(i int) tree.Node { return t.src.Node(i) }

// Interval returns the derived interval of node i.
func (t *Tree) Interval(i int) Interval { return t.intervals[i] }

// LeafRange returns the half-open range of terminal positions under node i.
func (t *Tree) LeafRange(i int) (lo, hi int) { return t.leafLo[i], t.leafHi[i] }

// NumLeaves returns the number of terminals.
func (t *Tree) NumLeaves() int { return len(t.boundaries) }

// Boundaries returns a copy of the boundaries the tree was built from.
func (t *Tree) Boundaries() []Boundary {
	return append([]Boundary(nil), t.boundaries...)
}

// Span returns the root interval.
func (t *Tree) Span() Interval { return t.intervals[0] }

// Format renders the tree on one line with every node written as
// LABEL-index-start~end, for example
// "(NT-0-1.000~3.000 (NT-1-1.000~1.500 I) ...)".
func (t *Tree) Format() string {
	var b strings.Builder
	var write func(int)
	write = func(i int) {
		node := t.src.Node(i)
		fmt.Fprintf(&b, "(%s-%d-%s", node.Label, i, t.intervals[i])
		if node.IsTerminal() {
			b.WriteByte(' ')
			b.WriteString(node.Token)
		}
		for _, c := range node.Children {
			b.WriteByte(' ')
			write(c)
		}
		b.WriteByte(')')
	}
	write(0)
	return b.String()
}

// String implements fmt.Stringer using [Tree.Format].
func (t *Tree) String() string { return t.Format() }
