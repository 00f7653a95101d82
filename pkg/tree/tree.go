package tree

import (
	"strings"

	"github.com/matzehuels/structiou/pkg/errors"
)

// Kind distinguishes terminal nodes from nonterminal nodes.
type Kind uint8

const (
	// Nonterminal is an internal node with one or more children.
	Nonterminal Kind = iota
	// Terminal is a preterminal node carrying exactly one token.
	Terminal
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "nonterminal"
}

// Node is one entry of the tree arena.
type Node struct {
	Label    string
	Token    string // Set for terminals only
	Kind     Kind
	Children []int // Arena indices in left-to-right order; nil for terminals
	Leaf     int   // Left-to-right terminal position; -1 for nonterminals
}

// IsTerminal reports whether the node is a terminal.
func (n Node) IsTerminal() bool { return n.Kind == Terminal }

// Tree is an immutable ordered tree. The zero value is not usable; create
// trees with [Parse], [ParseBare] or [FromExpr].
type Tree struct {
	nodes     []Node
	parent    []int
	end       []int // end[i] is one past the last arena index in i's subtree
	terminals []int
}

// Expr describes a tree by value. It is the construction form accepted by
// [FromExpr]; a leaf Expr has a Token and no Children.
type Expr struct {
	Label    string
	Token    string
	Children []Expr
}

// Leaf returns a terminal Expr.
func Leaf(label, token string) Expr {
	return Expr{Label: label, Token: token}
}

// Branch returns a nonterminal Expr.
func Branch(label string, children ...Expr) Expr {
	return Expr{Label: label, Children: children}
}

// FromExpr flattens e into an arena tree. Labels must be non-empty and
// every leaf needs a token; neither may contain whitespace or parentheses.
func FromExpr(e Expr) (*Tree, error) {
	t := &Tree{}
	if err := t.add(e, -1); err != nil {
		return nil, err
	}
	return t, nil
}

const reserved = " \t\r\n()"

func (t *Tree) add(e Expr, parent int) error {
	if e.Label == "" || strings.ContainsAny(e.Label, reserved) {
		return errors.New(errors.ErrCodeMalformedTree, "invalid label %q", e.Label)
	}
	if strings.ContainsAny(e.Token, reserved) {
		return errors.New(errors.ErrCodeMalformedTree, "invalid token %q", e.Token)
	}
	idx := len(t.nodes)
	n := Node{Label: e.Label, Leaf: -1}
	if len(e.Children) == 0 {
		if e.Token == "" {
			return errors.New(errors.ErrCodeMalformedTree, "node %d has neither token nor children", idx)
		}
		n.Kind = Terminal
		n.Token = e.Token
		n.Leaf = len(t.terminals)
		t.terminals = append(t.terminals, idx)
	}
	t.nodes = append(t.nodes, n)
	t.parent = append(t.parent, parent)
	t.end = append(t.end, 0)
	if parent >= 0 {
		t.nodes[parent].Children = append(t.nodes[parent].Children, idx)
	}
	for _, c := range e.Children {
		if err := t.add(c, idx); err != nil {
			return err
		}
	}
	t.end[idx] = len(t.nodes)
	return nil
}

// Len returns the number of nodes, terminals included.
func (t *Tree) Len() int { return len(t.nodes) }

// Root returns the root index, which is always 0.
func (t *Tree) Root() int { return 0 }

// Node returns the node at index i.
func (t *Tree) Node(i int) Node { return t.nodes[i] }

// Children returns the child indices of node i.
func (t *Tree) Children(i int) []int { return t.nodes[i].Children }

// Parent returns the parent index of node i, or -1 for the root.
func (t *Tree) Parent(i int) int { return t.parent[i] }

// Descendants returns the half-open arena range [i+1, end) holding the
// proper descendants of node i.
func (t *Tree) Descendants(i int) (lo, hi int) { return i + 1, t.end[i] }

// IsAncestor reports whether a is a proper ancestor of d.
func (t *Tree) IsAncestor(a, d int) bool { return a < d && d < t.end[a] }

// Terminals returns the arena indices of the terminals in left-to-right order.
func (t *Tree) Terminals() []int {
	return append([]int(nil), t.terminals...)
}

// NumTerminals returns the number of terminals.
func (t *Tree) NumTerminals() int { return len(t.terminals) }

// Tokens returns the terminal tokens in left-to-right order.
func (t *Tree) Tokens() []string {
	out := make([]string, len(t.terminals))
	for i, idx := range t.terminals {
		out[i] = t.nodes[idx].Token
	}
	return out
}

// PostOrder returns every node index with children before parents.
func (t *Tree) PostOrder() []int {
	out := make([]int, 0, len(t.nodes))
	var visit func(int)
	visit = func(i int) {
		for _, c := range t.nodes[i].Children {
			visit(c)
		}
		out = append(out, i)
	}
	visit(0)
	return out
}

// LeafRange returns the half-open range of terminal positions covered by
// node i.
func (t *Tree) LeafRange(i int) (lo, hi int) {
	n := t.nodes[i]
	if n.Kind == Terminal {
		return n.Leaf, n.Leaf + 1
	}
	lo, hi = -1, -1
	for j := i; j < t.end[i]; j++ {
		if l := t.nodes[j].Leaf; l >= 0 {
			if lo < 0 {
				lo = l
			}
			hi = l + 1
		}
	}
	return lo, hi
}

// Span is the leaf range of one node.
type Span struct {
	Node  int
	Start int
	End   int
	Label string
}

// Spans lists the leaf ranges of all nonterminals in pre-order, plus the
// terminals when includeTerminals is set.
func (t *Tree) Spans(includeTerminals bool) []Span {
	out := make([]Span, 0, len(t.nodes))
	for i, n := range t.nodes {
		if n.Kind == Terminal && !includeTerminals {
			continue
		}
		lo, hi := t.LeafRange(i)
		out = append(out, Span{Node: i, Start: lo, End: hi, Label: n.Label})
	}
	return out
}

// Expr converts the tree back into its value form.
func (t *Tree) Expr() Expr {
	var build func(int) Expr
	build = func(i int) Expr {
		n := t.nodes[i]
		if n.Kind == Terminal {
			return Leaf(n.Label, n.Token)
		}
		e := Expr{Label: n.Label, Children: make([]Expr, len(n.Children))}
		for k, c := range n.Children {
			e.Children[k] = build(c)
		}
		return e
	}
	return build(0)
}

// String renders the tree in canonical bracket notation, which [Parse]
// reads back into an identical tree.
func (t *Tree) String() string {
	var b strings.Builder
	var write func(int)
	write = func(i int) {
		n := t.nodes[i]
		b.WriteString("( ")
		b.WriteString(n.Label)
		if n.Kind == Terminal {
			b.WriteByte(' ')
			b.WriteString(n.Token)
		}
		for _, c := range n.Children {
			b.WriteByte(' ')
			write(c)
		}
		b.WriteString(" )")
	}
	write(0)
	return b.String()
}
