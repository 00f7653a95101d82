package tree

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/matzehuels/structiou/pkg/errors"
)

// bracketLexer splits bracket notation into parentheses and atoms. Atoms are
// any run of characters other than whitespace and parentheses, so "(NT" lexes
// the same as "( NT".
var bracketLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Atom", Pattern: `[^\s()]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// labeledGrammar is one bracket of labeled notation: a label followed by
// either a single token or one or more nested brackets.
//
//nolint:govet // participle grammar tags are not standard struct tags
type labeledGrammar struct {
	Label    string            `parser:"\"(\" @Atom"`
	Token    *string           `parser:"( @Atom"`
	Children []*labeledGrammar `parser:"| @@+ ) \")\""`
}

// bareGrammar is unlabeled notation: a token, or a group of one or more
// nested items.
//
//nolint:govet // participle grammar tags are not standard struct tags
type bareGrammar struct {
	Token    *string        `parser:"@Atom"`
	Children []*bareGrammar `parser:"| \"(\" @@+ \")\""`
}

var (
	labeledParser = participle.MustBuild[labeledGrammar](
		participle.Lexer(bracketLexer),
		participle.Elide("Whitespace"),
	)
	bareParser = participle.MustBuild[bareGrammar](
		participle.Lexer(bracketLexer),
		participle.Elide("Whitespace"),
	)
)

// Parse reads a tree in labeled bracket notation, for example
// "( NT ( NT I ) ( NT am ) )". Blank input, unbalanced parentheses, missing
// labels or trailing input fail with MALFORMED_TREE.
func Parse(s string) (*Tree, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeMalformedTree, "tree string is empty")
	}
	g, err := labeledParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedTree, err, "parse tree %q", abbreviate(s))
	}
	return FromExpr(g.expr())
}

// MustParse is like [Parse] but panics on error. Intended for tests and
// package-level fixtures.
func MustParse(s string) *Tree {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseBare reads unlabeled bracket notation such as "((I am) (a cat))".
// Every group becomes a nonterminal labeled nonterminalLabel and every token
// becomes a terminal labeled preterminalLabel. A lone token yields a
// single-terminal tree.
func ParseBare(s, nonterminalLabel, preterminalLabel string) (*Tree, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New(errors.ErrCodeMalformedTree, "tree string is empty")
	}
	g, err := bareParser.ParseString("", s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeMalformedTree, err, "parse bare tree %q", abbreviate(s))
	}
	return FromExpr(g.expr(nonterminalLabel, preterminalLabel))
}

func (g *labeledGrammar) expr() Expr {
	if g.Token != nil {
		return Leaf(g.Label, *g.Token)
	}
	e := Expr{Label: g.Label, Children: make([]Expr, len(g.Children))}
	for i, c := range g.Children {
		e.Children[i] = c.expr()
	}
	return e
}

func (g *bareGrammar) expr(nt, pt string) Expr {
	if g.Token != nil {
		return Leaf(pt, *g.Token)
	}
	e := Expr{Label: nt, Children: make([]Expr, len(g.Children))}
	for i, c := range g.Children {
		e.Children[i] = c.expr(nt, pt)
	}
	return e
}

func abbreviate(s string) string {
	const limit = 64
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
