// Package tree provides an ordered, labeled constituency tree stored as a
// flat node arena.
//
// # Overview
//
// Every node lives in a single slice and refers to its children by integer
// index. Node 0 is the root and indices follow pre-order, so a node's
// descendants always occupy the contiguous index range that follows it.
// There are no parent pointers inside [Node]; [Tree.Parent] answers that
// query from a side table.
//
// A node is either a [Terminal] (a preterminal bracket such as "( NT cat )",
// carrying exactly one token) or a [Nonterminal] with one or more ordered
// children. Algorithms branch on [Node.Kind] explicitly.
//
// # Notation
//
// [Parse] reads labeled bracket notation:
//
//	( NT ( NT I ) ( NT ( NT am ) ( NT ( NT a ) ( NT cat ) ) ) )
//
// Parentheses do not need surrounding whitespace. [ParseBare] reads the
// unlabeled form "((I am) (a cat))" and assigns fixed labels.
//
// Labels and tokens are informational. Nothing in this module compares them
// when scoring two trees.
package tree
