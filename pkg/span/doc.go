// Package span attaches time intervals to the nodes of a constituency tree.
//
// A [Boundary] gives the (start, end) time of one terminal. [Build] assigns
// boundaries to terminals in left-to-right order and derives every
// nonterminal's [Interval] as the hull of its children, so a node's interval
// always contains each child's interval and the root spans the whole
// utterance.
//
//	t := tree.MustParse("( NT ( NT I ) ( NT am ) )")
//	st, err := span.Build(t, []span.Boundary{{"I", 1.0, 1.5}, {"am", 1.8, 2.0}})
//
// A built [Tree] is immutable. Boundary lists can be read from TSV or JSON
// with [ReadBoundaries].
package span
