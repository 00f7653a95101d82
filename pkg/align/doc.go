// Package align computes the maximum-weight order-preserving alignment
// between the nodes of two interval trees.
//
// # Alignment
//
// An alignment is a partial one-to-one matching M between the nodes of trees
// A and B such that, for any two pairs (a1, b1) and (a2, b2) in M, a1 is an
// ancestor of a2 exactly when b1 is an ancestor of b2, and unrelated nodes
// keep their left-to-right order on both sides. Each pair is weighted by the
// IoU of the two node intervals. [Align] returns a matching of maximum total
// weight.
//
// # Algorithm
//
// For a pair (a, b) that may be matched, inside(a, b) is the pair's weight
// plus the best chain of matched pairs strictly below a and b. A chain is a
// set of pairs whose leaf ranges are pairwise disjoint and ordered the same
// way on both sides, so it is found with a table D[x][y] over leaf
// endpoints:
//
//	D[x][y] = max(D[x-1][y], D[x][y-1],
//	              D[start(p)][start(q)] + inside(p, q)  for p ending at x, q ending at y)
//
// inside is filled bottom-up in reverse pre-order, which visits every
// descendant pair before its ancestors without recursion. The final result
// is one more chain over all nodes of both trees, so the roots are free to
// stay unmatched.
//
// Ties prefer matching over skipping, and among equally good matches the
// first in pre-order of A, then of B, wins. The same inputs always produce
// the same pairs.
package align
