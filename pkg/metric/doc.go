// Package metric computes Struct-IoU, a structural agreement score between
// two constituency trees whose terminals carry time boundaries.
//
// The score is derived from an optimal alignment (see package align):
// every node carries unit mass, a matched pair contributes the IoU of its
// two intervals as shared mass, and the total is normalized by the mean node
// count of the two trees:
//
//	StructIoU = 2 * Σ IoU(a, b) / (|A| + |B|)
//
// Identical trees score 1, trees with no overlapping spans score 0, and the
// score is symmetric in its arguments.
//
// [StructIoU] is the plain entry point. [Evaluate] accepts functional options
// and returns a [Report] with the matched pairs.
package metric
