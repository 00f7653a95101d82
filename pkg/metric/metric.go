package metric

import (
	"github.com/matzehuels/structiou/pkg/align"
	"github.com/matzehuels/structiou/pkg/span"
)

// Score reduces an alignment of a and b to a value in [0, 1]. Trees with no
// nodes score 0.
func Score(a, b *span.Tree, r align.Result) float64 {
	n := a.Len() + b.Len()
	if n == 0 {
		return 0
	}
	s := 2 * r.Weight / float64(n)
	return min(max(s, 0), 1)
}

// StructIoU aligns ref and pred and returns their score. flexible selects
// flexible terminal alignment.
func StructIoU(ref, pred *span.Tree, flexible bool) float64 {
	return Evaluate(ref, pred, WithFlexibleTerminals(flexible)).Score
}

// Report is the full result of one evaluation.
type Report struct {
	Score          float64      `json:"score"`
	Weight         float64      `json:"weight"`
	Pairs          []align.Pair `json:"pairs"`
	ReferenceNodes int          `json:"reference_nodes"`
	PredictedNodes int          `json:"predicted_nodes"`
	Flexible       bool         `json:"flexible"`
}

// Option configures [Evaluate].
type Option func(*align.Options)

// WithFlexibleTerminals toggles flexible terminal alignment (default true).
func WithFlexibleTerminals(v bool) Option {
	return func(o *align.Options) { o.FlexibleTerminals = v }
}

// WithThreshold sets the IoU a pair must exceed to be matched (default 0).
func WithThreshold(v float64) Option {
	return func(o *align.Options) { o.Threshold = v }
}

// WithEpsilon sets the zero-length tolerance (default 1e-6).
func WithEpsilon(v float64) Option {
	return func(o *align.Options) { o.Epsilon = v }
}

// WithOptions replaces all alignment options at once.
func WithOptions(opts align.Options) Option {
	return func(o *align.Options) { *o = opts }
}

// Options applies opts over the defaults.
func Options(opts ...Option) align.Options {
	o := align.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Evaluate aligns ref against pred and reports the score with its pairs.
func Evaluate(ref, pred *span.Tree, opts ...Option) Report {
	o := Options(opts...)

	r := align.Align(ref, pred, o)
	s := Score(ref, pred, r)

	return Report{
		Score:          s,
		Weight:         r.Weight,
		Pairs:          r.Pairs,
		ReferenceNodes: ref.Len(),
		PredictedNodes: pred.Len(),
		Flexible:       o.FlexibleTerminals,
	}
}
