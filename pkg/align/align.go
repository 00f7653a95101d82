package align

import (
	"sort"

	"github.com/matzehuels/structiou/pkg/span"
)

// Options controls which node pairs may be matched.
type Options struct {
	// FlexibleTerminals lets terminals match any node by overlap alone. When
	// false, a terminal may only match the terminal at the same leaf
	// position in the other tree.
	FlexibleTerminals bool

	// Threshold is the IoU a pair must exceed to be matchable.
	Threshold float64

	// Epsilon is the length below which overlaps and unions count as zero.
	// An IoU below Epsilon also counts as zero. Zero means
	// [span.DefaultEpsilon].
	Epsilon float64
}

// DefaultOptions returns flexible terminal alignment with no threshold.
func DefaultOptions() Options {
	return Options{FlexibleTerminals: true, Epsilon: span.DefaultEpsilon}
}

// Pair is one matched node pair.
type Pair struct {
	A       int     `json:"a"`
	B       int     `json:"b"`
	IoU     float64 `json:"iou"`
	Overlap float64 `json:"overlap"`
}

// Result is an optimal alignment.
type Result struct {
	Pairs  []Pair  `json:"pairs"`
	Weight float64 `json:"weight"` // Sum of IoU over Pairs
}

// Align returns a maximum-weight order-preserving alignment of a and b.
// It never fails for trees produced by [span.Build].
func Align(a, b *span.Tree, opts Options) Result {
	if opts.Epsilon <= 0 {
		opts.Epsilon = span.DefaultEpsilon
	}
	al := newAligner(a, b, opts)
	al.fillInside()

	top := al.chain(0, a.Len(), 0, b.Len(), 0, a.NumLeaves(), 0, b.NumLeaves(), true)

	var pairs []Pair
	al.traceChain(top, &pairs)
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	var w float64
	for _, p := range pairs {
		w += p.IoU
	}
	return Result{Pairs: pairs, Weight: w}
}

type aligner struct {
	a, b   *span.Tree
	opts   Options
	nb     int
	weight []float64 // Matchable pair weights, row-major over (A, B)
	inside []float64
	endA   []int // One past the last arena index in each subtree
	endB   []int
	byEndA [][]int // Nodes grouped by leaf end, in pre-order
	byEndB [][]int
}

func newAligner(a, b *span.Tree, opts Options) *aligner {
	al := &aligner{
		a:      a,
		b:      b,
		opts:   opts,
		nb:     b.Len(),
		weight: make([]float64, a.Len()*b.Len()),
		inside: make([]float64, a.Len()*b.Len()),
	}
	al.endA, al.byEndA = index(a)
	al.endB, al.byEndB = index(b)

	for i := 0; i < a.Len(); i++ {
		for j := 0; j < b.Len(); j++ {
			if !al.allowed(i, j) {
				continue
			}
			iou := a.Interval(i).IoU(b.Interval(j), opts.Epsilon)
			if iou > opts.Threshold && iou >= opts.Epsilon {
				al.weight[i*al.nb+j] = iou
			}
		}
	}
	return al
}

func index(t *span.Tree) (end []int, byEnd [][]int) {
	src := t.Source()
	end = make([]int, t.Len())
	byEnd = make([][]int, t.NumLeaves()+1)
	for i := 0; i < t.Len(); i++ {
		_, end[i] = src.Descendants(i)
		_, hi := t.LeafRange(i)
		byEnd[hi] = append(byEnd[hi], i)
	}
	return end, byEnd
}

func (al *aligner) allowed(i, j int) bool {
	if al.opts.FlexibleTerminals {
		return true
	}
	na, nb := al.a.Node(i), al.b.Node(j)
	if !na.IsTerminal() && !nb.IsTerminal() {
		return true
	}
	return na.IsTerminal() && nb.IsTerminal() && na.Leaf == nb.Leaf
}

// fillInside computes inside(i, j) for every pair. Pre-order places all
// descendants after their ancestor, so descending loops see every
// descendant pair first.
func (al *aligner) fillInside() {
	for i := al.a.Len() - 1; i >= 0; i-- {
		for j := al.b.Len() - 1; j >= 0; j-- {
			al.inside[i*al.nb+j] = al.pairValue(i, j)
		}
	}
}

func (al *aligner) pairValue(i, j int) float64 {
	w := al.weight[i*al.nb+j]
	if w <= 0 {
		return 0
	}
	if al.a.Node(i).IsTerminal() || al.b.Node(j).IsTerminal() {
		return w
	}
	t := al.descChain(i, j, false)
	return w + t.best()
}

func (al *aligner) descChain(i, j int, record bool) *table {
	xlo, xhi := al.a.LeafRange(i)
	ylo, yhi := al.b.LeafRange(j)
	return al.chain(i+1, al.endA[i], j+1, al.endB[j], xlo, xhi, ylo, yhi, record)
}

// choice records how a chain cell got its value.
type choice struct {
	p, q int // Matched pair, or -1 for a skip
	dx   bool
}

// table is a chain DP over leaf endpoints [xlo, xhi] x [ylo, yhi].
type table struct {
	xlo, xhi int
	ylo, yhi int
	cols     int
	d        []float64
	choices  []choice
}

func (t *table) at(x, y int) int { return (x-t.xlo)*t.cols + (y - t.ylo) }

func (t *table) best() float64 { return t.d[t.at(t.xhi, t.yhi)] }

// chain finds the best set of disjoint, identically ordered pairs drawn
// from A nodes in [alo, ahi) and B nodes in [blo, bhi), whose leaves lie
// in [xlo, xhi] and [ylo, yhi].
func (al *aligner) chain(alo, ahi, blo, bhi, xlo, xhi, ylo, yhi int, record bool) *table {
	t := &table{xlo: xlo, xhi: xhi, ylo: ylo, yhi: yhi, cols: yhi - ylo + 1}
	t.d = make([]float64, (xhi-xlo+1)*t.cols)
	if record {
		t.choices = make([]choice, len(t.d))
		for k := range t.choices {
			t.choices[k] = choice{p: -1, q: -1}
		}
	}

	for x := xlo; x <= xhi; x++ {
		for y := ylo; y <= yhi; y++ {
			if x == xlo || y == ylo {
				continue
			}
			k := t.at(x, y)
			skip, dx := t.d[t.at(x-1, y)], true
			if v := t.d[t.at(x, y-1)]; v > skip {
				skip, dx = v, false
			}

			match, mp, mq := -1.0, -1, -1
			for _, p := range al.byEndA[x] {
				if p < alo || p >= ahi {
					continue
				}
				plo, _ := al.a.LeafRange(p)
				for _, q := range al.byEndB[y] {
					if q < blo || q >= bhi {
						continue
					}
					in := al.inside[p*al.nb+q]
					if in <= 0 {
						continue
					}
					qlo, _ := al.b.LeafRange(q)
					if v := t.d[t.at(plo, qlo)] + in; v > match {
						match, mp, mq = v, p, q
					}
				}
			}

			if mp >= 0 && match >= skip {
				t.d[k] = match
				if record {
					t.choices[k] = choice{p: mp, q: mq}
				}
				continue
			}
			t.d[k] = skip
			if record {
				t.choices[k] = choice{p: -1, q: -1, dx: dx}
			}
		}
	}
	return t
}

// traceChain walks a recorded chain table back from its corner and emits
// every matched pair along with the pairs beneath it.
func (al *aligner) traceChain(t *table, out *[]Pair) {
	x, y := t.xhi, t.yhi
	for x > t.xlo && y > t.ylo {
		c := t.choices[t.at(x, y)]
		if c.p < 0 {
			if c.dx {
				x--
			} else {
				y--
			}
			continue
		}
		al.tracePair(c.p, c.q, out)
		x, _ = al.a.LeafRange(c.p)
		y, _ = al.b.LeafRange(c.q)
	}
}

func (al *aligner) tracePair(i, j int, out *[]Pair) {
	ia, ib := al.a.Interval(i), al.b.Interval(j)
	*out = append(*out, Pair{
		A:       i,
		B:       j,
		IoU:     al.weight[i*al.nb+j],
		Overlap: ia.Overlap(ib),
	})
	if al.a.Node(i).IsTerminal() || al.b.Node(j).IsTerminal() {
		return
	}
	al.traceChain(al.descChain(i, j, true), out)
}
