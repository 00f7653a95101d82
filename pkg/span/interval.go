package span

import (
	"fmt"
	"math"
)

// DefaultEpsilon is the tolerance below which overlap and union lengths are
// treated as zero.
const DefaultEpsilon = 1e-6

// Interval is a closed time span [Start, End].
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Len returns End - Start.
func (iv Interval) Len() float64 { return iv.End - iv.Start }

// Valid reports whether both endpoints are finite and Start <= End.
func (iv Interval) Valid() bool {
	if math.IsNaN(iv.Start) || math.IsNaN(iv.End) || math.IsInf(iv.Start, 0) || math.IsInf(iv.End, 0) {
		return false
	}
	return iv.Start <= iv.End
}

// Overlap returns the length of the intersection, or 0 when the intervals
// are disjoint.
func (iv Interval) Overlap(o Interval) float64 {
	return math.Max(0, math.Min(iv.End, o.End)-math.Max(iv.Start, o.Start))
}

// Hull returns the smallest interval containing both.
func (iv Interval) Hull(o Interval) Interval {
	return Interval{Start: math.Min(iv.Start, o.Start), End: math.Max(iv.End, o.End)}
}

// Contains reports whether o lies within iv.
func (iv Interval) Contains(o Interval) bool {
	return iv.Start <= o.Start && o.End <= iv.End
}

// IoU returns the intersection-over-union ratio of two intervals, with the
// union measured as the hull length. It is 0 whenever the intersection or
// the union is shorter than eps, which makes zero-length intervals score 0
// even against themselves.
func (iv Interval) IoU(o Interval, eps float64) float64 {
	inter := math.Min(iv.End, o.End) - math.Max(iv.Start, o.Start)
	union := iv.Hull(o).Len()
	if inter < eps || union < eps {
		return 0
	}
	return inter / union
}

// String formats the interval as "1.000~1.500".
func (iv Interval) String() string {
	return fmt.Sprintf("%.3f~%.3f", iv.Start, iv.End)
}
