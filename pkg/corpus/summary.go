package corpus

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/metric"
)

// Result is the outcome of scoring one example.
type Result struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Report   *metric.Report `json:"report,omitempty"`
	Error    string         `json:"error,omitempty"`
	Code     errors.Code    `json:"code,omitempty"`
	Cached   bool           `json:"cached"`
	Duration time.Duration  `json:"duration_ns"`
}

// OK reports whether the example was scored.
func (r Result) OK() bool { return r.Error == "" }

// Summary aggregates a corpus run. Mean, Min and Max cover scored examples
// only and are zero when nothing was scored.
type Summary struct {
	RunID     string        `json:"run_id"`
	Results   []Result      `json:"results"`
	Mean      float64       `json:"mean"`
	Min       float64       `json:"min"`
	Max       float64       `json:"max"`
	Scored    int           `json:"scored"`
	Failed    int           `json:"failed"`
	CacheHits int           `json:"cache_hits"`
	Duration  time.Duration `json:"duration_ns"`
}

func summarize(runID string, results []Result, d time.Duration) *Summary {
	s := &Summary{RunID: runID, Results: results, Duration: d}
	var sum float64
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range results {
		if !r.OK() {
			s.Failed++
			continue
		}
		s.Scored++
		if r.Cached {
			s.CacheHits++
		}
		sum += r.Score
		lo = min(lo, r.Score)
		hi = max(hi, r.Score)
	}
	if s.Scored > 0 {
		s.Mean = sum / float64(s.Scored)
		s.Min, s.Max = lo, hi
	}
	return s
}

// Failures returns the results that could not be scored.
func (s *Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if !r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// WriteJSON writes the summary as indented JSON.
func (s *Summary) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
