package corpus

import (
	"fmt"

	"github.com/matzehuels/structiou/pkg/align"
	"github.com/matzehuels/structiou/pkg/cache"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/metric"
	"github.com/matzehuels/structiou/pkg/span"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultFlexible enables flexible terminal alignment.
	DefaultFlexible = true

	// DefaultThreshold is the IoU a pair must exceed to be matched.
	DefaultThreshold = 0.0

	// DefaultEpsilon is the zero-length tolerance for intervals.
	DefaultEpsilon = span.DefaultEpsilon

	// DefaultWorkers is the number of examples scored concurrently.
	DefaultWorkers = 8

	// MaxWorkers caps Runner.Workers.
	MaxWorkers = 256
)

// Options configures a corpus run.
type Options struct {
	Flexible  bool    `json:"flexible"`
	Threshold float64 `json:"threshold,omitempty"`
	Epsilon   float64 `json:"epsilon,omitempty"`

	// Refresh bypasses cached reports. Fresh results are still written back.
	Refresh bool `json:"refresh,omitempty"`
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Flexible:  DefaultFlexible,
		Threshold: DefaultThreshold,
		Epsilon:   DefaultEpsilon,
	}
}

// ValidateAndSetDefaults fills zero values and checks ranges.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Epsilon == 0 {
		o.Epsilon = DefaultEpsilon
	}
	if err := errors.ValidateThreshold(o.Threshold); err != nil {
		return err
	}
	if err := errors.ValidateEpsilon(o.Epsilon); err != nil {
		return err
	}
	return nil
}

// alignOptions returns the aligner settings for one example.
func (o Options) alignOptions(e Example) align.Options {
	return metric.Options(
		metric.WithFlexibleTerminals(e.flexible(o.Flexible)),
		metric.WithThreshold(o.Threshold),
		metric.WithEpsilon(o.Epsilon),
	)
}

func keyOpts(a align.Options) cache.ScoreKeyOpts {
	return cache.ScoreKeyOpts{
		Flexible:  a.FlexibleTerminals,
		Threshold: a.Threshold,
		Epsilon:   a.Epsilon,
	}
}

// String summarizes the options for log lines.
func (o Options) String() string {
	return fmt.Sprintf("flexible=%t threshold=%g epsilon=%g", o.Flexible, o.Threshold, o.Epsilon)
}
