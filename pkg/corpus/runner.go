package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/structiou/pkg/cache"
	"github.com/matzehuels/structiou/pkg/errors"
	"github.com/matzehuels/structiou/pkg/metric"
	"github.com/matzehuels/structiou/pkg/observability"
	"github.com/matzehuels/structiou/pkg/span"
)

// Runner scores examples with caching.
// Both CLI and server use it so that caching and logging behave the same.
//
// The Runner holds no per-run state. Multiple goroutines can share one
// Runner with different options.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
	Workers int
	TTL     time.Duration

	// Progress, if set, is called once per finished example during Run
	// with the number finished so far. Calls are serialized.
	Progress func(done, total int)
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
		Workers: DefaultWorkers,
		TTL:     cache.DefaultScoreTTL,
	}
}

// Score evaluates a single example.
func (r *Runner) Score(ctx context.Context, e Example, opts Options) (metric.Report, error) {
	rep, _, err := r.ScoreWithCacheInfo(ctx, e, opts)
	return rep, err
}

// ScoreWithCacheInfo evaluates a single example and reports whether the
// result came from the cache.
func (r *Runner) ScoreWithCacheInfo(ctx context.Context, e Example, opts Options) (metric.Report, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return metric.Report{}, false, err
	}
	return r.score(ctx, e, opts, e.Build)
}

// ScoreTrees builds both trees of e once, scores them, and returns the
// built trees with the report. Callers that draw the alignment use it to
// avoid parsing the notation twice.
func (r *Runner) ScoreTrees(ctx context.Context, e Example, opts Options) (ref, pred *span.Tree, rep metric.Report, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, nil, metric.Report{}, err
	}
	ref, pred, err = e.Build()
	if err != nil {
		return nil, nil, metric.Report{}, err
	}
	built := func() (*span.Tree, *span.Tree, error) { return ref, pred, nil }
	rep, _, err = r.score(ctx, e, opts, built)
	if err != nil {
		return nil, nil, metric.Report{}, err
	}
	return ref, pred, rep, nil
}

// score looks e up in the cache and otherwise evaluates the trees returned
// by build.
func (r *Runner) score(ctx context.Context, e Example, opts Options, build func() (ref, pred *span.Tree, err error)) (metric.Report, bool, error) {
	hooks := observability.Scoring()
	aopts := opts.alignOptions(e)

	hash, err := e.Hash()
	if err != nil {
		return metric.Report{}, false, err
	}
	key := r.Keyer.ScoreKey(hash, keyOpts(aopts))

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var rep metric.Report
			if err := json.Unmarshal(data, &rep); err == nil {
				return rep, true, nil
			}
			// Undecodable entries are recomputed and overwritten.
		}
	}

	ref, pred, err := build()
	if err != nil {
		hooks.OnAlignComplete(ctx, e.ID, 0, 0, err)
		return metric.Report{}, false, err
	}

	start := time.Now()
	hooks.OnAlignStart(ctx, e.ID, ref.Len(), pred.Len())
	rep := metric.Evaluate(ref, pred, metric.WithOptions(aopts))
	hooks.OnAlignComplete(ctx, e.ID, rep.Score, time.Since(start), nil)

	if data, err := json.Marshal(rep); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
			r.Logger.Warn("cache write failed", "id", e.ID, "error", err)
		}
	}
	return rep, false, nil
}

// Run scores every example. Per-example failures are recorded on the
// corresponding Result; the returned error is non-nil only for invalid
// options, invalid or duplicate IDs, or a cancelled context.
func (r *Runner) Run(ctx context.Context, examples []Example, opts Options) (*Summary, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	examples = append([]Example(nil), examples...)
	if err := normalizeIDs(examples); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := r.Logger.With("run", runID[:8])
	hooks := observability.Scoring()
	started := time.Now()

	hooks.OnCorpusStart(ctx, runID, len(examples))
	logger.Info("scoring corpus", "examples", len(examples), "workers", r.workers(), "options", opts)

	results := make([]Result, len(examples))
	var (
		mu       sync.Mutex
		finished int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())
	for i := range examples {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.scoreExample(gctx, logger, examples[i], opts)
			if r.Progress != nil {
				mu.Lock()
				finished++
				r.Progress(finished, len(examples))
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := summarize(runID, results, time.Since(started))
	hooks.OnCorpusComplete(ctx, runID, s.Scored, s.Failed, s.Duration)
	logger.Info("scored corpus",
		"scored", s.Scored,
		"failed", s.Failed,
		"cached", s.CacheHits,
		"mean", fmt.Sprintf("%.4f", s.Mean),
		"duration", s.Duration)
	return s, nil
}

func (r *Runner) scoreExample(ctx context.Context, logger *log.Logger, e Example, opts Options) Result {
	start := time.Now()
	rep, hit, err := r.score(ctx, e, opts, e.Build)
	res := Result{ID: e.ID, Cached: hit, Duration: time.Since(start)}
	if err != nil {
		res.Error = err.Error()
		res.Code = errors.GetCode(err)
		logger.Warn("example failed", "id", e.ID, "error", err)
		return res
	}
	res.Report = &rep
	res.Score = rep.Score
	logger.Debug("scored example", "id", e.ID, "score", fmt.Sprintf("%.4f", rep.Score), "cached", hit)
	return res
}

func (r *Runner) workers() int {
	switch {
	case r.Workers <= 0:
		return DefaultWorkers
	case r.Workers > MaxWorkers:
		return MaxWorkers
	default:
		return r.Workers
	}
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
