// Package cli implements the structiou command-line interface.
//
// # Commands
//
// The main commands are:
//   - score: Score one predicted tree against a reference
//   - eval: Score a corpus manifest and summarize the results
//   - render: Draw the alignment of two trees (SVG, DOT, PDF, PNG)
//   - serve: Run the HTTP scoring service
//   - cache: Manage the score cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports every alignment and cache lookup. Loggers are passed through
// context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/structiou/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, e.g. "Scored 120 examples (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability hooks backed by the logger
// =============================================================================

// logHooks reports scoring and cache events at debug level.
type logHooks struct {
	logger *log.Logger
}

func newLogHooks(l *log.Logger) *logHooks {
	return &logHooks{logger: l}
}

func (h *logHooks) OnAlignStart(_ context.Context, id string, refNodes, predNodes int) {
	h.logger.Debug("aligning", "id", id, "ref_nodes", refNodes, "pred_nodes", predNodes)
}

func (h *logHooks) OnAlignComplete(_ context.Context, id string, score float64, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("alignment failed", "id", id, "error", err)
		return
	}
	h.logger.Debug("aligned", "id", id, "score", score, "duration", d)
}

func (h *logHooks) OnCorpusStart(_ context.Context, runID string, examples int) {
	h.logger.Debug("corpus started", "run", runID, "examples", examples)
}

func (h *logHooks) OnCorpusComplete(_ context.Context, runID string, scored, failed int, d time.Duration) {
	h.logger.Debug("corpus complete", "run", runID, "scored", scored, "failed", failed, "duration", d)
}

func (h *logHooks) OnCacheHit(_ context.Context, backend string) {
	h.logger.Debug("cache hit", "backend", backend)
}

func (h *logHooks) OnCacheMiss(_ context.Context, backend string) {
	h.logger.Debug("cache miss", "backend", backend)
}

func (h *logHooks) OnCacheSet(_ context.Context, backend string, size int) {
	h.logger.Debug("cache set", "backend", backend, "bytes", size)
}

var (
	_ observability.ScoringHooks = (*logHooks)(nil)
	_ observability.CacheHooks   = (*logHooks)(nil)
)
