// Package observability provides hooks for metrics, tracing, and logging.
//
// The scoring libraries stay free of any observability backend. Consumers
// register hooks at startup and receive events about alignments, corpus
// runs, cache lookups and API requests.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, which keeps the import
// graph acyclic and lets any backend (Prometheus, OpenTelemetry, plain logs)
// plug in.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScoringHooks(&myScoringHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scoring().OnAlignStart(ctx, id, refNodes, predNodes)
//	// ... align ...
//	observability.Scoring().OnAlignComplete(ctx, id, score, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scoring Hooks
// =============================================================================

// ScoringHooks receives events from example and corpus scoring.
type ScoringHooks interface {
	// Per-example events
	OnAlignStart(ctx context.Context, id string, refNodes, predNodes int)
	OnAlignComplete(ctx context.Context, id string, score float64, duration time.Duration, err error)

	// Corpus events
	OnCorpusStart(ctx context.Context, runID string, examples int)
	OnCorpusComplete(ctx context.Context, runID string, scored, failed int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, backend string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, backend string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, backend string, size int)
}

// =============================================================================
// Server Hooks
// =============================================================================

// ServerHooks receives events from the HTTP scoring service.
type ServerHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopScoringHooks is a no-op implementation of ScoringHooks.
type NoopScoringHooks struct{}

func (NoopScoringHooks) OnAlignStart(context.Context, string, int, int) {}
func (NoopScoringHooks) OnAlignComplete(context.Context, string, float64, time.Duration, error) {
}
func (NoopScoringHooks) OnCorpusStart(context.Context, string, int)                         {}
func (NoopScoringHooks) OnCorpusComplete(context.Context, string, int, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                       {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scoringHooks ScoringHooks = NoopScoringHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	serverHooks  ServerHooks  = NoopServerHooks{}
	hooksMu      sync.RWMutex
)

// SetScoringHooks registers custom scoring hooks.
// This should be called once at application startup before any scoring.
func SetScoringHooks(h ScoringHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scoringHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetServerHooks registers custom server hooks.
func SetServerHooks(h ServerHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		serverHooks = h
	}
}

// Scoring returns the registered scoring hooks.
func Scoring() ScoringHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scoringHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Server returns the registered server hooks.
func Server() ServerHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return serverHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scoringHooks = NoopScoringHooks{}
	cacheHooks = NoopCacheHooks{}
	serverHooks = NoopServerHooks{}
}
