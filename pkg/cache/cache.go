// Package cache stores scoring results keyed by the content they were
// computed from.
//
// Three backends implement [Cache]: [FileCache] for the CLI, [RedisCache]
// for shared deployments of the scoring service, and [NullCache] when caching
// is disabled. Keys come from a [Keyer] so that the same example scored with
// different alignment options never collides.
package cache

import (
	"context"
	"fmt"
	"time"
)

// DefaultScoreTTL is how long a cached score stays valid.
const DefaultScoreTTL = 30 * 24 * time.Hour

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// ScoreKeyOpts holds the alignment options that change a score.
type ScoreKeyOpts struct {
	Flexible  bool    `json:"flexible"`
	Threshold float64 `json:"threshold"`
	Epsilon   float64 `json:"epsilon"`
}

// Keyer builds cache keys.
type Keyer interface {
	// ScoreKey returns the key for a scored example, given the content hash
	// of its trees and boundaries.
	ScoreKey(exampleHash string, opts ScoreKeyOpts) string
}

// DefaultKeyer produces keys of the form "score:v1:<sha256>".
type DefaultKeyer struct {
	version string
}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{version: "v1"}
}

// ScoreKey implements Keyer.
func (k *DefaultKeyer) ScoreKey(exampleHash string, opts ScoreKeyOpts) string {
	return hashKey(fmt.Sprintf("score:%s", k.version), exampleHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)
