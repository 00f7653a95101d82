package cache

import (
	"context"
	"time"

	"github.com/matzehuels/structiou/pkg/observability"
)

// NullCache stores nothing: every Get misses and every write is dropped.
// It stands in when scoring runs uncached (--no-cache, no usable cache
// directory, or a corpus.Runner built without a cache). Misses are still
// reported to the cache hooks so verbose runs show why nothing was reused.
type NullCache struct{}

// NewNullCache returns a [NullCache].
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(ctx context.Context, _ string) ([]byte, bool, error) {
	observability.Cache().OnCacheMiss(ctx, "null")
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Clear(context.Context) error                              { return nil }
func (NullCache) Close() error                                             { return nil }

var (
	_ Cache   = NullCache{}
	_ Clearer = NullCache{}
)
