package cache

// ScopedKeyer wraps a Keyer with a prefix so that several scoring services
// can share one Redis instance without seeing each other's entries.
//
//	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), "structiou:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ScoreKey generates a prefixed key for a scored example.
func (k *ScopedKeyer) ScoreKey(exampleHash string, opts ScoreKeyOpts) string {
	return k.prefix + k.inner.ScoreKey(exampleHash, opts)
}
