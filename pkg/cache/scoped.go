package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tools or users can
// share one backend without key collisions.
//
// Example usage:
//
//	// Keys of one placement run
//	runKeyer := NewScopedKeyer(NewDefaultKeyer(), "run:macro_blk7:")
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

// BatchKey generates a prefixed key for batch caching.
func (k *ScopedKeyer) BatchKey(netsHash string, opts BatchKeyOpts) string {
	return k.prefix + k.inner.BatchKey(netsHash, opts)
}
