// Package cache stores computed wire image batches keyed by their inputs.
//
// A batch is a pure function of its net map and grid size, so the cache key
// is a hash of the canonical input encoding. Backends:
//   - [FileCache]: one JSON entry per key under a local directory (CLI)
//   - [RedisCache]: a shared Redis instance for several hosts
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLBatch is how long computed batches stay cached.
const TTLBatch = 7 * 24 * time.Hour

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys.
type Keyer interface {
	// BatchKey returns the key of the batch computed from the net map with
	// the given content hash.
	BatchKey(netsHash string, opts BatchKeyOpts) string
}

// BatchKeyOpts are the inputs besides the nets that determine a batch.
type BatchKeyOpts struct {
	Grid int `json:"grid"`
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a DefaultKeyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// BatchKey implements Keyer.
func (DefaultKeyer) BatchKey(netsHash string, opts BatchKeyOpts) string {
	return hashKey("batch", netsHash, opts)
}

var _ Keyer = DefaultKeyer{}
