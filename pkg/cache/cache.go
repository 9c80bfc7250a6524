// Package cache stores fetched repository documents between runs.
//
// The mirror re-reads the master index, every group index and one POM per
// version on each run. POMs never change once published and the indexes
// change slowly, so keeping them around makes a re-run over an already
// materialized tree cheap for the remote repository.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON envelope per key under a local directory (default)
//   - [RedisCache]: a shared Redis instance, for several mirrors on one network
//   - [NullCache]: caching disabled
//
// Binary artifacts are never cached; the mirror tree itself is their store.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the data for key. A miss (absent or expired) is reported
	// as ok=false with a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
