// Package cache stores rendered overlays so repeated renders of the same
// screenshot, layout and options skip decoding and drawing.
//
// Backends:
//   - [NullCache]: caching disabled
//   - [FileCache]: one file per entry under the user's cache directory (CLI)
//   - [RedisCache]: shared cache for multiple API instances
//
// Keys come from a [Keyer] and are content hashes of the inputs, so a
// changed image or layout never hits a stale entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found.
	// Expired entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is how long rendered artifacts are kept.
const DefaultTTL = 7 * 24 * time.Hour
