// Package cache provides the key-value stores backing the cache-aside layer.
// Every entry carries its own TTL; there is no eviction beyond expiry.
package cache

import (
	"context"
	"time"
)

// Store is a key-value store with per-entry expiry.
type Store interface {
	// Get returns the value for key. The second return is false on a miss;
	// a non-nil error indicates the store itself failed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Close releases the store.
	Close() error
}
