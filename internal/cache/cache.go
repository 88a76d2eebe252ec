// Package cache provides TTL-based response caching for the API client.
// Two backends are supplied: an in-process map for single-binary use and a
// Redis-backed store for deployments that share a cache across processes.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque response payloads under string keys with a TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the cached payload and whether the key was present and live.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a payload; ttl <= 0 means the entry is not cached.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
