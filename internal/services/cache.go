package services

import (
	"context"
	"time"
)

// Cache is a small key/value cache with expiration, used to time-box
// reads of rarely-changing lookups (settings, categories). Live counters
// never go through it.
type Cache interface {
	// Ping tests the cache connection
	Ping(ctx context.Context) error

	// Set stores a key-value pair with optional expiration
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get retrieves a value by key. A missing key returns "" with a
	// false second value, not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Del deletes one or more keys
	Del(ctx context.Context, keys ...string) error

	// Close closes the cache connection
	Close() error
}
