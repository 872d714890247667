package services

import (
	"context"
	"time"
)

// HealthChecker defines basic health check capabilities
type HealthChecker interface {
	// Ping tests the service connection
	Ping(ctx context.Context) error
}

// Closer defines cleanup capabilities
type Closer interface {
	// Close closes the service connection
	Close() error
}

// Cache is the key/value store used for media preloading and player
// settings.
type Cache interface {
	HealthChecker
	Closer

	// Set stores a value with expiration (0 means no expiry)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Get retrieves a value; returns empty string when the key does
	// not exist
	Get(ctx context.Context, key string) (string, error)

	// Del removes keys
	Del(ctx context.Context, keys ...string) error

	// Exists reports whether a key is present
	Exists(ctx context.Context, key string) (bool, error)
}
