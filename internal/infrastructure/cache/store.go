// Package cache holds the key-value stores, locks and live transcript hubs
// backed either by process memory or by Redis.
package cache

import (
	"context"
	"time"
)

// Store is a string key-value store with expiration
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX sets key only if it is absent and reports whether it did
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	// CompareAndDelete removes key only while it still holds value
	CompareAndDelete(ctx context.Context, key, value string) (bool, error)
}
