// Package cache provides the key-value stores used to remember dispatched
// issues across calls.
package cache

import (
	"context"
	"time"
)

// Store is a string key-value store with per-key expiration
type Store interface {
	// Get returns the value for key; ok is false when missing or expired
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key for ttl. A non-positive ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key
	Delete(ctx context.Context, key string) error
}
