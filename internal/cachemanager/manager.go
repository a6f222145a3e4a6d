// Package cachemanager keeps rendered build results keyed by registry
// fingerprint and backs the in-memory preference store.
package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a string-keyed cache of V with per-entry lifetimes.
// Implementations never fail a read; a miss and a wrongly typed entry look
// the same to callers.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	// GetWithRefresh is Get that restarts the entry's lifetime on a hit.
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	// Keys lists live keys in sorted order.
	Keys(ctx context.Context) []K
	Flush(ctx context.Context) error
}
