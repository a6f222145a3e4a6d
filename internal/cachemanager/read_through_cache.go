package cachemanager

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zjrosen/themer/internal/log"
)

// ReadThroughCache memoizes an expensive load, such as rendering a
// stylesheet, under a key derived from the load's input. Concurrent misses
// on the same key share a single load.
type ReadThroughCache[K ~string, V any, I any] struct {
	cache CacheManager[K, V]
	key   func(I) (K, error)
	load  func(ctx context.Context, key K, input I) (V, error)

	ttl     time.Duration
	refresh bool
	bypass  bool

	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
	loads  atomic.Int64
}

// Lookup describes how a Get was served.
type Lookup[K ~string] struct {
	Key K
	Hit bool
	// Shared is set when the value came from a load started by another
	// caller.
	Shared bool
}

// Stats counts cache traffic since construction.
type Stats struct {
	Hits   int64
	Misses int64
	// Loads is how many times the load function actually ran.
	Loads   int64
	Entries int
}

// ReadThroughOption configures a ReadThroughCache.
type ReadThroughOption func(*readThroughOptions)

type readThroughOptions struct {
	ttl     time.Duration
	refresh bool
	bypass  bool
}

// WithTTL sets the lifetime of stored values. The default is
// DefaultExpiration.
func WithTTL(ttl time.Duration) ReadThroughOption {
	return func(o *readThroughOptions) { o.ttl = ttl }
}

// WithRefreshOnHit restarts a value's lifetime every time it is served.
func WithRefreshOnHit() ReadThroughOption {
	return func(o *readThroughOptions) { o.refresh = true }
}

// WithBypass disables caching when on; every Get loads.
func WithBypass(on bool) ReadThroughOption {
	return func(o *readThroughOptions) { o.bypass = on }
}

// NewReadThroughCache returns a cache that derives keys with key and fills
// misses with load.
func NewReadThroughCache[K ~string, V any, I any](
	cache CacheManager[K, V],
	key func(I) (K, error),
	load func(ctx context.Context, key K, input I) (V, error),
	opts ...ReadThroughOption,
) *ReadThroughCache[K, V, I] {
	o := readThroughOptions{ttl: DefaultExpiration}
	for _, opt := range opts {
		opt(&o)
	}
	return &ReadThroughCache[K, V, I]{
		cache:   cache,
		key:     key,
		load:    load,
		ttl:     o.ttl,
		refresh: o.refresh,
		bypass:  o.bypass,
	}
}

// Get returns the value for input, loading and storing it on a miss.
// Load errors are returned as-is and nothing is stored.
func (r *ReadThroughCache[K, V, I]) Get(ctx context.Context, input I) (V, Lookup[K], error) {
	var zero V
	key, err := r.key(input)
	if err != nil {
		return zero, Lookup[K]{}, fmt.Errorf("deriving cache key: %w", err)
	}
	lookup := Lookup[K]{Key: key}

	if !r.bypass {
		var (
			v  V
			ok bool
		)
		if r.refresh {
			v, ok = r.cache.GetWithRefresh(ctx, key, r.ttl)
		} else {
			v, ok = r.cache.Get(ctx, key)
		}
		if ok {
			r.hits.Add(1)
			lookup.Hit = true
			return v, lookup, nil
		}
	}
	r.misses.Add(1)

	res, err, shared := r.group.Do(string(key), func() (any, error) {
		r.loads.Add(1)
		v, err := r.load(ctx, key, input)
		if err != nil {
			return nil, err
		}
		if !r.bypass {
			r.cache.Set(ctx, key, v, r.ttl)
		}
		return v, nil
	})
	lookup.Shared = shared
	if err != nil {
		return zero, lookup, err
	}
	v, _ := res.(V)
	return v, lookup, nil
}

// Invalidate drops every stored value, e.g. after a config reload.
func (r *ReadThroughCache[K, V, I]) Invalidate(ctx context.Context) {
	if err := r.cache.Flush(ctx); err != nil {
		log.ErrorErr(log.CatCache, "flush failed", err)
	}
}

// Stats reports hit, miss and load counts and the number of live entries.
func (r *ReadThroughCache[K, V, I]) Stats(ctx context.Context) Stats {
	return Stats{
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
		Loads:   r.loads.Load(),
		Entries: len(r.cache.Keys(ctx)),
	}
}
