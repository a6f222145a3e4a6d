package cachemanager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCacheManager[K ~string, V any] struct {
	mock.Mock
}

func (m *mockCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	args := m.Called(ctx, key)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	args := m.Called(ctx, key, ttl)
	return args.Get(0).(V), args.Bool(1)
}

func (m *mockCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCacheManager[K, V]) Keys(ctx context.Context) []K {
	return m.Called(ctx).Get(0).([]K)
}

func (m *mockCacheManager[K, V]) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// registrySnapshot stands in for a registry state: a default theme and
// the number of other themes.
type registrySnapshot struct {
	Default string
	Themes  int
}

func snapshotKey(s registrySnapshot) (fingerprint, error) {
	if s.Default == "" {
		return "", errors.New("no default theme")
	}
	return fingerprint(s.Default + "/" + string(rune('0'+s.Themes))), nil
}

func renderFn(calls *atomic.Int64) func(context.Context, fingerprint, registrySnapshot) (compiled, error) {
	return func(_ context.Context, fp fingerprint, s registrySnapshot) (compiled, error) {
		calls.Add(1)
		return compiled{CSS: ":root {} /* " + string(fp) + " */", Variants: s.Themes}, nil
	}
}

func TestReadThroughCache_Bypass(t *testing.T) {
	m := &mockCacheManager[fingerprint, compiled]{}
	var calls atomic.Int64
	rt := NewReadThroughCache(m, snapshotKey, renderFn(&calls), WithBypass(true))

	got, lookup, err := rt.Get(context.Background(), registrySnapshot{Default: "light-theme", Themes: 3})
	require.NoError(t, err)
	require.Equal(t, 3, got.Variants)
	require.Equal(t, fingerprint("light-theme/3"), lookup.Key)
	require.False(t, lookup.Hit)
	require.EqualValues(t, 1, calls.Load())
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_Hit(t *testing.T) {
	m := &mockCacheManager[fingerprint, compiled]{}
	m.On("Get", mock.Anything, fingerprint("light-theme/1")).Return(compiled{CSS: "cached"}, true).Once()
	var calls atomic.Int64
	rt := NewReadThroughCache(m, snapshotKey, renderFn(&calls))

	got, lookup, err := rt.Get(context.Background(), registrySnapshot{Default: "light-theme", Themes: 1})
	require.NoError(t, err)
	require.Equal(t, "cached", got.CSS)
	require.True(t, lookup.Hit)
	require.Zero(t, calls.Load())
	m.AssertExpectations(t)
}

func TestReadThroughCache_MissStoresWithTTL(t *testing.T) {
	m := &mockCacheManager[fingerprint, compiled]{}
	want := compiled{CSS: ":root {} /* dark-theme/2 */", Variants: 2}
	m.On("Get", mock.Anything, fingerprint("dark-theme/2")).Return(compiled{}, false).Once()
	m.On("Set", mock.Anything, fingerprint("dark-theme/2"), want, time.Minute).Return().Once()
	var calls atomic.Int64
	rt := NewReadThroughCache(m, snapshotKey, renderFn(&calls), WithTTL(time.Minute))

	got, lookup, err := rt.Get(context.Background(), registrySnapshot{Default: "dark-theme", Themes: 2})
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.False(t, lookup.Hit)
	require.EqualValues(t, 1, calls.Load())
	m.AssertExpectations(t)
}

func TestReadThroughCache_RefreshOnHit(t *testing.T) {
	m := &mockCacheManager[fingerprint, compiled]{}
	m.On("GetWithRefresh", mock.Anything, fingerprint("light-theme/0"), time.Hour).Return(compiled{CSS: "cached"}, true).Once()
	var calls atomic.Int64
	rt := NewReadThroughCache(m, snapshotKey, renderFn(&calls), WithTTL(time.Hour), WithRefreshOnHit())

	_, lookup, err := rt.Get(context.Background(), registrySnapshot{Default: "light-theme"})
	require.NoError(t, err)
	require.True(t, lookup.Hit)
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	m.AssertExpectations(t)
}

func TestReadThroughCache_LoadErrorNotStored(t *testing.T) {
	m := &mockCacheManager[fingerprint, compiled]{}
	m.On("Get", mock.Anything, fingerprint("light-theme/0")).Return(compiled{}, false).Once()
	boom := errors.New("render failed")
	rt := NewReadThroughCache(m, snapshotKey, func(context.Context, fingerprint, registrySnapshot) (compiled, error) {
		return compiled{}, boom
	})

	_, _, err := rt.Get(context.Background(), registrySnapshot{Default: "light-theme"})
	require.ErrorIs(t, err, boom)
	m.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_KeyError(t *testing.T) {
	m := &mockCacheManager[fingerprint, compiled]{}
	var calls atomic.Int64
	rt := NewReadThroughCache(m, snapshotKey, renderFn(&calls))

	_, _, err := rt.Get(context.Background(), registrySnapshot{})
	require.ErrorContains(t, err, "no default theme")
	require.Zero(t, calls.Load())
	m.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	cache := NewInMemoryCacheManager[fingerprint, compiled]("builds", DefaultExpiration, DefaultCleanupInterval)
	var calls atomic.Int64
	release := make(chan struct{})
	rt := NewReadThroughCache(cache, snapshotKey, func(ctx context.Context, fp fingerprint, s registrySnapshot) (compiled, error) {
		<-release
		return renderFn(&calls)(ctx, fp, s)
	})

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := rt.Get(context.Background(), registrySnapshot{Default: "light-theme", Themes: 4})
			assert.NoError(t, err)
			assert.Equal(t, 4, got.Variants)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load())
	stats := rt.Stats(context.Background())
	require.EqualValues(t, 1, stats.Loads)
	require.EqualValues(t, 5, stats.Hits+stats.Misses)
	require.Equal(t, 1, stats.Entries)
}

func TestReadThroughCache_InvalidateWithRealCache(t *testing.T) {
	cache := NewInMemoryCacheManager[fingerprint, compiled]("builds", DefaultExpiration, DefaultCleanupInterval)
	var calls atomic.Int64
	rt := NewReadThroughCache(cache, snapshotKey, renderFn(&calls))
	ctx := context.Background()
	snap := registrySnapshot{Default: "light-theme", Themes: 1}

	_, first, err := rt.Get(ctx, snap)
	require.NoError(t, err)
	_, second, err := rt.Get(ctx, snap)
	require.NoError(t, err)
	require.False(t, first.Hit)
	require.True(t, second.Hit)
	require.EqualValues(t, 1, calls.Load())

	rt.Invalidate(ctx)
	require.Zero(t, rt.Stats(ctx).Entries)
	_, third, err := rt.Get(ctx, snap)
	require.NoError(t, err)
	require.False(t, third.Hit)
	require.EqualValues(t, 2, calls.Load())
	require.Equal(t, Stats{Hits: 1, Misses: 2, Loads: 2, Entries: 1}, rt.Stats(ctx))
}
