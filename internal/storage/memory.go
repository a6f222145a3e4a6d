package storage

import (
	"context"

	"github.com/zjrosen/themer/internal/cachemanager"
)

// MemoryBackend keeps entries in process memory. Expiry is handled by the
// envelope, so the cache itself never evicts.
type MemoryBackend struct {
	cache cachemanager.CacheManager[string, string]
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		cache: cachemanager.NewInMemoryCacheManager[string, string](
			"preferences", cachemanager.NoExpiration, cachemanager.DefaultCleanupInterval),
	}
}

func (m *MemoryBackend) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.cache.Get(ctx, key)
	return v, ok, nil
}

func (m *MemoryBackend) SetItem(ctx context.Context, key, value string) error {
	m.cache.Set(ctx, key, value, cachemanager.NoExpiration)
	return nil
}

func (m *MemoryBackend) RemoveItem(ctx context.Context, key string) error {
	return m.cache.Delete(ctx, key)
}

func (m *MemoryBackend) Keys(ctx context.Context) ([]string, error) {
	return m.cache.Keys(ctx), nil
}

var _ Backend = (*MemoryBackend)(nil)
