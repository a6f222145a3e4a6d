// Package storage persists small UI preferences, such as the active theme,
// in a key/value backend. Entries are JSON envelopes carrying an optional
// expiry; reading an expired or unreadable entry yields the caller's
// default instead of an error.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zjrosen/themer/internal/log"
)

// DefaultTTL is the lifetime Set callers use unless they need another.
const DefaultTTL = 7 * 24 * time.Hour

// Backend is a string key/value store.
type Backend interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// envelope is the stored form of a value. Expire is a Unix time in
// milliseconds, or null for entries that never expire.
type envelope struct {
	Value  json.RawMessage `json:"value"`
	Expire *int64          `json:"expire"`
}

// storedEnvelope is an envelope as read back. Expire stays raw so that an
// explicit null can be told apart from a missing field.
type storedEnvelope struct {
	Value  json.RawMessage `json:"value"`
	Expire json.RawMessage `json:"expire"`
}

// expired reports whether the entry is past its expiry. Only an explicit
// null never expires; an entry without the field counts as expired.
func (e storedEnvelope) expired(now time.Time) (bool, error) {
	switch {
	case e.Expire == nil:
		return true, nil
	case string(e.Expire) == "null":
		return false, nil
	}
	var ms int64
	if err := json.Unmarshal(e.Expire, &ms); err != nil {
		return false, fmt.Errorf("expire: %w", err)
	}
	return ms < now.UnixMilli(), nil
}

// Storage namespaces keys with a prefix and handles expiry.
type Storage struct {
	prefix  string
	backend Backend
	now     func() time.Time
}

// New returns a Storage over backend. Keys are stored upper-cased with
// prefix prepended.
func New(backend Backend, prefix string) *Storage {
	return &Storage{prefix: prefix, backend: backend, now: time.Now}
}

func (s *Storage) key(key string) string {
	return strings.ToUpper(s.prefix + key)
}

// Set stores value under key. A ttl of zero or less never expires.
func (s *Storage) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	env := envelope{Value: raw}
	if ttl > 0 {
		expire := s.now().Add(ttl).UnixMilli()
		env.Expire = &expire
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.backend.SetItem(ctx, s.key(key), string(data)); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	log.Debug(log.CatStorage, "value stored", "key", s.key(key), "ttl", ttl)
	return nil
}

// errMissing marks a lookup that should fall back to the default.
var errMissing = errors.New("missing")

func (s *Storage) load(ctx context.Context, key string) (json.RawMessage, error) {
	full := s.key(key)
	item, ok, err := s.backend.GetItem(ctx, full)
	if err != nil {
		log.ErrorErr(log.CatStorage, "read failed", err, "key", full)
		return nil, err
	}
	if !ok || item == "" {
		return nil, errMissing
	}

	var env storedEnvelope
	if err := json.Unmarshal([]byte(item), &env); err != nil {
		log.Warn(log.CatStorage, "corrupt entry", "key", full, "error", err)
		return nil, errMissing
	}
	expired, err := env.expired(s.now())
	if err != nil {
		log.Warn(log.CatStorage, "corrupt entry", "key", full, "error", err)
		return nil, errMissing
	}
	if expired {
		log.Debug(log.CatStorage, "entry expired", "key", full)
		if err := s.backend.RemoveItem(ctx, full); err != nil {
			log.ErrorErr(log.CatStorage, "removing expired entry failed", err, "key", full)
		}
		return nil, errMissing
	}
	return env.Value, nil
}

// Get decodes the value stored under key into T. It returns def when the
// entry is absent, expired or cannot be decoded.
func Get[T any](ctx context.Context, s *Storage, key string, def T) T {
	raw, err := s.load(ctx, key)
	if err != nil {
		return def
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		log.Warn(log.CatStorage, "stored value has unexpected type", "key", s.key(key), "error", err)
		return def
	}
	return out
}

// GetString is Get for string values.
func (s *Storage) GetString(ctx context.Context, key, def string) string {
	return Get(ctx, s, key, def)
}

// Remove deletes key.
func (s *Storage) Remove(ctx context.Context, key string) error {
	return s.backend.RemoveItem(ctx, s.key(key))
}

// Clear deletes every key under this storage's prefix. With an empty
// prefix that is the whole backend.
func (s *Storage) Clear(ctx context.Context) error {
	keys, err := s.backend.Keys(ctx)
	if err != nil {
		return fmt.Errorf("listing keys: %w", err)
	}
	prefix := strings.ToUpper(s.prefix)
	removed := 0
	for _, k := range keys {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if err := s.backend.RemoveItem(ctx, k); err != nil {
			return fmt.Errorf("removing %s: %w", k, err)
		}
		removed++
	}
	log.Debug(log.CatStorage, "storage cleared", "prefix", prefix, "removed", removed)
	return nil
}
