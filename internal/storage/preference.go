package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/zjrosen/themer/internal/theme"
)

// DefaultPreferenceKey is where the active theme name is kept.
const DefaultPreferenceKey = "APP_THEME"

// ThemeFinder reports whether a theme is registered.
type ThemeFinder interface {
	Find(name string) (theme.Entry, bool)
}

// Preference remembers the user's active theme.
type Preference struct {
	store  *Storage
	key    string
	ttl    time.Duration
	themes ThemeFinder
}

// NewPreference returns a Preference stored under key. An empty key means
// DefaultPreferenceKey. themes may be nil, which skips existence checks.
func NewPreference(store *Storage, key string, ttl time.Duration, themes ThemeFinder) *Preference {
	if key == "" {
		key = DefaultPreferenceKey
	}
	return &Preference{store: store, key: key, ttl: ttl, themes: themes}
}

// Active returns the stored theme, or def when nothing usable is stored.
// A stored name that is no longer registered also yields def.
func (p *Preference) Active(ctx context.Context, def string) string {
	name := p.store.GetString(ctx, p.key, "")
	if name == "" {
		return def
	}
	if p.themes != nil {
		if _, ok := p.themes.Find(name); !ok {
			return def
		}
	}
	return name
}

// SetActive stores name as the active theme.
func (p *Preference) SetActive(ctx context.Context, name string) error {
	if err := theme.ValidateName(name); err != nil {
		return err
	}
	if p.themes != nil {
		if _, ok := p.themes.Find(name); !ok {
			return fmt.Errorf("theme %q: %w", name, theme.ErrNotFound)
		}
	}
	return p.store.Set(ctx, p.key, name, p.ttl)
}

// Reset forgets the active theme.
func (p *Preference) Reset(ctx context.Context) error {
	return p.store.Remove(ctx, p.key)
}
