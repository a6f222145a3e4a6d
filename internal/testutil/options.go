package testutil

import (
	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/tokens"
)

// ThemeOption configures a theme added with WithTheme.
type ThemeOption func(*config.ThemeConfig)

// Extend sets the theme's tokens from alternating key/value pairs, as
// accepted by tokens.GroupOf.
func Extend(pairs ...any) ThemeOption {
	return func(t *config.ThemeConfig) {
		t.Extend = tokens.GroupOf(pairs...)
	}
}

// Color sets a single colors.<name>.DEFAULT token, keeping other tokens.
func Color(name, value string) ThemeOption {
	return func(t *config.ThemeConfig) {
		if t.Extend == nil {
			t.Extend = tokens.NewGroup()
		}
		t.Extend.SetPath([]string{"colors", name, "DEFAULT"}, tokens.Leaf(value))
	}
}

// Selectors scopes the theme to CSS selectors.
func Selectors(selectors ...string) ThemeOption {
	return func(t *config.ThemeConfig) { t.Selectors = selectors }
}

// Media scopes the theme to a media query.
func Media(query string) ThemeOption {
	return func(t *config.ThemeConfig) { t.MediaQuery = query }
}

// Class scopes the theme to a class named after it.
func Class() ThemeOption {
	return func(t *config.ThemeConfig) { t.Class = true }
}

// FromPreset seeds the theme with a built-in preset.
func FromPreset(name string) ThemeOption {
	return func(t *config.ThemeConfig) { t.Preset = name }
}
