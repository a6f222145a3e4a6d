// Package testutil builds config files and preference stores for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/tokens"
)

// ConfigBuilder accumulates a config file and writes it to a temp dir.
type ConfigBuilder struct {
	t         *testing.T
	presets   bool
	def       string
	themes    []config.ThemeConfig
	utilities *tokens.Group
	css       string
	flags     map[string]bool
}

// NewConfigBuilder returns a builder for a config without presets.
func NewConfigBuilder(t *testing.T) *ConfigBuilder {
	t.Helper()
	return &ConfigBuilder{t: t, flags: map[string]bool{}}
}

// WithPresets enables the built-in presets.
func (b *ConfigBuilder) WithPresets() *ConfigBuilder {
	b.presets = true
	return b
}

// WithTheme appends a theme.
func (b *ConfigBuilder) WithTheme(name string, opts ...ThemeOption) *ConfigBuilder {
	tc := config.ThemeConfig{Name: name}
	for _, opt := range opts {
		opt(&tc)
	}
	b.themes = append(b.themes, tc)
	return b
}

// WithDefault sets default_theme.
func (b *ConfigBuilder) WithDefault(name string) *ConfigBuilder {
	b.def = name
	return b
}

// WithUtilities sets inline utilities from key/value pairs.
func (b *ConfigBuilder) WithUtilities(pairs ...any) *ConfigBuilder {
	b.utilities = tokens.GroupOf(pairs...)
	return b
}

// WithUtilitiesCSS writes text to utilities.css next to the config and
// points utilities_css at it.
func (b *ConfigBuilder) WithUtilitiesCSS(text string) *ConfigBuilder {
	b.css = text
	return b
}

// WithFlag sets a feature flag.
func (b *ConfigBuilder) WithFlag(name string, on bool) *ConfigBuilder {
	b.flags[name] = on
	return b
}

// Write writes config.yaml into a fresh temp dir and returns its path.
func (b *ConfigBuilder) Write() string {
	b.t.Helper()
	dir := b.t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	doc := map[string]any{
		"presets": b.presets,
		"output": map[string]string{
			"css":       "dist/themes.css",
			"extension": "dist/theme-extension.json",
		},
	}
	if b.def != "" {
		doc["default_theme"] = b.def
	}
	if len(b.themes) > 0 {
		doc["themes"] = b.themes
	}
	if b.utilities != nil {
		doc["utilities"] = b.utilities
	}
	if len(b.flags) > 0 {
		doc["flags"] = b.flags
	}
	if b.css != "" {
		require.NoError(b.t, os.WriteFile(filepath.Join(dir, "utilities.css"), []byte(b.css), 0o600))
		doc["utilities_css"] = "utilities.css"
	}

	data, err := yaml.Marshal(doc)
	require.NoError(b.t, err)
	require.NoError(b.t, os.WriteFile(path, data, 0o600))
	return path
}
