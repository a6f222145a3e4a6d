package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/flags"
)

func TestConfigBuilder_StandardThemes(t *testing.T) {
	path := NewConfigBuilder(t).
		WithStandardThemes().
		WithDefault("dark-theme").
		WithUtilities(".card", map[string]any{"padding": "1rem"}).
		WithFlag(flags.FlagAutoForeground, true).
		Write()

	doc, err := config.LoadThemeDocument(path)
	require.NoError(t, err)
	require.Len(t, doc.Themes, 4)
	require.NoError(t, config.ValidateThemes(doc.Themes))
	require.Equal(t, []string{".brand", "[data-brand]"}, doc.Themes[2].Selectors)
	require.Equal(t, "(prefers-color-scheme: dark)", doc.Themes[3].MediaQuery)

	primary, ok := doc.Themes[2].Extend.LeafAt("colors", "primary", "DEFAULT")
	require.True(t, ok)
	require.Equal(t, "#7828c8", primary)

	padding, ok := doc.Utilities.LeafAt(".card", "padding")
	require.True(t, ok)
	require.Equal(t, "1rem", padding)
}

func TestNewSQLiteStorage(t *testing.T) {
	ctx := context.Background()
	s := NewSQLiteStorage(t, "test_")
	require.NoError(t, s.Set(ctx, "k", "v", 0))
	require.Equal(t, "v", s.GetString(ctx, "k", ""))
}
