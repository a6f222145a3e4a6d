package theme

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresets_AreValidThemes(t *testing.T) {
	for _, name := range PresetNames() {
		p, err := LookupPreset(name)
		require.NoError(t, err)
		require.NoError(t, ValidateName(p.Name))
		require.NotZero(t, p.Extend().Len())
	}

	_, err := LookupPreset("neon-theme")
	require.ErrorContains(t, err, "available")
}

func TestPresets_ReadableForegrounds(t *testing.T) {
	light := LightPreset.Extend()

	fg, ok := light.LeafAt("colors", "primary", "foreground")
	require.True(t, ok)
	require.Equal(t, "#ffffff", fg)

	fg, _ = light.LeafAt("colors", "warning", "foreground")
	require.Equal(t, "#000000", fg)

	fg, _ = light.LeafAt("colors", "danger", "foreground")
	require.Equal(t, "#FFFFFF", fg)
}

func TestDarkPreset_ReversesScales(t *testing.T) {
	dark := DarkPreset.Extend()

	v, _ := dark.LeafAt("colors", "primary", "50")
	require.Equal(t, blue["900"], v)
	v, _ = dark.LeafAt("colors", "primary", "900")
	require.Equal(t, blue["50"], v)
	v, _ = dark.LeafAt("colors", "secondary", "DEFAULT")
	require.Equal(t, purple["400"], v)
}

func TestPresets_ExtendIsFresh(t *testing.T) {
	a := LightPreset.Extend()
	a.Delete("colors")
	require.NotZero(t, LightPreset.Extend().Len())
}

func TestPresets_InitRegistry(t *testing.T) {
	r, err := New(Config{Themes: []ThemeInput{LightPreset.Input(), DarkPreset.Input()}})
	require.NoError(t, err)
	defer r.Close()
	require.Equal(t, "light-theme", r.DefaultName())
	require.Equal(t, AttributeScope("dark-theme"), r.Get().Themes[0].Scope)
}
