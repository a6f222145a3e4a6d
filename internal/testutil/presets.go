package testutil

// WithStandardThemes adds four themes covering every scope kind:
//   - light-theme, the default
//   - dark-theme, activated by its data-theme attribute
//   - brand-theme, activated by .brand or [data-brand]
//   - os-dark-theme, activated by prefers-color-scheme
func (b *ConfigBuilder) WithStandardThemes() *ConfigBuilder {
	return b.
		WithTheme("light-theme",
			Extend(
				"colors", map[string]any{
					"background": "#ffffff",
					"primary":    map[string]any{"DEFAULT": "#006FEE", "foreground": "#ffffff"},
				},
				"borderRadius", map[string]any{"card": "12px"},
			)).
		WithTheme("dark-theme",
			Extend(
				"colors", map[string]any{
					"background": "#000000",
					"primary":    map[string]any{"DEFAULT": "#338ef7", "foreground": "#000000"},
					"overlay":    "rgba(0, 0, 0, 0.5)",
				},
			)).
		WithTheme("brand-theme",
			Selectors(".brand", "[data-brand]"),
			Color("primary", "#7828c8")).
		WithTheme("os-dark-theme",
			Media("(prefers-color-scheme: dark)"),
			Color("background", "#111111"))
}
