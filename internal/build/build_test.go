package build

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/flags"
	"github.com/zjrosen/themer/internal/testutil"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
	"github.com/zjrosen/themer/internal/tracing"
)

var noopTracer = noop.NewTracerProvider().Tracer("test")

// loadSources decodes path the way the CLI does.
func loadSources(t *testing.T, path string) Sources {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := config.Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	src, err := LoadSources(path, cfg)
	require.NoError(t, err)
	return src
}

func newRegistry(t *testing.T, src Sources) *theme.Registry {
	t.Helper()
	reg, err := NewRegistry(context.Background(), noopTracer, src)
	require.NoError(t, err)
	t.Cleanup(reg.Close)
	return reg
}

func TestLoadSources_Invalid(t *testing.T) {
	path := testutil.NewConfigBuilder(t).WithTheme("blue").Write()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg := config.Defaults()
	require.NoError(t, v.Unmarshal(&cfg))

	_, err := LoadSources(path, cfg)
	require.ErrorIs(t, err, theme.ErrInvalidName)
}

func TestInputs_PresetsFirstAndReplacedInPlace(t *testing.T) {
	path := testutil.NewConfigBuilder(t).
		WithPresets().
		WithTheme("brand-theme", testutil.Selectors(".brand")).
		WithTheme("dark-theme", testutil.Color("background", "#0b0b0f")).
		Write()

	inputs, err := loadSources(t, path).Inputs()
	require.NoError(t, err)

	names := make([]string, len(inputs))
	for i, in := range inputs {
		names[i] = in.Name
	}
	require.Equal(t, []string{"light-theme", "dark-theme", "brand-theme"}, names)

	bg, _ := inputs[1].Extend.LeafAt("colors", "background", "DEFAULT")
	require.Equal(t, "#0b0b0f", bg)
	_, hasPrimary := inputs[1].Extend.Lookup("colors", "primary")
	require.False(t, hasPrimary, "a configured theme replaces the preset rather than merging")
}

func TestInputs_AutoForeground(t *testing.T) {
	path := testutil.NewConfigBuilder(t).
		WithTheme("a-theme", testutil.Color("primary", "#006FEE"), testutil.Color("warning", "#F5A524")).
		WithFlag(flags.FlagAutoForeground, true).
		Write()

	inputs, err := loadSources(t, path).Inputs()
	require.NoError(t, err)

	fg, ok := inputs[0].Extend.LeafAt("colors", "primary", "foreground")
	require.True(t, ok)
	require.Equal(t, "#ffffff", fg)
	fg, _ = inputs[0].Extend.LeafAt("colors", "warning", "foreground")
	require.Equal(t, "#000000", fg)
}

func TestInputs_NoAutoForegroundByDefault(t *testing.T) {
	path := testutil.NewConfigBuilder(t).WithTheme("a-theme", testutil.Color("primary", "#006FEE")).Write()
	inputs, err := loadSources(t, path).Inputs()
	require.NoError(t, err)
	_, ok := inputs[0].Extend.LeafAt("colors", "primary", "foreground")
	require.False(t, ok)
}

func TestUtilities_MergesStylesheet(t *testing.T) {
	path := testutil.NewConfigBuilder(t).
		WithTheme("a-theme").
		WithUtilities(".card", map[string]any{"padding": "1rem", "margin": "0"}).
		WithUtilitiesCSS(".card { padding: 2rem } .btn { color: red !important }").
		Write()
	src := loadSources(t, path)

	u, err := src.Utilities()
	require.NoError(t, err)
	padding, _ := u.LeafAt(".card", "padding")
	require.Equal(t, "2rem", padding, "stylesheet wins")
	margin, _ := u.LeafAt(".card", "margin")
	require.Equal(t, "0", margin)
	color, _ := u.LeafAt(".btn", "color")
	require.Equal(t, "red !important", color)

	require.Equal(t, []string{path, filepath.Join(filepath.Dir(path), "utilities.css")}, src.WatchPaths())
}

func TestUtilities_MissingStylesheet(t *testing.T) {
	src := Sources{
		Config:     config.Config{UtilitiesCSS: "nope.css"},
		ConfigPath: filepath.Join(t.TempDir(), "config.yaml"),
	}
	_, err := src.Utilities()
	require.ErrorContains(t, err, "utilities_css")
}

func TestNewRegistry(t *testing.T) {
	path := testutil.NewConfigBuilder(t).WithStandardThemes().WithDefault("dark-theme").Write()
	reg := newRegistry(t, loadSources(t, path))

	require.Equal(t, "dark-theme", reg.DefaultName())
	light, ok := reg.Find("light-theme")
	require.True(t, ok)
	require.Equal(t, theme.AttributeScope("light-theme"), light.Scope, "demoted themes get an attribute selector")
}

func TestBuilder_RendersEveryScope(t *testing.T) {
	path := testutil.NewConfigBuilder(t).
		WithStandardThemes().
		WithUtilities(".card", map[string]any{"borderRadius": "var(--border-radius-card)"}).
		Write()
	reg := newRegistry(t, loadSources(t, path))

	res, err := NewBuilder(noopTracer).Build(context.Background(), reg.Get())
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(res.CSS, Header))
	for _, want := range []string{
		":root {\n  --colors-background: 255 255 255;",
		`[data-theme="dark-theme"] {`,
		"--colors-overlay-alpha: 0.5;",
		".brand, [data-brand] {\n  --colors-primary: 120 40 200;",
		"@media (prefers-color-scheme: dark) {\n  :root {\n    --colors-background: 17 17 17;",
		".card {\n  border-radius: var(--border-radius-card);",
	} {
		require.Contains(t, res.CSS, want)
	}

	var ext map[string]any
	require.NoError(t, json.Unmarshal(res.Extension, &ext))
	colors := ext["colors"].(map[string]any)
	background := colors["background"].(map[string]any)
	require.Equal(t, "rgb(var(--colors-background) / <alpha-value>)", background["DEFAULT"], "leaf and group share DEFAULT")
	require.Equal(t, "var(--border-radius-card)", ext["borderRadius"].(map[string]any)["card"])

	require.Len(t, res.Variants, 4)
	require.Equal(t, "os-dark-theme", res.Variants[3].Name)
	require.Equal(t, []string{"@media (prefers-color-scheme: dark)"}, res.Variants[3].Definitions)
}

func TestBuilder_CachesByFingerprint(t *testing.T) {
	ctx := context.Background()
	path := testutil.NewConfigBuilder(t).WithStandardThemes().Write()
	reg := newRegistry(t, loadSources(t, path))
	b := NewBuilder(noopTracer)

	first, err := b.Build(ctx, reg.Get())
	require.NoError(t, err)
	second, err := b.Build(ctx, reg.Get())
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.EqualValues(t, 1, b.Renders())

	require.NoError(t, reg.Update("dark-theme", tokens.GroupOf("spacing", tokens.GroupOf("gutter", "2rem"))))
	third, err := b.Build(ctx, reg.Get())
	require.NoError(t, err)
	require.NotEqual(t, first.Fingerprint, third.Fingerprint)
	require.Contains(t, third.CSS, "--spacing-gutter: 2rem;")
	require.EqualValues(t, 2, b.Renders())

	b.Invalidate(ctx)
	_, err = b.Build(ctx, reg.Get())
	require.NoError(t, err)
	require.EqualValues(t, 3, b.Renders())
}

func TestBuilder_ConcurrentBuildsRenderOnce(t *testing.T) {
	path := testutil.NewConfigBuilder(t).WithStandardThemes().Write()
	reg := newRegistry(t, loadSources(t, path))
	b := NewBuilder(noopTracer)
	state := reg.Get()

	var wg sync.WaitGroup
	results := make([]Result, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = b.Build(context.Background(), state)
		}()
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, results[0].CSS, results[i].CSS)
	}
	require.EqualValues(t, 1, b.Renders())
}

func TestBuilder_Spans(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p := tracing.NewProviderWithExporter(exp)

	path := testutil.NewConfigBuilder(t).WithStandardThemes().Write()
	reg := newRegistry(t, loadSources(t, path))
	_, err := NewBuilder(p.Tracer()).Build(context.Background(), reg.Get())
	require.NoError(t, err)

	var names []string
	for _, s := range exp.GetSpans() {
		names = append(names, s.Name)
	}
	require.ElementsMatch(t, []string{tracing.SpanRender, tracing.SpanExtension, tracing.SpanBuild}, names)
}

func TestFingerprint_Stable(t *testing.T) {
	path := testutil.NewConfigBuilder(t).WithStandardThemes().Write()
	reg := newRegistry(t, loadSources(t, path))

	a, err := Fingerprint(reg.Get())
	require.NoError(t, err)
	b, err := Fingerprint(reg.Get())
	require.NoError(t, err)
	require.Equal(t, a, b)
	require.Len(t, a, 64)
}

func TestWriteAndCheck(t *testing.T) {
	ctx := context.Background()
	path := testutil.NewConfigBuilder(t).WithStandardThemes().Write()
	src := loadSources(t, path)
	reg := newRegistry(t, src)
	res, err := NewBuilder(noopTracer).Build(ctx, reg.Get())
	require.NoError(t, err)

	outputs := Outputs(res, src.Config.Output, path)
	dir := filepath.Dir(path)
	require.Equal(t, filepath.Join(dir, "dist", "themes.css"), outputs[0].Path)
	require.Equal(t, filepath.Join(dir, "dist", "theme-extension.json"), outputs[1].Path)

	stale, err := Check(ctx, noopTracer, outputs)
	require.NoError(t, err)
	require.Len(t, stale, 2, "nothing written yet")

	written, err := Write(ctx, noopTracer, outputs)
	require.NoError(t, err)
	require.Len(t, written, 2)

	stale, err = Check(ctx, noopTracer, outputs)
	require.NoError(t, err)
	require.Empty(t, stale)

	written, err = Write(ctx, noopTracer, outputs)
	require.NoError(t, err)
	require.Empty(t, written, "unchanged files are not rewritten")

	require.NoError(t, os.WriteFile(outputs[0].Path, []byte(strings.Replace(res.CSS, "17 17 17", "0 0 0", 1)), 0o600))
	stale, err = Check(ctx, noopTracer, outputs)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	require.Contains(t, stale[0].Diff, "-    --colors-background: 0 0 0;")
	require.Contains(t, stale[0].Diff, "+    --colors-background: 17 17 17;")
}

func TestLineDiff(t *testing.T) {
	require.Equal(t, " a\n-b\n+B\n c\n", LineDiff("a\nb\nc\n", "a\nB\nc\n"))
	require.Equal(t, "+x\n", LineDiff("", "x\n"))
	require.Equal(t, " same\n", LineDiff("same\n", "same\n"))

	old := "1\n2\n3\n4\n5\n6\n7\n"
	updated := "1\n2\n3\n4\n5\n6\nseven\n"
	require.Equal(t, "@@\n 5\n 6\n-7\n+seven\n", LineDiff(old, updated))
}
