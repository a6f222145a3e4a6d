// Package build turns configuration into the generated stylesheet and
// framework theme extension.
package build

import (
	"context"
	"fmt"
	"os"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/css"
	"github.com/zjrosen/themer/internal/cssvars"
	"github.com/zjrosen/themer/internal/flags"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/paths"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
	"github.com/zjrosen/themer/internal/tracing"
)

// presetOrder seeds presets light first, so it is the default unless the
// config says otherwise.
var presetOrder = []theme.Preset{theme.LightPreset, theme.DarkPreset}

// Sources is everything a registry is built from.
type Sources struct {
	Config     config.Config
	ConfigPath string
	Document   config.ThemeDocument
	Flags      *flags.Registry
}

// LoadSources reads the theme document next to an already decoded cfg and
// validates both.
func LoadSources(configPath string, cfg config.Config) (Sources, error) {
	doc, err := config.LoadThemeDocument(configPath)
	if err != nil {
		return Sources{}, err
	}
	if err := config.Validate(cfg, doc); err != nil {
		return Sources{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return Sources{
		Config:     cfg,
		ConfigPath: configPath,
		Document:   doc,
		Flags:      flags.New(cfg.Flags),
	}, nil
}

// Inputs returns the theme declarations in registry order. Enabled
// presets come first; a configured theme with a preset's name replaces
// that preset in place.
func (s Sources) Inputs() ([]theme.ThemeInput, error) {
	var inputs []theme.ThemeInput
	if s.Config.Presets {
		for _, p := range presetOrder {
			inputs = append(inputs, p.Input())
		}
	}
	for _, tc := range s.Document.Themes {
		in, err := tc.Input()
		if err != nil {
			return nil, err
		}
		i := slices.IndexFunc(inputs, func(x theme.ThemeInput) bool { return x.Name == in.Name })
		if i >= 0 {
			inputs[i] = in
			continue
		}
		inputs = append(inputs, in)
	}

	if s.Flags.Enabled(flags.FlagAutoForeground) {
		for _, in := range inputs {
			if v, ok := in.Extend.Get("colors"); ok {
				if colors, isGroup := v.(*tokens.Group); isGroup {
					n := cssvars.FillForeground(colors)
					log.Debug(log.CatBuild, "Derived foregrounds", "theme", in.Name, "count", n)
				}
			}
		}
	}
	return inputs, nil
}

// Utilities merges the inline utilities with those parsed from
// utilities_css. The stylesheet wins on conflicts.
func (s Sources) Utilities() (*tokens.Group, error) {
	utilities := s.Document.Utilities.Clone()
	if s.Config.UtilitiesCSS == "" {
		return utilities, nil
	}
	path := paths.RelativeTo(s.ConfigPath, s.Config.UtilitiesCSS)
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the user's config
	if err != nil {
		return nil, fmt.Errorf("reading utilities_css: %w", err)
	}
	parsed, err := css.ParseUtilities(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tokens.MergeGroups(utilities, parsed), nil
}

// WatchPaths lists the files whose changes require a rebuild.
func (s Sources) WatchPaths() []string {
	out := []string{s.ConfigPath}
	if s.Config.UtilitiesCSS != "" {
		out = append(out, paths.RelativeTo(s.ConfigPath, s.Config.UtilitiesCSS))
	}
	return out
}

// NewRegistry builds a registry from s.
func NewRegistry(ctx context.Context, tracer trace.Tracer, s Sources) (reg *theme.Registry, err error) {
	_, span := tracing.Start(ctx, tracer, tracing.SpanRegistry, attribute.String(tracing.AttrConfigPath, s.ConfigPath))
	defer func() { tracing.End(span, err) }()

	inputs, err := s.Inputs()
	if err != nil {
		return nil, err
	}
	utilities, err := s.Utilities()
	if err != nil {
		return nil, err
	}
	reg, err = theme.New(theme.Config{
		Themes:       inputs,
		DefaultTheme: s.Config.DefaultTheme,
		Utilities:    utilities,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int(tracing.AttrThemeCount, len(inputs)),
		attribute.String(tracing.AttrDefaultTheme, reg.DefaultName()),
	)
	return reg, nil
}
