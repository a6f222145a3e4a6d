package theme

import (
	"fmt"
	"sort"

	"github.com/zjrosen/themer/internal/cssvars"
	"github.com/zjrosen/themer/internal/tokens"
)

// Preset is a built-in theme that config files can pull in by name.
type Preset struct {
	Name        string
	Description string
	build       func() *tokens.Group
}

// Extend returns a fresh copy of the preset's tokens.
func (p Preset) Extend() *tokens.Group { return p.build() }

// Input returns the preset as a theme declaration.
func (p Preset) Input() ThemeInput {
	return ThemeInput{Name: p.Name, Extend: p.build()}
}

// Presets contains all built-in presets.
var Presets = map[string]Preset{
	LightPreset.Name: LightPreset,
	DarkPreset.Name:  DarkPreset,
}

// PresetNames lists the presets in a stable order.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupPreset returns the named preset.
func LookupPreset(name string) (Preset, error) {
	p, ok := Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q (available: %v)", name, PresetNames())
	}
	return p, nil
}

// LightPreset is a light semantic palette.
var LightPreset = Preset{
	Name:        "light-theme",
	Description: "Light background with semantic color scales",
	build: func() *tokens.Group {
		colors := tokens.GroupOf(
			"background", tokens.GroupOf("DEFAULT", "#FFFFFF"),
			"foreground", withDefault(scale(zinc), "#11181C"),
			"divider", tokens.GroupOf("DEFAULT", "rgba(17, 17, 17, 0.15)"),
			"focus", tokens.GroupOf("DEFAULT", blue["500"]),
			"overlay", tokens.GroupOf("DEFAULT", "#000000"),
			"primary", semantic(scale(blue), blue["500"]),
			"secondary", semantic(scale(purple), purple["500"]),
			"success", semantic(scale(green), green["500"]),
			"warning", semantic(scale(yellow), yellow["500"]),
			"danger", withForeground(scale(red), red["500"], "#FFFFFF"),
		)
		return tokens.GroupOf("colors", colors)
	},
}

// DarkPreset mirrors LightPreset with every shade scale reversed.
var DarkPreset = Preset{
	Name:        "dark-theme",
	Description: "Dark background with reversed semantic color scales",
	build: func() *tokens.Group {
		colors := tokens.GroupOf(
			"background", tokens.GroupOf("DEFAULT", "#000000"),
			"foreground", withDefault(cssvars.SwapScale(scale(zinc)), "#ECEDEE"),
			"divider", tokens.GroupOf("DEFAULT", "rgba(255, 255, 255, 0.15)"),
			"focus", tokens.GroupOf("DEFAULT", blue["500"]),
			"overlay", tokens.GroupOf("DEFAULT", "#000000"),
			"primary", semantic(cssvars.SwapScale(scale(blue)), blue["500"]),
			"secondary", semantic(cssvars.SwapScale(scale(purple)), purple["400"]),
			"success", semantic(cssvars.SwapScale(scale(green)), green["500"]),
			"warning", semantic(cssvars.SwapScale(scale(yellow)), yellow["500"]),
			"danger", withForeground(cssvars.SwapScale(scale(red)), red["500"], "#FFFFFF"),
		)
		return tokens.GroupOf("colors", colors)
	},
}

var shades = []string{"50", "100", "200", "300", "400", "500", "600", "700", "800", "900"}

type palette map[string]string

var (
	zinc = palette{
		"50": "#fafafa", "100": "#f4f4f5", "200": "#e4e4e7", "300": "#d4d4d8", "400": "#a1a1aa",
		"500": "#71717a", "600": "#52525b", "700": "#3f3f46", "800": "#27272a", "900": "#18181b",
	}
	blue = palette{
		"50": "#e6f1fe", "100": "#cce3fd", "200": "#99c7fb", "300": "#66aaf9", "400": "#338ef7",
		"500": "#006FEE", "600": "#005bc4", "700": "#004493", "800": "#002e62", "900": "#001731",
	}
	purple = palette{
		"50": "#f2eafa", "100": "#e4d4f4", "200": "#c9a9e9", "300": "#ae7ede", "400": "#9353d3",
		"500": "#7828c8", "600": "#6020a0", "700": "#481878", "800": "#301050", "900": "#180828",
	}
	green = palette{
		"50": "#e8faf0", "100": "#d1f4e0", "200": "#a2e9c1", "300": "#74dfa2", "400": "#45d483",
		"500": "#17c964", "600": "#12a150", "700": "#0e793c", "800": "#095028", "900": "#052814",
	}
	yellow = palette{
		"50": "#fefce8", "100": "#fdedd3", "200": "#fbdba7", "300": "#f9c97c", "400": "#f7b750",
		"500": "#f5a524", "600": "#c4841d", "700": "#936316", "800": "#62420e", "900": "#312107",
	}
	red = palette{
		"50": "#fee7ef", "100": "#fdd0df", "200": "#faa0bf", "300": "#f871a0", "400": "#f54180",
		"500": "#f31260", "600": "#c20e4d", "700": "#920b3a", "800": "#610726", "900": "#310413",
	}
)

func scale(p palette) *tokens.Group {
	g := tokens.NewGroup()
	for _, shade := range shades {
		g.Set(shade, tokens.Leaf(p[shade]))
	}
	return g
}

func withDefault(g *tokens.Group, def string) *tokens.Group {
	g.Set("DEFAULT", tokens.Leaf(def))
	return g
}

func withForeground(g *tokens.Group, def, fg string) *tokens.Group {
	g.Set("DEFAULT", tokens.Leaf(def))
	g.Set("foreground", tokens.Leaf(fg))
	return g
}

// semantic sets DEFAULT and a foreground readable against it.
func semantic(g *tokens.Group, def string) *tokens.Group {
	fg, err := cssvars.Readable(def)
	if err != nil {
		fg = "#000000"
	}
	return withForeground(g, def, fg)
}
