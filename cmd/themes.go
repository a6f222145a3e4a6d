package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/zjrosen/themer/internal/cssvars"
	"github.com/zjrosen/themer/internal/plugin"
	"github.com/zjrosen/themer/internal/presentation"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
)

const maxSwatches = 8

var (
	nameStyle    = lipgloss.NewStyle().Bold(true)
	defaultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#17c964"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#71717a"))
)

func newThemesCmd(c *cli) *cobra.Command {
	var (
		asJSON    bool
		selectors bool
		presets   bool
	)
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List registered themes",
		Long: `List every theme with its activation selector and a swatch of its
colors. The default theme is marked with "*".

Examples:
  themer themes
  themer themes --json | jq '.[].variant'
  themer themes --selectors | jq '.default.name'
  themer themes --presets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if presets {
				for _, name := range theme.PresetNames() {
					p := theme.Presets[name]
					fmt.Fprintf(out, "%s  %s\n", nameStyle.Render(p.Name), subtleStyle.Render(p.Description))
				}
				return nil
			}

			tp, shutdown, err := c.tracer()
			if err != nil {
				return err
			}
			defer shutdown()
			reg, _, err := c.registry(cmd.Context(), tp)
			if err != nil {
				return err
			}
			defer reg.Close()

			formatter := presentation.NewFormatter(out)
			switch {
			case selectors:
				return formatter.FormatSelectors(reg.ThemeSelectors())
			case asJSON:
				return formatter.FormatThemes(presentation.FromState(plugin.NewCollector(), reg.Get()))
			}
			printThemes(out, reg.Get())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print themes as JSON")
	cmd.Flags().BoolVar(&selectors, "selectors", false, "print the theme selector map as JSON")
	cmd.Flags().BoolVar(&presets, "presets", false, "list the built-in presets instead")
	return cmd
}

func printThemes(w io.Writer, state theme.State) {
	entries := state.All()
	rows := make([][2]string, len(entries))
	nameWidth := 0
	for i, e := range entries {
		rows[i] = [2]string{e.Name, activation(e)}
		nameWidth = max(nameWidth, len(e.Name))
	}
	for i, e := range entries {
		marker := " "
		if e.Name == state.Default.Name {
			marker = defaultStyle.Render("*")
		}
		name := nameStyle.Render(rows[i][0]) + strings.Repeat(" ", nameWidth-len(rows[i][0]))
		line := fmt.Sprintf("%s %s  %s", marker, name, subtleStyle.Render(rows[i][1]))
		if sw := swatches(e.Extend); sw != "" {
			line += "  " + sw
		}
		fmt.Fprintln(w, line)
	}
}

// activation describes where a theme's custom properties apply.
func activation(e theme.Entry) string {
	if e.Scope.Kind == theme.ScopeMedia {
		return "@media " + e.Scope.MediaQuery
	}
	return strings.Join(plugin.StyleSelectors(plugin.NewCollector(), e), ", ")
}

// swatches renders the DEFAULT shade of each top-level color.
func swatches(extend *tokens.Group) string {
	v, ok := extend.Get("colors")
	if !ok {
		return ""
	}
	colors, ok := v.(*tokens.Group)
	if !ok {
		return ""
	}
	var parts []string
	for _, name := range colors.Keys() {
		value, ok := colors.LeafAt(name)
		if !ok {
			value, ok = colors.LeafAt(name, "DEFAULT")
		}
		if !ok {
			continue
		}
		c, err := cssvars.ParseColor(value)
		if err != nil {
			continue
		}
		parts = append(parts, lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("  "))
		if len(parts) == maxSwatches {
			break
		}
	}
	return strings.Join(parts, " ")
}
