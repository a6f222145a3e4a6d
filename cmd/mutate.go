package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
)

// Mutations are applied to a registry first, so the registry's checks
// reject bad names, duplicates and conflicting scopes before the config
// file is touched.

func newAddCmd(c *cli) *cobra.Command {
	var (
		from      string
		preset    string
		selectors []string
		media     string
		class     bool
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a theme to the config",
		Long: `Add a theme whose tokens are read from a YAML or JSON file ("-" reads
stdin). Without --selector, --media or --class the theme is activated by
its data-theme attribute.

Examples:
  themer add ocean-theme --from ocean.yaml
  themer add brand-theme --from brand.json --selector .brand --selector '[data-brand]'
  themer add dim-theme --preset dark-theme --media '(prefers-contrast: less)'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			extend, err := readTokens(cmd.InOrStdin(), from)
			if err != nil {
				return err
			}
			tc := config.ThemeConfig{
				Name:       name,
				Preset:     preset,
				Extend:     extend,
				Selectors:  selectors,
				MediaQuery: media,
				Class:      class,
			}
			in, err := tc.Input()
			if err != nil {
				return err
			}

			reg, src, err := c.registry(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer reg.Close()
			var opts []theme.EntryOption
			if len(in.Selectors) > 0 {
				opts = append(opts, theme.WithSelectors(in.Selectors...))
			}
			if in.MediaQuery != "" {
				opts = append(opts, theme.WithMediaQuery(in.MediaQuery))
			}
			if in.Class {
				opts = append(opts, theme.WithClassSelector())
			}
			if err := reg.Add(name, in.Extend, opts...); err != nil {
				return err
			}

			themes := append(slices.Clone(src.Document.Themes), tc)
			if err := config.SaveThemes(c.configPath, themes); err != nil {
				return err
			}
			log.Info(log.CatCLI, "Theme added", "name", name)
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "YAML or JSON file of tokens (\"-\" for stdin)")
	cmd.Flags().StringVar(&preset, "preset", "", "seed tokens from a built-in preset")
	cmd.Flags().StringArrayVar(&selectors, "selector", nil, "CSS selector activating the theme (repeatable)")
	cmd.Flags().StringVar(&media, "media", "", "media query activating the theme")
	cmd.Flags().BoolVar(&class, "class", false, "activate the theme with a class named after it")
	return cmd
}

func newUpdateCmd(c *cli) *cobra.Command {
	var from string
	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Merge tokens into an existing theme",
		Long: `Deep-merge the tokens in a YAML or JSON file into a theme. Tokens the
file does not mention are kept.

Examples:
  themer update dark-theme --from patch.yaml
  echo '{"colors": {"primary": {"DEFAULT": "#7828c8"}}}' | themer update dark-theme --from -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			if from == "" {
				return fmt.Errorf("--from is required")
			}
			partial, err := readTokens(cmd.InOrStdin(), from)
			if err != nil {
				return err
			}

			reg, src, err := c.registry(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer reg.Close()
			if err := reg.Update(name, partial); err != nil {
				return err
			}

			themes := slices.Clone(src.Document.Themes)
			i := slices.IndexFunc(themes, func(t config.ThemeConfig) bool { return t.Name == name })
			if i >= 0 {
				themes[i].Extend = tokens.MergeGroups(themes[i].Extend, partial)
			} else {
				// Only presets are registered without a config entry.
				themes = append(themes, config.ThemeConfig{Name: name, Preset: name, Extend: partial})
			}
			if err := config.SaveThemes(c.configPath, themes); err != nil {
				return err
			}
			log.Info(log.CatCLI, "Theme updated", "name", name, "keys", partial.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "YAML or JSON file of tokens (\"-\" for stdin)")
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a theme from the config",
		Long: `Remove a theme. The default theme cannot be removed; promote another
theme with set-default first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			reg, src, err := c.registry(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer reg.Close()
			if name == reg.DefaultName() {
				return fmt.Errorf("%s is the default theme; run 'themer set-default' with another theme first", name)
			}
			if err := reg.Remove(name); err != nil {
				return err
			}

			themes := slices.DeleteFunc(slices.Clone(src.Document.Themes), func(t config.ThemeConfig) bool { return t.Name == name })
			if len(themes) == len(src.Document.Themes) {
				return fmt.Errorf("%s is a built-in preset; set presets: false to drop it", name)
			}
			if err := config.SaveThemes(c.configPath, themes); err != nil {
				return err
			}
			log.Info(log.CatCLI, "Theme removed", "name", name)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", name)
			return nil
		},
	}
}

func newSetDefaultCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default NAME",
		Short: "Make a theme own :root",
		Long: `Make a theme the default. Its custom properties are declared on :root
and the previous default becomes reachable through its data-theme
attribute.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			reg, _, err := c.registry(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer reg.Close()
			if err := reg.SetDefault(name); err != nil {
				return err
			}
			if err := config.SaveDefaultTheme(c.configPath, name); err != nil {
				return err
			}
			log.Info(log.CatCLI, "Default theme changed", "name", name)
			fmt.Fprintf(cmd.OutOrStdout(), "Default theme is now %s\n", name)
			return nil
		},
	}
}

// readTokens decodes a token tree from path, or from stdin when path is
// "-". An empty path yields an empty tree.
func readTokens(stdin io.Reader, path string) (*tokens.Group, error) {
	var (
		data []byte
		err  error
	)
	switch path {
	case "":
		return tokens.NewGroup(), nil
	case "-":
		data, err = io.ReadAll(stdin)
	default:
		data, err = os.ReadFile(path) //nolint:gosec // path comes from the command line
	}
	if err != nil {
		return nil, fmt.Errorf("reading tokens: %w", err)
	}
	// JSON is valid YAML, and the YAML decoder keeps key order.
	g := tokens.NewGroup()
	if err := yaml.Unmarshal(data, g); err != nil {
		return nil, fmt.Errorf("parsing tokens in %s: %w", path, err)
	}
	return g, nil
}
