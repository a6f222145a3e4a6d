// Package config provides configuration types and defaults for themer.
//
// Scalar settings are decoded by viper through the mapstructure tags on
// Config. Theme token trees and utilities are read separately with
// LoadThemeDocument, because viper lower-cases map keys and drops their
// order, and token names such as DEFAULT and fontSize depend on both.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/templates"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tokens"
)

// Config holds all configuration options for themer.
type Config struct {
	DefaultTheme string          `mapstructure:"default_theme"`
	Presets      bool            `mapstructure:"presets"`
	UtilitiesCSS string          `mapstructure:"utilities_css"`
	Output       OutputConfig    `mapstructure:"output"`
	Storage      StorageConfig   `mapstructure:"storage"`
	Tracing      TracingConfig   `mapstructure:"tracing"`
	Watch        WatchConfig     `mapstructure:"watch"`
	Flags        map[string]bool `mapstructure:"flags"`
}

// OutputConfig names the files `themer build` writes.
type OutputConfig struct {
	CSS       string `mapstructure:"css"`
	Extension string `mapstructure:"extension"`
}

// StorageConfig selects where the active-theme preference lives.
type StorageConfig struct {
	Backend string        `mapstructure:"backend"` // "memory" or "sqlite"
	Path    string        `mapstructure:"path"`    // sqlite database file
	Prefix  string        `mapstructure:"prefix"`
	Key     string        `mapstructure:"key"`
	TTL     time.Duration `mapstructure:"ttl"` // 0 never expires
}

// TracingConfig holds tracing configuration for the build pipeline.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for the "file" exporter.
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for the "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// WatchConfig tunes `themer watch`.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// ThemeConfig is one entry of the themes list.
type ThemeConfig struct {
	Name string `yaml:"name"`
	// Preset seeds the theme with a built-in token set; Extend is merged
	// over it.
	Preset     string        `yaml:"preset,omitempty"`
	Extend     *tokens.Group `yaml:"extend,omitempty"`
	Selectors  []string      `yaml:"selectors,omitempty"`
	MediaQuery string        `yaml:"media_query,omitempty"`
	Class      bool          `yaml:"class,omitempty"`
}

// Input converts the entry to a registry declaration.
func (t ThemeConfig) Input() (theme.ThemeInput, error) {
	extend := t.Extend.Clone()
	if t.Preset != "" {
		p, err := theme.LookupPreset(t.Preset)
		if err != nil {
			return theme.ThemeInput{}, fmt.Errorf("theme %q: %w", t.Name, err)
		}
		extend = tokens.MergeGroups(p.Extend(), t.Extend)
	}
	return theme.ThemeInput{
		Name:       t.Name,
		Extend:     extend,
		Selectors:  t.Selectors,
		MediaQuery: t.MediaQuery,
		Class:      t.Class,
	}, nil
}

// ThemeDocument is the part of the config file decoded without viper.
type ThemeDocument struct {
	Themes    []ThemeConfig `yaml:"themes"`
	Utilities *tokens.Group `yaml:"utilities"`
}

// LoadThemeDocument reads themes and utilities from the config file at
// path. A missing file yields an empty document.
func LoadThemeDocument(path string) (ThemeDocument, error) {
	var doc ThemeDocument
	if path == "" {
		return doc, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path is the user's config file
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing themes in %s: %w", path, err)
	}
	log.Debug(log.CatConfig, "Loaded theme document", "path", path, "themes", len(doc.Themes))
	return doc, nil
}

// DefaultPreferencesPath returns ~/.config/themer/preferences.db, or an
// empty string if the home directory is unavailable.
func DefaultPreferencesPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "themer", "preferences.db")
}

// DefaultTracesFilePath returns ~/.config/themer/traces/traces.jsonl, or
// an empty string if the home directory is unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "themer", "traces", "traces.jsonl")
}

// ValidateThemes checks theme entries for errors. An empty list is valid
// when presets are enabled, which is checked by Validate.
func ValidateThemes(themes []ThemeConfig) error {
	seen := make(map[string]int, len(themes))
	for i, t := range themes {
		if t.Name == "" {
			return fmt.Errorf("themes[%d]: name is required", i)
		}
		if err := theme.ValidateName(t.Name); err != nil {
			return fmt.Errorf("themes[%d] (%s): %w", i, t.Name, err)
		}
		if j, dup := seen[t.Name]; dup {
			return fmt.Errorf("themes[%d] (%s): duplicates themes[%d]", i, t.Name, j)
		}
		seen[t.Name] = i
		if _, err := theme.ResolveScope(t.Name, t.Selectors, t.MediaQuery, t.Class); err != nil {
			return fmt.Errorf("themes[%d] (%s): %w", i, t.Name, err)
		}
		if t.Preset != "" {
			if _, err := theme.LookupPreset(t.Preset); err != nil {
				return fmt.Errorf("themes[%d] (%s): %w", i, t.Name, err)
			}
		}
	}
	return nil
}

// ValidateStorage checks storage configuration for errors.
func ValidateStorage(s StorageConfig) error {
	switch s.Backend {
	case "", BackendMemory:
	case BackendSQLite:
		if s.Path == "" {
			return fmt.Errorf("storage.path is required when backend is %q", BackendSQLite)
		}
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendMemory, BackendSQLite, s.Backend)
	}
	if s.TTL < 0 {
		return fmt.Errorf("storage.ttl must not be negative, got %s", s.TTL)
	}
	return nil
}

// ValidateOutput checks that both output files are named.
func ValidateOutput(o OutputConfig) error {
	if o.CSS == "" {
		return errors.New("output.css is required")
	}
	if o.Extension == "" {
		return errors.New("output.extension is required")
	}
	if filepath.Clean(o.CSS) == filepath.Clean(o.Extension) {
		return fmt.Errorf("output.css and output.extension must differ, both are %q", o.CSS)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}
	return nil
}

// Validate checks the whole configuration together with its themes.
func Validate(cfg Config, doc ThemeDocument) error {
	if len(doc.Themes) == 0 && !cfg.Presets {
		return errors.New("no themes configured: add a themes list or set presets: true")
	}
	if err := ValidateThemes(doc.Themes); err != nil {
		return err
	}
	if cfg.DefaultTheme != "" {
		if err := theme.ValidateName(cfg.DefaultTheme); err != nil {
			return fmt.Errorf("default_theme: %w", err)
		}
	}
	if err := ValidateOutput(cfg.Output); err != nil {
		return err
	}
	if err := ValidateStorage(cfg.Storage); err != nil {
		return err
	}
	return ValidateTracing(cfg.Tracing)
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Presets: true,
		Output: OutputConfig{
			CSS:       "themes.css",
			Extension: "theme-extension.json",
		},
		Storage: StorageConfig{
			Backend: BackendMemory,
			Path:    DefaultPreferencesPath(),
			Prefix:  "themer_",
			TTL:     7 * 24 * time.Hour,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Watch: WatchConfig{Debounce: 300 * time.Millisecond},
		Flags: map[string]bool{},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return templates.ConfigTemplate()
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
