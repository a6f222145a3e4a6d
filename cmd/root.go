// Package cmd implements the themer command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/themer/internal/build"
	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/paths"
	"github.com/zjrosen/themer/internal/storage"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tracing"
)

var version = "dev"

// cli is the state shared by every subcommand of one invocation.
type cli struct {
	cfgFile    string
	debug      bool
	logFile    string
	logLevel   string
	cfg        config.Config
	configPath string
	closeLog   func()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "themer",
		Short: "Multi-theme CSS variables for utility-first CSS frameworks",
		Long: `Themer turns a list of themes into CSS custom properties scoped by
selector or media query, plus a theme extension that points every
framework token at those properties.

Switching theme is then a matter of toggling a class or data-theme
attribute at runtime.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.initConfig,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.closeLog != nil {
				c.closeLog()
				c.closeLog = nil
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "",
		"config file (default: .themer/config.yaml or ~/.config/themer/config.yaml)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false,
		"log debug output to stderr")
	root.PersistentFlags().StringVar(&c.logFile, "log-file", "",
		"append log output to this file")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "",
		"minimum level to log: debug, info, warn or error (default debug)")

	root.AddCommand(
		newInitCmd(c),
		newBuildCmd(c),
		newThemesCmd(c),
		newAddCmd(c),
		newUpdateCmd(c),
		newRemoveCmd(c),
		newSetDefaultCmd(c),
		newUseCmd(c),
		newCurrentCmd(c),
		newWatchCmd(c),
	)
	return root
}

func (c *cli) initConfig(cmd *cobra.Command, _ []string) error {
	if err := c.initLog(cmd); err != nil {
		return err
	}

	path, found := paths.ResolveConfigFile(c.cfgFile)
	c.configPath = path
	// init writes the file itself.
	if !found && cmd.Name() != "init" {
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		log.Info(log.CatCLI, "Created default config", "path", path)
	}
	return c.loadConfig()
}

func (c *cli) initLog(cmd *cobra.Command) error {
	level, err := log.ParseLevel(c.logLevel)
	if err != nil {
		return err
	}
	switch {
	case c.logFile != "":
		closeLog, err := log.Init(paths.ExpandHome(c.logFile))
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		c.closeLog = closeLog
	case c.debug:
		c.closeLog = log.InitWriter(cmd.ErrOrStderr())
	default:
		return nil
	}
	log.SetMinLevel(level)
	return nil
}

// loadConfig decodes the scalar settings of the config file through viper.
func (c *cli) loadConfig() error {
	v := viper.New()
	setDefaults(v, config.Defaults())
	v.SetEnvPrefix("THEMER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(c.configPath); err == nil {
		v.SetConfigFile(c.configPath)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", c.configPath, err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	cfg.Storage.Path = paths.ExpandHome(cfg.Storage.Path)
	cfg.Tracing.FilePath = paths.ExpandHome(cfg.Tracing.FilePath)
	c.cfg = cfg
	log.Debug(log.CatConfig, "Loaded config", "path", c.configPath, "presets", cfg.Presets)
	return nil
}

func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("presets", d.Presets)
	v.SetDefault("output.css", d.Output.CSS)
	v.SetDefault("output.extension", d.Output.Extension)
	v.SetDefault("storage.backend", d.Storage.Backend)
	v.SetDefault("storage.path", d.Storage.Path)
	v.SetDefault("storage.prefix", d.Storage.Prefix)
	v.SetDefault("storage.ttl", d.Storage.TTL)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// sources loads and validates the themes next to the decoded settings.
func (c *cli) sources() (build.Sources, error) {
	return build.LoadSources(c.configPath, c.cfg)
}

// registry builds a registry from the current config.
func (c *cli) registry(ctx context.Context, tp *tracing.Provider) (*theme.Registry, build.Sources, error) {
	src, err := c.sources()
	if err != nil {
		return nil, build.Sources{}, err
	}
	reg, err := build.NewRegistry(ctx, tp.Tracer(), src)
	if err != nil {
		return nil, build.Sources{}, err
	}
	return reg, src, nil
}

// tracer starts the provider selected by the tracing section. The
// returned function flushes and stops it.
func (c *cli) tracer() (*tracing.Provider, func(), error) {
	t := c.cfg.Tracing
	if t.Enabled && t.Exporter == "file" && t.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(t.FilePath), 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating traces directory: %w", err)
		}
	}
	tp, err := tracing.NewProvider(tracing.Config{
		Enabled:      t.Enabled,
		Exporter:     t.Exporter,
		FilePath:     t.FilePath,
		OTLPEndpoint: t.OTLPEndpoint,
		SampleRate:   t.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	return tp, func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.ErrorErr(log.CatCLI, "Tracing shutdown failed", err)
		}
	}, nil
}

// preference opens the active-theme store. themes may be nil.
func (c *cli) preference(themes storage.ThemeFinder) (*storage.Preference, func(), error) {
	s := c.cfg.Storage
	var (
		backend storage.Backend
		closeFn = func() {}
	)
	switch s.Backend {
	case config.BackendSQLite:
		db, err := storage.NewDB(s.Path)
		if err != nil {
			return nil, nil, err
		}
		backend = storage.NewSQLiteBackend(db)
		closeFn = func() { _ = db.Close() }
	default:
		backend = storage.NewMemoryBackend()
	}
	store := storage.New(backend, s.Prefix)
	return storage.NewPreference(store, s.Key, s.TTL, themes), closeFn, nil
}

// exitError carries a process exit code through cobra.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		var exit *exitError
		if errors.As(err, &exit) {
			if exit.msg != "" {
				fmt.Fprintln(os.Stderr, exit.msg)
			}
			return exit.code
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
