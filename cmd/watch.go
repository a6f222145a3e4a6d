package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/themer/internal/build"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/watcher"
)

func newWatchCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever the config changes",
		Long: `Build once, then rebuild every time the config file or the
utilities_css stylesheet changes. Pointing utilities_css at another file
moves the watch to that file. A config that fails to load is reported
and the previous outputs are kept.

Stop with Ctrl+C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tp, shutdown, err := c.tracer()
			if err != nil {
				return err
			}
			defer shutdown()

			out := cmd.OutOrStdout()
			builder := build.NewBuilder(tp.Tracer())
			if err := c.rebuild(ctx, tp.Tracer(), builder, out); err != nil {
				return err
			}

			src, err := c.sources()
			if err != nil {
				return err
			}
			w, err := watcher.New(watcher.Config{Paths: src.WatchPaths(), DebounceDur: c.cfg.Watch.Debounce})
			if err != nil {
				return err
			}
			changes, err := w.Start()
			if err != nil {
				return err
			}
			defer func() { _ = w.Stop() }()
			fmt.Fprintf(out, "Watching %s\n", c.configPath)

			for {
				select {
				case <-ctx.Done():
					return nil
				case <-changes:
					if err := c.loadConfig(); err != nil {
						log.ErrorErr(log.CatCLI, "Reload failed", err)
						fmt.Fprintf(cmd.ErrOrStderr(), "reload failed: %v\n", err)
						continue
					}
					if err := c.rebuild(ctx, tp.Tracer(), builder, out); err != nil {
						log.ErrorErr(log.CatCLI, "Rebuild failed", err)
						fmt.Fprintf(cmd.ErrOrStderr(), "rebuild failed: %v\n", err)
					}
					if err := c.rewatch(w); err != nil {
						log.ErrorErr(log.CatWatcher, "Updating watch list failed", err)
					}
				}
			}
		},
	}
}

// rewatch points w at the files the reloaded config depends on. A config
// whose themes fail to load keeps the previous list.
func (c *cli) rewatch(w *watcher.Watcher) error {
	src, err := c.sources()
	if err != nil {
		// rebuild has already reported it.
		return nil //nolint:nilerr
	}
	changed, err := w.SetPaths(src.WatchPaths())
	if err != nil {
		return err
	}
	if changed {
		log.Info(log.CatWatcher, "Watch list changed", "files", w.Paths())
	}
	return nil
}

// rebuild loads the themes afresh and writes any outputs that changed.
// A fresh registry is built each time so that utilities dropped from the
// config disappear from the output.
func (c *cli) rebuild(ctx context.Context, tracer trace.Tracer, builder *build.Builder, out io.Writer) error {
	src, err := c.sources()
	if err != nil {
		return err
	}
	reg, err := build.NewRegistry(ctx, tracer, src)
	if err != nil {
		return err
	}
	defer reg.Close()

	res, err := builder.Build(ctx, reg.Get())
	if err != nil {
		return err
	}
	written, err := build.Write(ctx, tracer, build.Outputs(res, c.cfg.Output, c.configPath))
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintf(out, "Wrote %s\n", p)
	}
	log.Debug(log.CatCLI, "Rebuilt", "fingerprint", res.Fingerprint[:12], "written", len(written), "renders", builder.Renders())
	return nil
}
