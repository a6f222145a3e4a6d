package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/log"
)

func newUseCmd(c *cli) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "use NAME",
		Short: "Remember the active theme",
		Long: `Store the theme a user picked, the way an application persists its
theme toggle. The choice expires after storage.ttl.

With the memory backend the choice lasts for this process only; set
storage.backend to sqlite to keep it between runs.

Examples:
  themer use dark-theme
  themer use --reset`,
		Args: func(cmd *cobra.Command, args []string) error {
			if reset {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, _, err := c.registry(ctx, nil)
			if err != nil {
				return err
			}
			defer reg.Close()
			pref, closePref, err := c.preference(reg)
			if err != nil {
				return err
			}
			defer closePref()

			out := cmd.OutOrStdout()
			if reset {
				if err := pref.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "Active theme reset to %s\n", reg.DefaultName())
				return nil
			}
			if err := pref.SetActive(ctx, args[0]); err != nil {
				return err
			}
			if c.cfg.Storage.Backend != config.BackendSQLite {
				log.Warn(log.CatStorage, "Preference kept in memory only", "backend", c.cfg.Storage.Backend)
			}
			fmt.Fprintf(out, "Active theme is now %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "forget the stored theme")
	return cmd
}

func newCurrentCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Print the active theme",
		Long: `Print the stored active theme, or the default theme when nothing is
stored, the stored choice expired, or it names a theme that no longer
exists.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			reg, _, err := c.registry(ctx, nil)
			if err != nil {
				return err
			}
			defer reg.Close()
			pref, closePref, err := c.preference(reg)
			if err != nil {
				return err
			}
			defer closePref()

			fmt.Fprintln(cmd.OutOrStdout(), pref.Active(ctx, reg.DefaultName()))
			return nil
		},
	}
}
