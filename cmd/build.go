package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/themer/internal/build"
)

func newBuildCmd(c *cli) *cobra.Command {
	var check bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the theme stylesheet and extension",
		Long: `Generate the stylesheet of theme custom properties and the theme
extension JSON named in the output section of the config.

Files whose content is unchanged are left alone. With --check nothing is
written; the command prints a diff of every out-of-date file and exits
with status 1.

Examples:
  themer build
  themer build --check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tp, shutdown, err := c.tracer()
			if err != nil {
				return err
			}
			defer shutdown()

			reg, _, err := c.registry(ctx, tp)
			if err != nil {
				return err
			}
			defer reg.Close()

			res, err := build.NewBuilder(tp.Tracer()).Build(ctx, reg.Get())
			if err != nil {
				return err
			}
			outputs := build.Outputs(res, c.cfg.Output, c.configPath)
			out := cmd.OutOrStdout()

			if check {
				stale, err := build.Check(ctx, tp.Tracer(), outputs)
				if err != nil {
					return err
				}
				if len(stale) == 0 {
					fmt.Fprintln(out, "Outputs are up to date")
					return nil
				}
				for _, s := range stale {
					fmt.Fprintf(out, "--- %s\n%s", s.Path, s.Diff)
				}
				return &exitError{code: 1, msg: fmt.Sprintf("%d output(s) out of date; run 'themer build'", len(stale))}
			}

			written, err := build.Write(ctx, tp.Tracer(), outputs)
			if err != nil {
				return err
			}
			if len(written) == 0 {
				fmt.Fprintln(out, "Outputs are up to date")
			}
			for _, p := range written {
				fmt.Fprintf(out, "Wrote %s\n", p)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "report out-of-date outputs without writing them")
	return cmd
}
