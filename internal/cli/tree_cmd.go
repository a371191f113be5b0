package cli

import (
	"fmt"

	"github.com/alexanderramin/redtally/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newTreeCmd(app *App) *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the issue hierarchy walked for each project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if err := rf.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}

			res, err := generate(cmd, app, cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, formatter.Dim(res.Report.PeriodLine()))
			for _, pt := range res.Trees {
				fmt.Fprintln(out)
				fmt.Fprint(out, formatter.FormatIssueTree(pt.Project.DisplayName(), pt.Tree))
			}
			return nil
		},
	}

	cmd.Flags().AddFlagSet(rf.flagSet())
	return cmd
}
