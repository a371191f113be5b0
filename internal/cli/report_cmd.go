package cli

import (
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var rf runFlags
	var format, output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a time report",
		Long: "Generate a time report: hours per user and activity for every project\n" +
			"(time logged without an issue) and for every issue walked (down to --depth)\n" +
			"with time logged.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if err := rf.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("format") {
				cfg.Output.Format = format
			}

			res, err := generate(cmd, app, cfg)
			if err != nil {
				return err
			}
			return writeReport(cmd, cfg, output, res.Report)
		},
	}

	cmd.Flags().AddFlagSet(rf.flagSet())
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, markdown, csv or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file; \"-\" for stdout")

	return cmd
}
