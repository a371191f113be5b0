package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/redtally/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with the API key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := app.Config.Masked().YAML()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if app.ConfigPath != "" {
				fmt.Fprintln(out, formatter.Dim("# "+app.ConfigPath))
			}
			fmt.Fprint(out, text)
			if err := app.Config.Validate(); err != nil {
				for _, line := range strings.Split(err.Error(), "\n") {
					fmt.Fprintln(out, formatter.StyleRed.Render("# "+line))
				}
			}
			return nil
		},
	})

	return cmd
}
