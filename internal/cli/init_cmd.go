package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/redtally/internal/cli/formatter"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file with an interactive wizard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("init needs an interactive terminal; write the config file by hand instead")
			}

			path := app.ConfigPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config %s already exists (use --force to overwrite)", path)
			}

			answers := answersFrom(app.Config)
			if err := initForm(&answers).RunWithContext(cmd.Context()); err != nil {
				return err
			}
			cfg, err := answers.apply(app.Config)
			if err != nil {
				return err
			}
			if err := cfg.Save(path); err != nil {
				return err
			}

			app.Config = cfg
			app.ConfigPath = path
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", formatter.StyleGreen.Render("✔ Config written to"), path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
