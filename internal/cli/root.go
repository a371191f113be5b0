package cli

import (
	"time"

	"github.com/alexanderramin/redtally/internal/app"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// App holds the loaded configuration and the collaborators commands use.
type App struct {
	Config     config.Config
	ConfigPath string
	Log        zerolog.Logger
	// NewLogger rebuilds Log when --config loads a different file.
	NewLogger func(cfg config.LogConfig) zerolog.Logger

	// OpenReports connects the source cfg names. Commands close the
	// returned Reports when they finish.
	OpenReports func(cfg config.Config) (*app.Reports, error)

	// Now stamps generations and resolves day-count windows.
	Now func() time.Time
	// IsInteractive reports whether stdin is a terminal.
	IsInteractive func() bool
	// ShowProgress reports whether progress dots should go to stderr.
	ShowProgress func() bool
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) progress() bool {
	return a.ShowProgress != nil && a.ShowProgress()
}

// NewRootCmd creates the top-level "redtally" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "redtally",
		Short: "Redmine time reports by project, issue, user and activity",
		Long: "redtally aggregates Redmine time entries into per-project and per-issue\n" +
			"tables of hours by user and activity, relabeling activities by role.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("config") {
				return nil
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			app.Config = cfg
			app.ConfigPath = configPath
			if app.NewLogger != nil {
				app.Log = app.NewLogger(cfg.Log)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", app.ConfigPath, "Path to the config file")

	root.AddCommand(
		newReportCmd(app),
		newTreeCmd(app),
		newBrowseCmd(app),
		newInitCmd(app),
		newServeCmd(app),
		newConfigCmd(app),
	)

	return root
}
