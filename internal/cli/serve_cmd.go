package cli

import (
	"github.com/alexanderramin/redtally/internal/jobs"
	"github.com/alexanderramin/redtally/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(app *App) *cobra.Command {
	var rf runFlags
	var addr, schedule string
	var skipInitial bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the last report over HTTP and regenerate it on a schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if err := rf.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("schedule") {
				cfg.Server.Schedule = schedule
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			reports, err := app.OpenReports(cfg)
			if err != nil {
				return err
			}
			defer reports.Close()

			srv := server.New(cfg, reports, app.Log,
				server.WithClock(app.now),
				server.WithBaseContext(cmd.Context()),
			)

			if cfg.Server.Schedule != "" {
				cr, err := jobs.NewCron(cfg.Server.Schedule, app.Log, srv)
				if err != nil {
					return err
				}
				cr.Start()
				defer cr.Stop()
				app.Log.Info().Str("schedule", cfg.Server.Schedule).Time("next", cr.Next()).Msg("cron: scheduled")
			}
			if !skipInitial {
				srv.Trigger()
			}

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().AddFlagSet(rf.flagSet())
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule for regeneration, e.g. \"0 6 * * 1\"")
	cmd.Flags().BoolVar(&skipInitial, "no-initial", false, "Do not generate a report at startup")

	return cmd
}
