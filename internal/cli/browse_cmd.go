package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Generate a report and page through it interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return fmt.Errorf("browse needs an interactive terminal; use \"redtally report\" instead")
			}
			cfg := app.Config
			if err := rf.apply(cmd.Flags(), &cfg); err != nil {
				return err
			}

			res, err := generate(cmd, app, cfg)
			if err != nil {
				return err
			}

			// Dots would corrupt the alternate screen.
			quiet := *app
			quiet.ShowProgress = nil
			regenerate := func() tea.Msg {
				res, err := generate(cmd, &quiet, cfg)
				if err != nil {
					return reportMsg{err: err}
				}
				return reportMsg{report: res.Report}
			}

			m := newBrowseModel(res.Report, regenerate, app.Now)
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithContext(cmd.Context()),
			)
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().AddFlagSet(rf.flagSet())
	return cmd
}
