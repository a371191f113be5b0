package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/alexanderramin/redtally/internal/cli/formatter"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/render"
	"github.com/alexanderramin/redtally/internal/report"
	"github.com/alexanderramin/redtally/internal/service"
	"github.com/spf13/cobra"
)

// generate runs one report generation for cfg. One dot per root issue
// goes to stderr when progress is enabled.
func generate(cmd *cobra.Command, app *App, cfg config.Config) (*service.Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if app.OpenReports == nil {
		return nil, fmt.Errorf("%w: no data source configured", domain.ErrConfiguration)
	}

	req, err := service.NewReportRequest(cfg, app.now())
	if err != nil {
		return nil, err
	}

	var dots *formatter.Dots
	if app.progress() {
		dots = formatter.NewDots(cmd.ErrOrStderr())
		req.OnVisit = func(issue domain.Issue, level int, entries int) {
			if level == 0 {
				dots.Step()
			}
		}
	}
	defer dots.Done()

	reports, err := app.OpenReports(cfg)
	if err != nil {
		return nil, err
	}
	defer reports.Close()

	return reports.Generate(cmd.Context(), req)
}

// writeReport renders r in cfg.Output.Format. Text goes to stdout unless
// output names a file; file formats go to the configured file name unless
// output is "-".
func writeReport(cmd *cobra.Command, cfg config.Config, output string, r *report.Report) error {
	stdout := cmd.OutOrStdout()

	var write func(w io.Writer) error
	if cfg.Output.Format == config.FormatText {
		write = func(w io.Writer) error {
			_, err := fmt.Fprintln(w, formatter.FormatReport(r))
			return err
		}
		if output == "" {
			output = "-"
		}
	} else {
		fileWriter, err := render.ForFormat(cfg.Output.Format)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return fileWriter(w, r) }
	}

	if output == "-" {
		return write(stdout)
	}
	if output == "" {
		w, err := r.Window()
		if err != nil {
			return err
		}
		output = cfg.OutputPath(w)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report file: %w", err)
	}
	fmt.Fprintf(stdout, "%s %s\n", formatter.StyleGreen.Render("✔ Report written to"), output)
	return nil
}
