package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/redtally/internal/cli/formatter"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// redtallyHuhTheme returns a huh theme matching the Gruvbox formatter palette.
func redtallyHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused state: orange accent
	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(formatter.ColorRed)

	// Blurred state: dimmed
	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// initAnswers holds the wizard's fields as typed.
type initAnswers struct {
	Source   string
	URL      string
	APIKey   string
	DBPath   string
	Language string
	Days     string
	Depth    string
}

func answersFrom(cfg config.Config) initAnswers {
	return initAnswers{
		Source:   cfg.Source,
		URL:      cfg.Redmine.URL,
		APIKey:   cfg.Redmine.APIKey,
		DBPath:   cfg.Database.Path,
		Language: strings.ToUpper(cfg.Language),
		Days:     strconv.Itoa(cfg.Window.Days),
		Depth:    strconv.Itoa(cfg.Depth),
	}
}

// apply copies the answers onto cfg and validates the result.
func (a initAnswers) apply(cfg config.Config) (config.Config, error) {
	days, err := parseNonNegative("days", a.Days)
	if err != nil {
		return cfg, err
	}
	depth, err := parseNonNegative("depth", a.Depth)
	if err != nil {
		return cfg, err
	}

	cfg.Source = a.Source
	cfg.Redmine.URL = strings.TrimSpace(a.URL)
	cfg.Redmine.APIKey = strings.TrimSpace(a.APIKey)
	cfg.Database.Path = strings.TrimSpace(a.DBPath)
	cfg.Language = a.Language
	cfg.Window = config.WindowConfig{Days: days}
	cfg.Depth = depth

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parseNonNegative(field, s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a whole number >= 0, got %q", field, s)
	}
	return n, nil
}

func validateNonNegative(field string) func(string) error {
	return func(s string) error {
		_, err := parseNonNegative(field, s)
		return err
	}
}

// initForm builds the setup wizard over a.
func initForm(a *initAnswers) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should time entries come from?").
				Options(
					huh.NewOption("Redmine REST API", config.SourceAPI),
					huh.NewOption("Redmine SQLite database file", config.SourceSQLite),
				).
				Value(&a.Source),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Redmine URL").
				Placeholder("https://redmine.example.com").
				Value(&a.URL),
			huh.NewInput().
				Title("API key").
				Description("My account → API access key").
				EchoMode(huh.EchoModePassword).
				Value(&a.APIKey),
		).WithHideFunc(func() bool { return a.Source != config.SourceAPI }),
		huh.NewGroup(
			huh.NewInput().
				Title("Database file").
				Placeholder("/var/lib/redmine/db/production.sqlite3").
				Value(&a.DBPath),
		).WithHideFunc(func() bool { return a.Source != config.SourceSQLite }),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Report language").
				Options(huh.NewOption("English", "EN"), huh.NewOption("Русский", "RU")).
				Value(&a.Language),
			huh.NewInput().
				Title("Days to report").
				Validate(validateNonNegative("days")).
				Value(&a.Days),
			huh.NewInput().
				Title("Issue depth").
				Description("0 reports root issues only").
				Validate(validateNonNegative("depth")).
				Value(&a.Depth),
		),
	).WithTheme(redtallyHuhTheme()).WithShowHelp(false)
}
