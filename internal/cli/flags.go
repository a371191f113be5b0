package cli

import (
	"fmt"

	"github.com/alexanderramin/redtally/internal/config"
	"github.com/spf13/pflag"
)

// runFlags are the generation settings shared by report, tree, browse.
type runFlags struct {
	from, to string
	days     int
	depth    int
	lang     string
	projects []string
	exclude  []string
}

func (f *runFlags) flagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.StringVar(&f.from, "from", "", "First day of the window (YYYY-MM-DD)")
	fs.StringVar(&f.to, "to", "", "Last day of the window (YYYY-MM-DD)")
	fs.IntVar(&f.days, "days", 0, "Window of this many days ending today")
	fs.IntVar(&f.depth, "depth", 0, "Deepest issue level to walk (0 = root issues only)")
	fs.StringVar(&f.lang, "lang", "", "Report language (EN or RU)")
	fs.StringSliceVar(&f.projects, "project", nil, "Limit to projects by name, identifier or ID (repeatable)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "Activities left out of the tables (repeatable)")
	return fs
}

// apply overlays the flags the user set onto cfg.
func (f *runFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	fromSet, toSet := fs.Changed("from"), fs.Changed("to")
	if fromSet != toSet {
		return fmt.Errorf("--from and --to must be given together")
	}
	if fromSet && fs.Changed("days") {
		return fmt.Errorf("--days cannot be combined with --from/--to")
	}
	if fromSet {
		cfg.Window.From, cfg.Window.To = f.from, f.to
	}
	if fs.Changed("days") {
		cfg.Window = config.WindowConfig{Days: f.days}
	}
	if fs.Changed("depth") {
		cfg.Depth = f.depth
	}
	if fs.Changed("lang") {
		cfg.Language = f.lang
	}
	if fs.Changed("project") {
		cfg.Projects = f.projects
	}
	if fs.Changed("exclude") {
		cfg.ExcludedActivities = append(append([]string(nil), cfg.ExcludedActivities...), f.exclude...)
	}
	return nil
}
