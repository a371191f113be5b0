package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/report"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

var (
	validSources    = map[string]bool{SourceAPI: true, SourceSQLite: true}
	validFormats    = map[string]bool{FormatText: true, FormatMarkdown: true, FormatCSV: true, FormatJSON: true}
	validLogFormats = map[string]bool{"": true, "console": true, "json": true}
)

// Validate checks the whole configuration and reports every problem at
// once. The error wraps domain.ErrConfiguration.
func (c Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateSource()...)
	errs = append(errs, c.validateWindow()...)

	if c.Depth < 0 {
		errs = append(errs, fmt.Errorf("depth must be >= 0, got %d", c.Depth))
	}
	if _, err := report.ParseLanguage(c.Language); err != nil {
		errs = append(errs, fmt.Errorf("language: invalid value %q (use EN or RU)", c.Language))
	}
	for i, o := range c.Overrides {
		if o.Role == "" || o.Activity == "" || o.ReportAs == "" {
			errs = append(errs, fmt.Errorf("overrides[%d]: role, activity and report_as are required", i))
		}
	}
	if !validFormats[c.Output.Format] {
		errs = append(errs, fmt.Errorf("output.format: invalid value %q", c.Output.Format))
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: invalid value %q", c.Log.Level))
	}
	if !validLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format: invalid value %q", c.Log.Format))
	}
	if c.Server.Schedule != "" {
		if _, err := cron.ParseStandard(c.Server.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("server.schedule: %v", err))
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrConfiguration, errors.Join(errs...))
}

func (c Config) validateSource() []error {
	var errs []error
	if !validSources[c.Source] {
		return append(errs, fmt.Errorf("source: invalid value %q (use api or sqlite)", c.Source))
	}

	switch c.Source {
	case SourceAPI:
		if c.Redmine.URL == "" {
			errs = append(errs, fmt.Errorf("redmine.url is required"))
		} else if u, err := url.Parse(c.Redmine.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("redmine.url: invalid url %q", c.Redmine.URL))
		}
		if c.Redmine.Timeout <= 0 {
			errs = append(errs, fmt.Errorf("redmine.timeout must be positive"))
		}
		if c.Redmine.MaxRetries < 0 {
			errs = append(errs, fmt.Errorf("redmine.max_retries must be >= 0"))
		}
		if c.Redmine.PageSize < 0 || c.Redmine.PageSize > 100 {
			errs = append(errs, fmt.Errorf("redmine.page_size must be between 1 and 100"))
		}
	case SourceSQLite:
		if c.Database.Path == "" {
			errs = append(errs, fmt.Errorf("database.path is required for the sqlite source"))
		}
	}
	return errs
}

func (c Config) validateWindow() []error {
	w := c.Window
	switch {
	case w.From == "" && w.To == "":
		if w.Days <= 0 {
			return []error{fmt.Errorf("window.days must be positive, got %d", w.Days)}
		}
	case w.From == "" || w.To == "":
		return []error{fmt.Errorf("window.from and window.to must be set together")}
	default:
		if _, err := domain.ParseWindow(w.From, w.To); err != nil {
			return []error{fmt.Errorf("window: %v", err)}
		}
	}
	return nil
}
