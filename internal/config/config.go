// Package config loads redtally settings from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/redtally/internal/activity"
	"github.com/alexanderramin/redtally/internal/domain"
	"gopkg.in/yaml.v3"
)

// Source kinds.
const (
	SourceAPI    = "api"
	SourceSQLite = "sqlite"
)

// Output formats.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Config holds every setting of a run.
type Config struct {
	// Source selects where time entries come from: "api" or "sqlite".
	Source   string         `yaml:"source"`
	Redmine  RedmineConfig  `yaml:"redmine"`
	Database DatabaseConfig `yaml:"database"`
	Window   WindowConfig   `yaml:"window"`

	// Depth is the deepest issue level walked below root issues.
	// 0 reports root issues only.
	Depth    int    `yaml:"depth"`
	Language string `yaml:"language"`

	// Overrides relabel activities per role.
	Overrides []activity.Override `yaml:"overrides,omitempty"`
	// ExcludedActivities are left out of every table.
	ExcludedActivities []string `yaml:"excluded_activities,omitempty"`
	// Projects limits the report to projects matched by name or
	// identifier. Empty means all projects.
	Projects []string `yaml:"projects,omitempty"`

	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
	Server ServerConfig `yaml:"server"`
}

type RedmineConfig struct {
	URL                string        `yaml:"url"`
	APIKey             string        `yaml:"api_key"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	PageSize           int           `yaml:"page_size"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// WindowConfig is either Days back from today or an explicit From/To pair.
type WindowConfig struct {
	Days int    `yaml:"days"`
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
}

type OutputConfig struct {
	// Filename may contain {from} and {to}; "-" writes to stdout.
	Filename string `yaml:"filename"`
	Format   string `yaml:"format"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Format is "console", "json", or empty to pick by terminal.
	Format string `yaml:"format"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Schedule is a cron spec for periodic regeneration; empty disables it.
	Schedule string `yaml:"schedule"`
}

// DefaultFilename is the report file name pattern.
const DefaultFilename = "redmine_report_{from}_{to}.md"

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Source: SourceAPI,
		Redmine: RedmineConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 2,
			PageSize:   100,
		},
		Window:   WindowConfig{Days: 30},
		Depth:    0,
		Language: "EN",
		Output: OutputConfig{
			Filename: DefaultFilename,
			Format:   FormatText,
		},
		Log: LogConfig{Level: "info"},
		Server: ServerConfig{
			Addr: ":8080",
		},
	}
}

// DefaultPath returns $REDTALLY_CONFIG or ~/.redtally/config.yaml.
func DefaultPath() string {
	if p := os.Getenv("REDTALLY_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".redtally", "config.yaml")
	}
	return filepath.Join(home, ".redtally", "config.yaml")
}

// Load reads the file at path (DefaultPath when empty) over the defaults,
// then applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parsing config %s: %w", domain.ErrConfiguration, path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays REDTALLY_* variables. Unparseable values are ignored.
func applyEnv(cfg *Config) {
	if v := os.Getenv("REDTALLY_SOURCE"); v != "" {
		cfg.Source = v
	}
	if v := os.Getenv("REDTALLY_REDMINE_URL"); v != "" {
		cfg.Redmine.URL = v
	}
	if v := os.Getenv("REDTALLY_REDMINE_API_KEY"); v != "" {
		cfg.Redmine.APIKey = v
	}
	if v := os.Getenv("REDTALLY_REDMINE_INSECURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Redmine.InsecureSkipVerify = b
		}
	}
	if v := os.Getenv("REDTALLY_REDMINE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Redmine.Timeout = d
		}
	}
	if v := os.Getenv("REDTALLY_REDMINE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Redmine.MaxRetries = n
		}
	}
	if v := os.Getenv("REDTALLY_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("REDTALLY_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Window.Days = n
		}
	}
	if v := os.Getenv("REDTALLY_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Depth = n
		}
	}
	if v := os.Getenv("REDTALLY_LANGUAGE"); v != "" {
		cfg.Language = v
	}
	if v := os.Getenv("REDTALLY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("REDTALLY_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("REDTALLY_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("REDTALLY_SERVER_SCHEDULE"); v != "" {
		cfg.Server.Schedule = v
	}
}

// Save writes cfg as YAML, creating the directory if needed. The file is
// private to the user since it holds the API key.
func (c Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// Masked returns a copy safe to print: the API key keeps only its last
// four characters.
func (c Config) Masked() Config {
	out := c
	out.Overrides = append([]activity.Override(nil), c.Overrides...)
	if k := c.Redmine.APIKey; k != "" {
		keep := 4
		if len(k) <= 8 {
			keep = 0
		}
		out.Redmine.APIKey = strings.Repeat("*", len(k)-keep) + k[len(k)-keep:]
	}
	return out
}

// YAML renders the configuration.
func (c Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	return string(data), nil
}

// ReportWindow resolves the configured window against today.
func (c Config) ReportWindow(today time.Time) (domain.Window, error) {
	if c.Window.From != "" || c.Window.To != "" {
		return domain.ParseWindow(c.Window.From, c.Window.To)
	}
	if c.Window.Days <= 0 {
		return domain.Window{}, fmt.Errorf("%w: window.days must be positive, got %d", domain.ErrConfiguration, c.Window.Days)
	}
	return domain.LastDays(today, c.Window.Days), nil
}

// OutputPath expands {from} and {to} in the output file name.
func (c Config) OutputPath(w domain.Window) string {
	name := c.Output.Filename
	if name == "" {
		name = DefaultFilename
	}
	r := strings.NewReplacer("{from}", w.FromString(), "{to}", w.ToString())
	return r.Replace(name)
}

// WantsProject reports whether p passes the Projects filter.
func (c Config) WantsProject(p domain.Project) bool {
	if len(c.Projects) == 0 {
		return true
	}
	for _, want := range c.Projects {
		if p.Matches(want) {
			return true
		}
	}
	return false
}
