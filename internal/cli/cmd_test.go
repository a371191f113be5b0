package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/redtally/internal/app"
	"github.com/alexanderramin/redtally/internal/config"
	"github.com/alexanderramin/redtally/internal/domain"
	"github.com/alexanderramin/redtally/internal/report"
	"github.com/alexanderramin/redtally/internal/service"
	"github.com/alexanderramin/redtally/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp wires an App over the in-memory fixture source.
func testApp(t *testing.T) *App {
	t.Helper()
	src := testutil.NewFakeSource(nil)

	cfg := config.Default()
	cfg.Redmine.URL = "https://redmine.test"
	cfg.Redmine.APIKey = "0123456789abcdef"
	cfg.Window = config.WindowConfig{
		From: testutil.FixtureWindow.FromString(),
		To:   testutil.FixtureWindow.ToString(),
	}

	return &App{
		Config: cfg,
		Log:    zerolog.Nop(),
		OpenReports: fakeReports(src),
		Now: func() time.Time { return testutil.FixtureDay.Add(9 * time.Hour) },
	}
}

func fakeReports(src *testutil.FakeSource) func(config.Config) (*app.Reports, error) {
	return func(config.Config) (*app.Reports, error) {
		return app.NewReports(service.NewReportService(src, zerolog.Nop()), nil), nil
	}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	stdout, stderr, err := executeCmdStreams(t, app, args...)
	return stdout + stderr, err
}

func executeCmdStreams(t *testing.T, app *App, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCmd(app)
	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	root.SetOut(out)
	root.SetErr(errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

// --- report ---

func TestReportCmd_TextToStdout(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "report")
	require.NoError(t, err)

	assert.Contains(t, output, "TIME SPENT ON PROJECTS (ISSUE NOT SPECIFIED)")
	assert.Contains(t, output, "Project Apollo")
	assert.Contains(t, output, "Launch")
	assert.Contains(t, output, "Docs")
	assert.Contains(t, output, "alice")
}

func TestReportCmd_Russian(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "report", "--lang", "ru")
	require.NoError(t, err)
	assert.Contains(t, output, "Проект Apollo")
	assert.Contains(t, output, "Всего")
}

func TestReportCmd_MarkdownToStdout(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "report", "--format", "markdown", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(output, "# Redmine\n"), output)
	assert.Contains(t, output, "### Project Apollo")
	assert.Contains(t, output, "| --- |")
}

func TestReportCmd_JSONToStdout(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "report", "-f", "json", "-o", "-")
	require.NoError(t, err)

	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(output), &r))
	assert.Equal(t, testutil.FixtureWindow.FromString(), r.From)
	assert.Equal(t, testutil.FixtureWindow.ToString(), r.To)
	require.Len(t, r.Projects, 2)
	assert.Equal(t, "Apollo", r.Projects[0].Name)
	assert.Equal(t, "Zeus", r.Projects[1].Name)
	require.Len(t, r.Issues, 1)

	subjects := map[string]bool{}
	for _, it := range r.Issues[0].Issues {
		subjects[it.Subject] = true
	}
	assert.True(t, subjects["Launch"])
	assert.True(t, subjects["Docs"])
}

func TestReportCmd_CSVToFile(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	output, err := executeCmd(t, app, "report", "--format", "csv", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, output, "Report written to")
	assert.Contains(t, output, path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.NotEmpty(t, records)
	assert.Equal(t, []string{"section", "project", "issue", "subject", "level", "label"}, records[0][:6])
}

func TestReportCmd_FileFormatUsesConfiguredName(t *testing.T) {
	app := testApp(t)
	dir := t.TempDir()
	app.Config.Output.Filename = filepath.Join(dir, "report_{from}_{to}.md")
	app.Config.Output.Format = config.FormatMarkdown

	_, err := executeCmd(t, app, "report")
	require.NoError(t, err)

	want := filepath.Join(dir, "report_"+testutil.FixtureWindow.FromString()+"_"+testutil.FixtureWindow.ToString()+".md")
	data, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Redmine")
}

func TestReportCmd_TextToFile(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "report.txt")

	_, err := executeCmd(t, app, "report", "-o", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Apollo")
}

func TestReportCmd_UnknownFormat(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "report", "--format", "pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestReportCmd_ProgressDotsOnStderr(t *testing.T) {
	app := testApp(t)
	app.ShowProgress = func() bool { return true }

	stdout, stderr, err := executeCmdStreams(t, app, "report")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "..")
	assert.Equal(t, 2, strings.Count(stderr, "."), "one dot per root issue")
	assert.True(t, strings.HasSuffix(stderr, "\n"))
}

func TestReportCmd_HelpDescribesDepth(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "report", "--help")
	require.NoError(t, err)
	assert.Contains(t, output, "every issue walked (down to --depth)")
	assert.NotContains(t, output, "every root issue")
}

func TestReportCmd_ProjectFilter(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "report", "--project", "zeus")
	require.NoError(t, err)
	assert.NotContains(t, output, "Apollo")
	assert.NotContains(t, output, "No time entries.")
	assert.Contains(t, output, "Zeus")
	assert.Contains(t, output, "Total")
}

func TestReportCmd_FlagConflicts(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"from without to", []string{"report", "--from", "2025-06-01"}, "--from and --to"},
		{"to without from", []string{"report", "--to", "2025-06-01"}, "--from and --to"},
		{"days with window", []string{"report", "--from", "2025-06-01", "--to", "2025-06-30", "--days", "7"}, "--days"},
		{"negative depth", []string{"report", "--depth", "-1"}, "depth"},
		{"bad language", []string{"report", "--lang", "de"}, "language"},
		{"reversed window", []string{"report", "--from", "2025-06-30", "--to", "2025-06-01"}, "window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := testApp(t)
			_, err := executeCmd(t, app, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReportCmd_DaysResolvedAgainstNow(t *testing.T) {
	app := testApp(t)
	app.Now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

	output, err := executeCmd(t, app, "report", "--days", "7", "-f", "json", "-o", "-")
	require.NoError(t, err)

	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(output), &r))
	assert.Equal(t, "2026-03-08", r.From)
	assert.Equal(t, "2026-03-15", r.To)
	require.Len(t, r.Projects, 2)
	for _, p := range r.Projects {
		assert.Empty(t, p.Table.Rows, p.Name)
		assert.Equal(t, []float64{0, 0, 0, 0, 0, 0}, p.Table.Total.Values, p.Name)
	}
	assert.Empty(t, r.Issues)
}

func TestReportCmd_NoSource(t *testing.T) {
	app := testApp(t)
	app.OpenReports = nil

	_, err := executeCmd(t, app, "report")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

func TestReportCmd_SourceFailure(t *testing.T) {
	app := testApp(t)
	src := testutil.NewFakeSource(nil).FailOn("Projects", 0, errors.New("connection refused"))
	app.OpenReports = fakeReports(src)

	_, err := executeCmd(t, app, "report")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrSourceFailure))
}

// --- tree ---

func TestTreeCmd_ShowsHierarchy(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "tree", "--depth", "2")
	require.NoError(t, err)

	assert.Contains(t, output, "Information about resources for time period")
	assert.Contains(t, output, "Apollo")
	assert.Contains(t, output, "#10")
	assert.Contains(t, output, "#11")
	assert.Contains(t, output, "#12")
	assert.Contains(t, output, "Fuel pump")
}

func TestTreeCmd_DepthZeroOmitsChildren(t *testing.T) {
	app := testApp(t)

	output, err := executeCmd(t, app, "tree")
	require.NoError(t, err)
	assert.Contains(t, output, "#10")
	assert.NotContains(t, output, "#11")
}

// --- config ---

func TestConfigShow_MasksAPIKey(t *testing.T) {
	app := testApp(t)
	app.ConfigPath = "/etc/redtally.yaml"

	output, err := executeCmd(t, app, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "# /etc/redtally.yaml")
	assert.Contains(t, output, "************cdef")
	assert.NotContains(t, output, "0123456789abcdef")
}

func TestConfigShow_ListsProblems(t *testing.T) {
	app := testApp(t)
	app.Config.Redmine.URL = ""
	app.Config.Depth = -2

	output, err := executeCmd(t, app, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "redmine.url is required")
	assert.Contains(t, output, "depth must be >= 0")
}

func TestRootCmd_ConfigFlagLoadsFile(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("source: sqlite\ndatabase:\n  path: /tmp/redmine.db\n"), 0o600))

	output, err := executeCmd(t, app, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "source: sqlite")
	assert.Contains(t, output, "/tmp/redmine.db")
	assert.Equal(t, path, app.ConfigPath)
}

func TestRootCmd_ConfigFlagBadYAML(t *testing.T) {
	app := testApp(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("depth: [\n"), 0o600))

	_, err := executeCmd(t, app, "--config", path, "config", "show")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}

// --- interactive commands ---

func TestBrowseCmd_RequiresTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "browse")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestInitCmd_RequiresTerminal(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "interactive terminal")
}

func TestInitCmd_RefusesToOverwrite(t *testing.T) {
	app := testApp(t)
	app.IsInteractive = func() bool { return true }
	app.ConfigPath = filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(app.ConfigPath, []byte("depth: 1\n"), 0o600))

	_, err := executeCmd(t, app, "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

// --- serve ---

func TestServeCmd_RejectsBadSchedule(t *testing.T) {
	app := testApp(t)

	_, err := executeCmd(t, app, "serve", "--schedule", "not a schedule")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfiguration))
}
