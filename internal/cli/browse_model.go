package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/redtally/internal/cli/formatter"
	"github.com/alexanderramin/redtally/internal/report"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// reportMsg carries the outcome of a background regeneration.
type reportMsg struct {
	report *report.Report
	err    error
}

type browseKeyMap struct {
	Refresh key.Binding
	Top     key.Binding
	Bottom  key.Binding
	Quit    key.Binding
}

func defaultBrowseKeys() browseKeyMap {
	return browseKeyMap{
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Top:     key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func browseViewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn", "page down")),
		PageUp:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	}
}

// browseModel shows a rendered report in a scrollable viewport and can
// regenerate it in place.
type browseModel struct {
	vp         viewport.Model
	keys       browseKeyMap
	report     *report.Report
	regenerate tea.Cmd
	now        func() time.Time

	ready      bool
	generating bool
	err        error
}

func newBrowseModel(r *report.Report, regenerate tea.Cmd, now func() time.Time) browseModel {
	vp := viewport.New(0, 0)
	vp.KeyMap = browseViewportKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3

	if now == nil {
		now = time.Now
	}
	return browseModel{
		vp:         vp,
		keys:       defaultBrowseKeys(),
		report:     r,
		regenerate: regenerate,
		now:        now,
	}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		// Status bar and key help take one line each.
		m.vp.Height = max(msg.Height-2, 1)
		if !m.ready {
			m.vp.SetContent(formatter.FormatReport(m.report))
			m.ready = true
		}
		return m, nil

	case reportMsg:
		m.generating = false
		m.err = msg.err
		if msg.err == nil && msg.report != nil {
			m.report = msg.report
			m.vp.SetContent(formatter.FormatReport(m.report))
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Refresh):
			if m.generating || m.regenerate == nil {
				return m, nil
			}
			m.generating = true
			m.err = nil
			return m, m.regenerate
		case key.Matches(msg, m.keys.Top):
			m.vp.GotoTop()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.vp.GotoBottom()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	if !m.ready {
		return formatter.Dim("loading…")
	}
	return m.vp.View() + "\n" + m.statusBar() + "\n" + m.helpLine()
}

func (m browseModel) statusBar() string {
	var left string
	switch {
	case m.generating:
		left = formatter.StyleYellow.Render("regenerating…")
	case m.err != nil:
		left = formatter.StyleRed.Render("Error: " + m.err.Error())
	default:
		left = fmt.Sprintf("%s %s %s",
			formatter.ShortID(m.report.RunID),
			formatter.Dim("· generated"),
			formatter.Dim(formatter.Ago(m.report.GeneratedAt, m.now())))
	}
	right := scrollIndicator(m.vp)
	gap := m.vp.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m browseModel) helpLine() string {
	bindings := []key.Binding{m.vp.KeyMap.Up, m.vp.KeyMap.Down, m.vp.KeyMap.PageDown, m.keys.Top, m.keys.Refresh, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return formatter.Dim(strings.Join(parts, " · "))
}

// scrollIndicator returns a dim scroll position string for the status bar.
func scrollIndicator(vp viewport.Model) string {
	if vp.AtTop() {
		return formatter.Dim("[TOP]")
	}
	if vp.AtBottom() {
		return formatter.Dim("[END]")
	}
	pct := int(vp.ScrollPercent() * 100)
	return formatter.Dim(fmt.Sprintf("[%d%%]", pct))
}
