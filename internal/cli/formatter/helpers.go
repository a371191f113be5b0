package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(1, 2)

// TitleBox frames lines under an upper-cased title. An empty title leaves
// just the lines.
func TitleBox(title string, lines ...string) string {
	body := strings.Join(lines, "\n")
	if title == "" {
		return boxStyle.Render(body)
	}
	return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + body)
}

const stampLayout = "Jan 2, 2006 15:04"

// Ago describes t relative to now: "Just now", "12m ago", "3h ago", and
// the full date once a day has passed or when t is ahead of now.
func Ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < 0 || d >= 24*time.Hour:
		return t.Format(stampLayout)
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	default:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	}
}

// ShortID keeps the first block of a run ID, dimmed.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	} else if len(id) > 8 {
		id = id[:8]
	}
	return Dim(id)
}

// Indent shifts every non-empty line of s right by n spaces.
func Indent(s string, n int) string {
	if n <= 0 {
		return s
	}
	pad := strings.Repeat(" ", n)
	var b strings.Builder
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		if line != "" {
			b.WriteString(pad)
		}
		b.WriteString(line)
	}
	return b.String()
}
