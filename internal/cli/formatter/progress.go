package formatter

import "strings"

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampShare(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

func bar(pct float64, width int) string {
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
}

// RenderCompactBar renders a bare share bar with no brackets or percentage,
// for use inside tree badges.
func RenderCompactBar(pct float64, width int, dim bool) string {
	pct = clampShare(pct)
	if width < 2 {
		width = 2
	}
	if dim {
		return StyleDim.Render(bar(pct, width))
	}
	return StyleBlue.Render(bar(pct, width))
}
