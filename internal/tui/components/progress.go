package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/thenumber/internal/tui/theme"
)

// UsageRatio is spent over allowance clamped to [0, 1]. A non-positive
// allowance reads as fully used.
func UsageRatio(spent, allowance float64) float64 {
	if allowance <= 0 {
		return 1
	}
	return min(max(spent/allowance, 0), 1)
}

// AllowanceBar renders a labeled bar of how much of today's number is spent.
func AllowanceBar(label string, spent, allowance float64, labelW, barWidth int) string {
	t := theme.Active
	color := t.ForUsage(spent, allowance)

	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	pct := "over"
	if allowance > 0 {
		pct = fmt.Sprintf("%3.0f%%", spent/allowance*100)
	}

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, label)) +
		space +
		bar.ViewAs(UsageRatio(spent, allowance)) +
		space +
		pctStyle.Render(pct)
}
