package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/thenumber/internal/tui/theme"
)

// RenderStatusBar renders the bottom bar: key hints on the left and status
// on the right. An error replaces the status.
func RenderStatusBar(width int, hints, status, errMsg string) string {
	t := theme.Active

	left := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(" " + hints)

	right := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render(status + " ")
	if errMsg != "" {
		right = lipgloss.NewStyle().Foreground(t.Over).Background(t.Surface).Bold(true).Render(errMsg + " ")
	}

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	fill := lipgloss.NewStyle().Background(t.Surface).Width(gap).Render("")

	return lipgloss.NewStyle().MaxWidth(width).Render(left + fill + right)
}
