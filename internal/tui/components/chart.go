package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/thenumber/internal/tui/theme"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// SpendChart renders one bar per day. Bars that cross limit are drawn in
// the over color, and the limit itself is marked on the y axis. Negative
// values (days with net income) render empty.
func SpendChart(values []float64, labels []string, limit float64, width, height int) string {
	if len(values) == 0 || width < 15 || height < 3 {
		return ""
	}
	t := theme.Active

	peak := limit
	for _, v := range values {
		peak = max(peak, v)
	}
	if peak <= 0 {
		peak = 1
	}
	step := chartTickStep(peak)
	ceiling := math.Ceil(peak/step) * step

	yLabelW := max(len(formatChartLabel(ceiling))+1, 5)
	chartW := max(width-yLabelW-1, 5)

	n := len(values)
	if maxBars := (chartW + 1) / 2; n > maxBars {
		values = values[n-maxBars:]
		if len(labels) == n {
			labels = labels[n-maxBars:]
		}
		n = maxBars
	}
	barW := min(max((chartW-(n-1))/n, 1), 6)

	surface := lipgloss.NewStyle().Background(t.Surface)
	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	limitRow := -1
	if limit > 0 {
		limitRow = int(math.Round(limit / ceiling * float64(height)))
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)

		label := ""
		switch row {
		case height:
			label = formatChartLabel(ceiling)
		case limitRow:
			label = formatChartLabel(limit)
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s", yLabelW, label)))
		if row == limitRow {
			b.WriteString(axis.Render("┤"))
		} else {
			b.WriteString(axis.Render("│"))
		}

		for i, v := range values {
			if i > 0 {
				b.WriteString(surface.Render(" "))
			}
			color := t.Accent
			if limit > 0 && v > limit {
				color = t.Over
			}
			bar := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

			switch {
			case v >= top:
				b.WriteString(bar.Render(strings.Repeat("█", barW)))
			case v > bottom:
				idx := min(max(int((v-bottom)/(top-bottom)*8), 1), 8)
				b.WriteString(bar.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(surface.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	axisLen := n*barW + n - 1
	b.WriteString(axis.Render(fmt.Sprintf("%*s", yLabelW, "$0")))
	b.WriteString(axis.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		buf := []byte(strings.Repeat(" ", axisLen))
		lastEnd := -1
		for i, lbl := range labels {
			pos := i * (barW + 1)
			end := pos + len(lbl)
			if pos <= lastEnd || end > axisLen {
				continue
			}
			copy(buf[pos:end], lbl)
			lastEnd = end
		}
		b.WriteString("\n")
		b.WriteString(surface.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axis.Render(strings.TrimRight(string(buf), " ")))
	}

	return b.String()
}

// chartTickStep picks a round tick interval giving about five ticks.
func chartTickStep(peak float64) float64 {
	if peak <= 0 {
		return 1
	}
	rough := peak / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))

	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case v >= 1e4:
		return fmt.Sprintf("$%.0fk", v/1e3)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fk", v/1e3)
	case v == math.Trunc(v):
		return fmt.Sprintf("$%.0f", v)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}
