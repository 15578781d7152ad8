package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/ledger"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/tui/components"
	"github.com/theirongolddev/thenumber/internal/tui/theme"
)

func (a App) renderToday(cw int) string {
	t := theme.Active

	if !a.configured() {
		return components.ContentCard("No plan yet",
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).
				Render("Press c to tell thenumber how you get money."), cw)
	}
	n := *a.dash.Number

	numberColor := t.Good
	if n.IsOverBudget {
		numberColor = t.Over
	}

	metrics := []components.Metric{
		{Label: "The Number", Value: cli.FormatMoney(n.TheNumber), Color: numberColor, Note: "per day"},
		{Label: "Spent today", Value: cli.FormatMoney(n.TodaySpending)},
		{Label: "Left today", Value: cli.FormatMoney(n.RemainingToday), Color: numberColor},
		{Label: "Days left", Value: cli.FormatDays(n.DaysRemaining)},
	}

	var b strings.Builder
	b.WriteString(components.MetricRow(metrics, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	bar := components.AllowanceBar("Today", n.TodaySpending, n.TheNumber, 7, max(inner-14, 10))
	b.WriteString(components.ContentCard("", bar, cw))
	b.WriteString("\n")

	widths := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Plan", a.planBody(n, components.CardInnerWidth(widths[0])), widths[0]),
		components.ContentCard("Recent", a.recentBody(components.CardInnerWidth(widths[1])), widths[1]),
	}))

	return b.String()
}

func (a App) planBody(n model.BudgetNumber, width int) string {
	t := theme.Active

	rows := [][2]string{}
	switch n.Mode {
	case model.ModePaycheck:
		rows = append(rows,
			[2]string{"Monthly income", cli.FormatMoney(n.TotalIncome)},
			[2]string{"Expenses", cli.FormatMoney(n.TotalExpenses)},
			[2]string{"Left this period", cli.FormatMoney(n.RemainingMoney)},
			[2]string{"Original daily", cli.FormatMoney(n.OriginalDailyBudget)},
			[2]string{"Tomorrow", cli.FormatMoney(n.TomorrowDailyBudget)},
		)
		if n.Deficit > 0 {
			rows = append(rows, [2]string{"Deficit", cli.FormatMoney(n.Deficit)})
		}
	case model.ModeFixedPool:
		rows = append(rows,
			[2]string{"Pool", cli.FormatMoney(n.TotalMoney)},
			[2]string{"Remaining", cli.FormatMoney(n.RemainingMoney)},
			[2]string{"Monthly expenses", cli.FormatMoney(n.TotalExpenses)},
			[2]string{"Horizon", horizonLabel(n.HorizonKind)},
		)
		if n.WillLastDays > 0 {
			rows = append(rows, [2]string{"Will last", cli.FormatDays(n.WillLastDays)})
		}
		if !n.DepletionDate.IsZero() {
			rows = append(rows, [2]string{"Runs out", cli.FormatDate(n.DepletionDate.In(a.location()))})
		}
	}

	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = spread(label.Render(r[0]), value.Render(r[1]), width)
	}
	return strings.Join(lines, "\n")
}

func horizonLabel(k model.HorizonKind) string {
	switch k {
	case model.HorizonTargetDate:
		return "target date"
	case model.HorizonDailyLimit:
		return "daily limit"
	default:
		return "expenses"
	}
}

func (a App) recentBody(width int) string {
	t := theme.Active

	if len(a.dash.Recent) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Nothing logged yet.")
	}

	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	desc := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	spent := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	got := lipgloss.NewStyle().Foreground(t.Info).Background(t.Surface)

	loc := a.location()
	lines := make([]string, 0, len(a.dash.Recent))
	for _, txn := range a.dash.Recent {
		amount := spent.Render(cli.FormatMoney(txn.Amount))
		if ledger.IsIncome(txn) {
			amount = got.Render("+" + cli.FormatMoney(txn.Amount))
		}
		left := dim.Render(txn.Date.In(loc).Format("Jan 2")+"  ") + desc.Render(truncStr(txn.Description, width-20))
		lines = append(lines, spread(left, amount, width))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderExpenses(cw int) string {
	t := theme.Active

	metrics := []components.Metric{
		{Label: "Monthly expenses", Value: cli.FormatMoney(a.dash.FixedTotal + a.dash.VariableTotal)},
		{Label: "Fixed", Value: cli.FormatMoney(a.dash.FixedTotal)},
		{Label: "Variable", Value: cli.FormatMoney(a.dash.VariableTotal)},
	}

	var b strings.Builder
	b.WriteString(components.MetricRow(metrics, cw))
	b.WriteString("\n")

	inner := components.CardInnerWidth(cw)
	if len(a.dash.Expenses) == 0 {
		b.WriteString(components.ContentCard("Expenses",
			lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No expenses. Press a to add one."), cw))
		return b.String()
	}

	normal := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selected := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	lines := make([]string, len(a.dash.Expenses))
	for i, e := range a.dash.Expenses {
		kind := "variable"
		if e.IsFixed {
			kind = "fixed"
		}
		left := fmt.Sprintf("%-*s %-8s", max(inner-24, 8), truncStr(e.Name, max(inner-24, 8)), kind)
		row := left + fmt.Sprintf("%14s", cli.FormatMoney(e.Amount))
		if i == a.cursor {
			lines[i] = selected.Width(inner).Render(row)
		} else {
			lines[i] = normal.Render(row)
		}
	}
	b.WriteString(components.ContentCard("Expenses", strings.Join(lines, "\n")+"\n"+
		dim.Render("every expense counts toward the monthly total"), cw))

	return b.String()
}

func (a App) renderHistory(cw, h int) string {
	t := theme.Active

	if len(a.history) == 0 {
		return components.ContentCard("History",
			lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("No days recorded yet."), cw)
	}

	// history is newest first; the chart reads left to right.
	days := slices.Clone(a.history)
	slices.Reverse(days)

	values := make([]float64, len(days))
	labels := make([]string, len(days))
	for i, d := range days {
		values[i] = d.Net
		labels[i] = d.Date.Format("1/2")
	}

	limit := 0.0
	if a.configured() {
		limit = a.dash.Number.TheNumber
	}

	inner := components.CardInnerWidth(cw)
	chartH := min(max(h/2-4, 3), 10)
	chart := components.SpendChart(values, labels, limit, inner, chartH)

	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	row := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	lines := []string{header.Render(fmt.Sprintf("%-10s %12s %12s %12s %6s", "Day", "Spent", "Received", "Net", "Txns"))}
	for _, d := range a.history {
		lines = append(lines, row.Render(fmt.Sprintf("%-10s %12s %12s %12s %6d",
			d.Date.Format("Mon Jan 2"),
			cli.FormatMoney(d.Spent),
			cli.FormatMoney(d.Received),
			cli.FormatMoney(d.Net),
			d.Count,
		)))
	}

	return components.ContentCard(fmt.Sprintf("Last %d days", len(a.history)), chart, cw) + "\n" +
		components.ContentCard("", strings.Join(lines, "\n"), cw)
}

// spread places left and right at opposite ends of width cells.
func spread(left, right string, width int) string {
	gap := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + lipgloss.NewStyle().Background(theme.Active.Surface).Render(strings.Repeat(" ", gap)) + right
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-1]) + "…"
}
