// Package tui provides the interactive Bubble Tea dashboard for thenumber.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
	"github.com/theirongolddev/thenumber/internal/tui/components"
	"github.com/theirongolddev/thenumber/internal/tui/theme"
)

// dashboardMsg carries a completed load.
type dashboardMsg struct {
	dash     service.Dashboard
	history  []model.DaySummary
	loadedAt time.Time
	err      error
}

// savedMsg reports the outcome of a write.
type savedMsg struct {
	note string
	err  error
}

type tickMsg time.Time

const (
	tabToday = iota
	tabExpenses
	tabHistory
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	minContentHeight = 5

	historyDays = 14
	opTimeout   = 10 * time.Second
)

// Options configures the dashboard.
type Options struct {
	Recent  int           // recent transactions on the Today tab
	Refresh time.Duration // background reload interval
}

// App is the root Bubble Tea model.
type App struct {
	svc  *service.Service
	opts Options

	// Data
	dash     service.Dashboard
	history  []model.DaySummary
	loaded   bool
	loadedAt time.Time
	busy     bool
	note     string
	err      error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	cursor    int // selected expense

	// huh forms
	form     *huh.Form
	formKind formKind
	vals     *formValues

	spinner spinner.Model
}

// NewApp creates the dashboard model over svc.
func NewApp(svc *service.Service, opts Options) App {
	if opts.Recent <= 0 {
		opts.Recent = 10
	}
	if opts.Refresh < 10*time.Second {
		opts.Refresh = time.Minute
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		svc:     svc,
		opts:    opts,
		busy:    true,
		spinner: sp,
		vals:    &formValues{},
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		a.loadCmd(),
		a.spinner.Tick,
		tickCmd(a.opts.Refresh),
	)
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// loadCmd reads the dashboard and the per-day history in the background.
func (a App) loadCmd() tea.Cmd {
	svc, recent := a.svc, a.opts.Recent
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		dash, err := svc.Dashboard(ctx, recent)
		if err != nil {
			return dashboardMsg{err: err}
		}
		history, err := svc.History(ctx, historyDays)
		if err != nil && !errors.Is(err, service.ErrNotConfigured) {
			return dashboardMsg{err: err}
		}
		return dashboardMsg{dash: dash, history: history, loadedAt: time.Now()}
	}
}

// saveCmd runs a write in the background and reports it as a savedMsg.
func (a App) saveCmd(note string, write func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()
		return savedMsg{note: note, err: write(ctx)}
	}
}

func (a App) configured() bool {
	return a.dash.Number != nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(min(msg.Width, maxContentWidth)).WithHeight(msg.Height)
		}
		return a, nil

	case dashboardMsg:
		a.busy = false
		if msg.err != nil {
			a.err = msg.err
			return a, nil
		}
		firstLoad := !a.loaded
		a.dash, a.history, a.loadedAt = msg.dash, msg.history, msg.loadedAt
		a.loaded = true
		a.err = nil
		a.cursor = min(a.cursor, max(len(a.dash.Expenses)-1, 0))
		if firstLoad && !a.configured() && a.form == nil {
			return a.openForm(formSetup)
		}
		return a, nil

	case savedMsg:
		if msg.err != nil {
			a.busy = false
			a.err = msg.err
			return a, nil
		}
		a.note, a.err = msg.note, nil
		return a, a.loadCmd()

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(a.opts.Refresh)}
		if a.loaded && !a.busy && a.form == nil {
			a.busy = true
			cmds = append(cmds, a.loadCmd())
		}
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.MouseMsg:
		if a.form != nil || a.showHelp || !a.loaded {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	// An open form gets every remaining message.
	if a.form != nil {
		return a.updateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		return a.updateKey(key)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == tabExpenses && a.cursor > 0 {
			a.cursor--
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == tabExpenses && a.cursor < len(a.dash.Expenses)-1 {
			a.cursor++
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionRelease && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
		return a, nil
	case "r":
		a.busy = true
		return a, a.loadCmd()
	case "left", "shift+tab":
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "c":
		return a.openForm(formSetup)
	}

	if !a.loaded {
		return a, nil
	}

	switch key {
	case "s":
		if a.configured() {
			return a.openForm(formSpend)
		}
	case "i":
		if a.configured() {
			return a.openForm(formIncome)
		}
	case "a":
		if a.activeTab == tabExpenses {
			return a.openForm(formExpense)
		}
	case "up", "k":
		if a.activeTab == tabExpenses && a.cursor > 0 {
			a.cursor--
		}
	case "down", "j":
		if a.activeTab == tabExpenses && a.cursor < len(a.dash.Expenses)-1 {
			a.cursor++
		}
	case "f":
		if e, ok := a.selectedExpense(); ok && a.activeTab == tabExpenses {
			fixed := !e.IsFixed
			a.busy = true
			return a, a.saveCmd("Updated "+e.Name, func(ctx context.Context) error {
				_, _, err := a.svc.UpdateExpense(ctx, e.ID, model.ExpensePatch{IsFixed: &fixed})
				return err
			})
		}
	case "d", "delete":
		if e, ok := a.selectedExpense(); ok && a.activeTab == tabExpenses {
			a.busy = true
			return a, a.saveCmd("Removed "+e.Name, func(ctx context.Context) error {
				_, err := a.svc.RemoveExpense(ctx, e.ID)
				return err
			})
		}
	default:
		if len(key) == 1 {
			if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
				a.activeTab = tab
			}
		}
	}

	return a, nil
}

func (a App) selectedExpense() (model.Expense, bool) {
	if a.cursor < 0 || a.cursor >= len(a.dash.Expenses) {
		return model.Expense{}, false
	}
	return a.dash.Expenses[a.cursor], true
}

func (a App) openForm(kind formKind) (tea.Model, tea.Cmd) {
	*a.vals = formValues{}
	loc := a.location()

	switch kind {
	case formSetup:
		a.vals.prefill(a.dash.Config, loc)
		a.form = newSetupForm(a.vals, loc)
	case formSpend:
		a.form = newSpendForm(a.vals, false)
	case formIncome:
		a.form = newSpendForm(a.vals, true)
	case formExpense:
		a.form = newExpenseForm(a.vals)
	default:
		return a, nil
	}

	a.formKind = kind
	a.note, a.err = "", nil
	if a.width > 0 {
		a.form = a.form.WithWidth(min(a.width, maxContentWidth)).WithHeight(a.height)
	}
	return a, a.form.Init()
}

func (a App) location() *time.Location {
	if a.svc == nil {
		return time.Local
	}
	return a.svc.Location()
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		a.form, a.formKind = nil, formNone
		return a, nil
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		kind := a.formKind
		a.form, a.formKind = nil, formNone
		return a.submit(kind)
	case huh.StateAborted:
		a.form, a.formKind = nil, formNone
		return a, nil
	}
	return a, cmd
}

// submit converts the finished form into a service call.
func (a App) submit(kind formKind) (tea.Model, tea.Cmd) {
	v := *a.vals
	svc := a.svc

	var (
		note  string
		write func(ctx context.Context) error
		err   error
	)

	switch kind {
	case formSetup:
		var cfg model.Configuration
		cfg, err = v.configuration(time.Now(), a.location())
		note = "Plan saved"
		write = func(ctx context.Context) error {
			_, err := svc.Configure(ctx, cfg)
			return err
		}
	case formSpend, formIncome:
		var t model.Transaction
		if kind == formIncome {
			t, err = v.transaction(model.CategoryIncome)
			note = "Received " + money(t.Amount)
			write = func(ctx context.Context) error {
				_, _, err := svc.Receive(ctx, t)
				return err
			}
		} else {
			t, err = v.transaction("")
			note = "Spent " + money(t.Amount)
			write = func(ctx context.Context) error {
				_, _, err := svc.Spend(ctx, t)
				return err
			}
		}
	case formExpense:
		var e model.Expense
		e, err = v.expense()
		note = "Added " + e.Name
		write = func(ctx context.Context) error {
			_, _, err := svc.AddExpense(ctx, e)
			return err
		}
	default:
		return a, nil
	}

	if err != nil {
		a.err = err
		return a, nil
	}
	a.busy = true
	return a, a.saveCmd(note, write)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  thenumber needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if a.form != nil {
		return a.viewForm()
	}
	if !a.loaded && a.err == nil {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewForm() string {
	t := theme.Active

	titles := map[formKind]string{
		formSetup:   "Set up your plan",
		formSpend:   "Log spending",
		formIncome:  "Log income",
		formExpense: "Add a monthly expense",
	}
	title := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ " + titles[a.formKind])
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("esc to cancel")

	return lipgloss.NewStyle().Padding(1, 2).Render(title + "\n\n" + a.form.View() + "\n" + hint)
}

func (a App) viewLoading() string {
	t := theme.Active

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 4).
		Render(
			lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true).Render("◈ thenumber") +
				"\n\n" + a.spinner.View() +
				lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render(" Reading the ledger..."),
		)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	section := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	key := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	write := func(title string, bindings [][2]string) {
		b.WriteString(section.Render(title) + "\n")
		for _, bind := range bindings {
			fmt.Fprintf(&b, "  %s  %s\n", key.Render(fmt.Sprintf("%-8s", bind[0])), desc.Render(bind[1]))
		}
		b.WriteString("\n")
	}
	write("Navigation", [][2]string{
		{"t e h", "Jump to tab"},
		{"← →", "Previous / next tab"},
		{"j k", "Select expense"},
	})
	write("Actions", [][2]string{
		{"s", "Log spending"},
		{"i", "Log income"},
		{"a", "Add expense (Expenses tab)"},
		{"f", "Toggle fixed (Expenses tab)"},
		{"d", "Remove expense (Expenses tab)"},
		{"c", "Change plan"},
		{"r", "Reload"},
		{"q", "Quit"},
	})
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface).Render("Press any key to close"))

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3).
		Render(b.String())

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, cw := a.width, a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.hints(), a.status(), a.errText())

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabToday:
		content = a.renderToday(cw)
	case tabExpenses:
		content = a.renderExpenses(cw)
	case tabHistory:
		content = a.renderHistory(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) hints() string {
	switch {
	case !a.configured():
		return "[c]set up  [?]help  [q]uit"
	case a.activeTab == tabExpenses:
		return "[a]dd  [f]ixed  [d]elete  [s]pend  [?]help  [q]uit"
	default:
		return "[s]pend  [i]ncome  [c]hange plan  [?]help  [q]uit"
	}
}

func (a App) status() string {
	if a.busy || (a.svc != nil && a.svc.AnyBusy()) {
		return a.spinner.View() + " saving"
	}
	if a.note != "" {
		return a.note
	}
	if !a.loadedAt.IsZero() {
		return "updated " + a.loadedAt.Format("15:04")
	}
	return ""
}

func (a App) errText() string {
	if a.err == nil {
		return ""
	}
	return a.err.Error()
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths RenderTabBar renders.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // one-column separator
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
