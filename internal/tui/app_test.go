package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/thenumber/internal/crypto"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
	"github.com/theirongolddev/thenumber/internal/store"
	"github.com/theirongolddev/thenumber/internal/validate"
)

func newTestApp(t *testing.T) App {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "thenumber.db"), sealer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	a := NewApp(service.New(st, service.Options{Location: time.UTC}), Options{})
	a.width, a.height = 100, 40
	return a
}

// run feeds msg to the app, then keeps executing the returned command while
// it yields load or save results.
func run(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	for msg != nil {
		m, cmd := a.Update(msg)
		a = m.(App)
		msg = nil
		if cmd == nil {
			break
		}
		switch next := cmd().(type) {
		case dashboardMsg, savedMsg:
			msg = next
		}
	}
	return a
}

func TestApp_FirstRunOpensSetupThenShowsNumber(t *testing.T) {
	a := newTestApp(t)

	a = run(t, a, a.loadCmd()())
	require.True(t, a.loaded)
	assert.False(t, a.configured())
	require.NotNil(t, a.form, "setup opens on first run")
	assert.Equal(t, formSetup, a.formKind)
	assert.Equal(t, string(model.ModePaycheck), a.vals.mode)

	a.form, a.formKind = nil, formNone
	a.vals.income, a.vals.days = "4000", "15"
	m, cmd := a.submit(formSetup)
	a = run(t, m.(App), cmd())

	require.NoError(t, a.err)
	require.True(t, a.configured())
	assert.InDelta(t, 4000.0/15, a.dash.Number.TheNumber, 0.01)
	assert.Equal(t, "Plan saved", a.note)

	*a.vals = formValues{amount: "50", description: "Groceries"}
	m, cmd = a.submit(formSpend)
	a = run(t, m.(App), cmd())

	require.NoError(t, a.err)
	assert.InDelta(t, 50, a.dash.Number.TodaySpending, 1e-9)
	require.Len(t, a.dash.Recent, 1)
	assert.Equal(t, "Groceries", a.dash.Recent[0].Description)
	require.NotEmpty(t, a.history)

	for tab := tabToday; tab <= tabHistory; tab++ {
		a.activeTab = tab
		assert.NotEmpty(t, a.View())
	}
}

func TestApp_ExpenseKeys(t *testing.T) {
	a := newTestApp(t)
	a = run(t, a, a.loadCmd()())
	a.form, a.formKind = nil, formNone
	a.activeTab = tabExpenses

	*a.vals = formValues{name: "Rent", amount: "1,500", fixed: true}
	m, cmd := a.submit(formExpense)
	a = run(t, m.(App), cmd())
	*a.vals = formValues{name: "Food", amount: "300"}
	m, cmd = a.submit(formExpense)
	a = run(t, m.(App), cmd())

	require.Len(t, a.dash.Expenses, 2)
	assert.InDelta(t, 1500, a.dash.FixedTotal, 1e-9)
	assert.InDelta(t, 300, a.dash.VariableTotal, 1e-9)

	a = run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	assert.Equal(t, 1, a.cursor)

	a = run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
	require.NoError(t, a.err)
	require.Len(t, a.dash.Expenses, 1)
	assert.Equal(t, 0, a.cursor, "cursor clamps after removal")
}

func TestApp_SubmitRejectsBadInput(t *testing.T) {
	a := newTestApp(t)

	*a.vals = formValues{amount: "-3", description: "Coffee"}
	m, cmd := a.submit(formSpend)
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.(App).err, validate.ErrInvalid)
}

func TestApp_TabKeys(t *testing.T) {
	a := App{loaded: true, vals: &formValues{}}

	a = run(t, a, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'h'}})
	assert.Equal(t, tabHistory, a.activeTab)
	a = run(t, a, tea.KeyMsg{Type: tea.KeyRight})
	assert.Equal(t, tabToday, a.activeTab, "wraps around")
	a = run(t, a, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, tabHistory, a.activeTab)
}

func TestFormValues_Configuration(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	v := formValues{mode: string(model.ModeFixedPool), total: "10000", horizon: horizonTarget, target: "2025-09-01"}
	cfg, err := v.configuration(now, time.UTC)
	require.NoError(t, err)
	pool, ok := cfg.Plan.(model.PoolPlan)
	require.True(t, ok)
	assert.Equal(t, 10000.0, pool.TotalMoney)
	assert.Equal(t, model.TargetDate{At: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)}, pool.Horizon)

	v = formValues{mode: string(model.ModeFixedPool), total: "10000", horizon: horizonLimit, limit: "100"}
	cfg, err = v.configuration(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, model.DailyLimit{Amount: 100}, cfg.Plan.(model.PoolPlan).Horizon)

	v = formValues{mode: string(model.ModeFixedPool), total: "10000", horizon: horizonDefault}
	cfg, err = v.configuration(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHorizon{}, cfg.Plan.(model.PoolPlan).Horizon)

	v = formValues{mode: string(model.ModeFixedPool), total: "10000", horizon: horizonTarget, target: "2025-05-01"}
	_, err = v.configuration(now, time.UTC)
	assert.ErrorIs(t, err, validate.ErrInvalid, "past target")

	v = formValues{mode: string(model.ModePaycheck), income: "4000", days: "0"}
	_, err = v.configuration(now, time.UTC)
	assert.ErrorIs(t, err, validate.ErrInvalid)
}

func TestFormValues_PrefillRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	cfg := model.Configuration{SetAt: now, Plan: model.PoolPlan{
		TotalMoney: 2500,
		Horizon:    model.DailyLimit{Amount: 40},
	}}

	var v formValues
	v.prefill(cfg, time.UTC)
	assert.Equal(t, horizonLimit, v.horizon)

	got, err := v.configuration(now, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}
