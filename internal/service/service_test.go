package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/thenumber/internal/crypto"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/store"
	"github.com/theirongolddev/thenumber/internal/validate"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

func newTestService(t *testing.T, start time.Time) (*Service, *fakeClock) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sealer, err := crypto.NewSealer(key)
	require.NoError(t, err)

	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "thenumber.db"), sealer)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	clock := &fakeClock{now: start}
	return New(st, Options{Location: time.UTC, Now: clock.Now}), clock
}

func start(t *testing.T) time.Time {
	t.Helper()
	return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
}

func TestNumber_NotConfigured(t *testing.T) {
	svc, _ := newTestService(t, start(t))

	_, err := svc.Number(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, ok := svc.Latest()
	assert.False(t, ok)
}

func TestConfigure_PaycheckScenario(t *testing.T) {
	svc, _ := newTestService(t, start(t))
	ctx := context.Background()

	_, n, err := svc.AddExpense(ctx, model.Expense{Name: "Rent", Amount: 2000, IsFixed: true})
	require.NoError(t, err)
	assert.Nil(t, n, "no number before configuration")

	got, err := svc.Configure(ctx, model.Configuration{
		Plan: model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 15},
	})
	require.NoError(t, err)
	assert.InDelta(t, 66.67, got.TheNumber, 0.005)
	assert.False(t, got.IsOverBudget)

	cfg, err := svc.Configuration(ctx)
	require.NoError(t, err)
	assert.Equal(t, start(t), cfg.SetAt, "zero SetAt means now")

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, got, latest)
}

func TestConfigure_RejectsInvalid(t *testing.T) {
	svc, _ := newTestService(t, start(t))

	_, err := svc.Configure(context.Background(), model.Configuration{
		Plan: model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 0},
	})
	assert.ErrorIs(t, err, validate.ErrInvalid)

	_, err = svc.Configuration(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured, "nothing stored")
}

func TestSpendAndReceive_RefreshTheNumber(t *testing.T) {
	svc, clock := newTestService(t, start(t))
	ctx := context.Background()

	_, err := svc.Configure(ctx, model.Configuration{
		Plan: model.PaycheckPlan{MonthlyIncome: 1000, DaysUntilPaycheck: 15},
	})
	require.NoError(t, err)

	clock.Set(start(t).Add(2 * time.Hour))
	txn, n, err := svc.Spend(ctx, model.Transaction{Amount: 100, Description: "Groceries"})
	require.NoError(t, err)
	require.NotNil(t, n)
	assert.Equal(t, model.CategoryExpense, txn.Category)
	assert.Equal(t, start(t).Add(2*time.Hour), txn.Date)
	assert.Equal(t, 100.0, n.TodaySpending)
	assert.True(t, n.IsOverBudget)

	_, n, err = svc.Receive(ctx, model.Transaction{Amount: 50, Description: "Refund"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, n.TodaySpending)

	n, err = svc.RemoveTransaction(ctx, txn.ID)
	require.NoError(t, err)
	assert.Equal(t, -50.0, n.TodaySpending)
	assert.False(t, n.IsOverBudget)
}

func TestSpend_RejectsIncomeCategory(t *testing.T) {
	svc, _ := newTestService(t, start(t))

	_, _, err := svc.Spend(context.Background(), model.Transaction{Amount: 5, Description: "x", Category: "Income"})
	var verr *validate.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "category", verr.Field)
}

func TestExpenses_EditAndRemove(t *testing.T) {
	svc, _ := newTestService(t, start(t))
	ctx := context.Background()

	_, err := svc.Configure(ctx, model.Configuration{
		Plan: model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 10},
	})
	require.NoError(t, err)

	rent, n, err := svc.AddExpense(ctx, model.Expense{Name: "Rent", Amount: 1000})
	require.NoError(t, err)
	assert.InDelta(t, 200.0, n.TheNumber, 1e-9)

	amount := 2000.0
	_, n, err = svc.UpdateExpense(ctx, rent.ID, model.ExpensePatch{Amount: &amount})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, n.TheNumber, 1e-9)

	n, err = svc.RemoveExpense(ctx, rent.ID)
	require.NoError(t, err)
	assert.InDelta(t, 300.0, n.TheNumber, 1e-9)

	_, err = svc.RemoveExpense(ctx, rent.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReset_KeepsTransactions(t *testing.T) {
	svc, _ := newTestService(t, start(t))
	ctx := context.Background()

	_, err := svc.Configure(ctx, model.Configuration{Plan: model.PoolPlan{TotalMoney: 500}})
	require.NoError(t, err)
	_, _, err = svc.AddExpense(ctx, model.Expense{Name: "Rent", Amount: 100})
	require.NoError(t, err)
	_, _, err = svc.Spend(ctx, model.Transaction{Amount: 5, Description: "Coffee"})
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx, true))

	_, err = svc.Number(ctx)
	assert.ErrorIs(t, err, ErrNotConfigured)
	_, ok := svc.Latest()
	assert.False(t, ok)

	expenses, err := svc.ListExpenses(ctx)
	require.NoError(t, err)
	assert.Empty(t, expenses)

	recent, err := svc.RecentTransactions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestConcurrentSpends_AllRecorded(t *testing.T) {
	svc, _ := newTestService(t, start(t))
	ctx := context.Background()

	_, err := svc.Configure(ctx, model.Configuration{
		Plan: model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 30},
	})
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers*2)
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Spend(ctx, model.Transaction{Amount: 1, Description: fmt.Sprintf("spend %d", i)})
			errs <- err
		}(i)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.AddExpense(ctx, model.Expense{Name: fmt.Sprintf("bill %d", i), Amount: 10})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	n, err := svc.Number(ctx)
	require.NoError(t, err)
	assert.InDelta(t, float64(writers), n.TodaySpending, 1e-9)
	assert.InDelta(t, float64(writers*10), n.TotalExpenses, 1e-9)
	assert.False(t, svc.AnyBusy())

	latest, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, n, latest, "the newest read wins")
}

func TestPublish_DropsSupersededResults(t *testing.T) {
	svc := New(nil, Options{})

	newer := model.BudgetNumber{TheNumber: 2}
	older := model.BudgetNumber{TheNumber: 1}

	svc.publish(2, newer)
	svc.publish(1, older)

	got, ok := svc.Latest()
	require.True(t, ok)
	assert.Equal(t, 2.0, got.TheNumber)
}

func TestTracker(t *testing.T) {
	var tr Tracker
	assert.False(t, tr.AnyBusy())

	doneA := tr.Begin(ResourceExpenses)
	doneB := tr.Begin(ResourceExpenses)
	assert.True(t, tr.Busy(ResourceExpenses))
	assert.False(t, tr.Busy(ResourceTransactions))
	assert.True(t, tr.AnyBusy())

	doneA()
	doneA()
	assert.True(t, tr.Busy(ResourceExpenses), "a second call of the same done is a no-op")

	doneB()
	assert.False(t, tr.Busy(ResourceExpenses))
	assert.False(t, tr.AnyBusy())
}

func TestDashboard(t *testing.T) {
	svc, _ := newTestService(t, start(t))
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, 5)
	require.NoError(t, err)
	assert.Nil(t, d.Number)

	_, err = svc.Configure(ctx, model.Configuration{Plan: model.PoolPlan{TotalMoney: 6000}})
	require.NoError(t, err)
	_, _, err = svc.AddExpense(ctx, model.Expense{Name: "Rent", Amount: 1500, IsFixed: true})
	require.NoError(t, err)
	_, _, err = svc.AddExpense(ctx, model.Expense{Name: "Food", Amount: 500})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, _, err = svc.Spend(ctx, model.Transaction{Amount: 1, Description: "x"})
		require.NoError(t, err)
	}

	d, err = svc.Dashboard(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, d.Number)
	assert.InDelta(t, 66.67, d.Number.OriginalDailyBudget, 0.005)
	assert.Equal(t, model.ModeFixedPool, d.Config.Mode())
	assert.Len(t, d.Expenses, 2)
	assert.Equal(t, 1500.0, d.FixedTotal)
	assert.Equal(t, 500.0, d.VariableTotal)
	assert.Len(t, d.Recent, 2)
}

func TestHistory(t *testing.T) {
	svc, clock := newTestService(t, start(t))
	ctx := context.Background()

	_, err := svc.History(ctx, 0)
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = svc.Configure(ctx, model.Configuration{
		Plan: model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 15},
	})
	require.NoError(t, err)

	_, _, err = svc.Spend(ctx, model.Transaction{Amount: 20, Description: "day one"})
	require.NoError(t, err)
	clock.Set(start(t).AddDate(0, 0, 2))
	_, _, err = svc.Spend(ctx, model.Transaction{Amount: 30, Description: "day three"})
	require.NoError(t, err)

	days, err := svc.History(ctx, 0)
	require.NoError(t, err)
	require.Len(t, days, 3)
	assert.Equal(t, 30.0, days[0].Spent)
	assert.Equal(t, 0, days[1].Count)
	assert.Equal(t, 20.0, days[2].Spent)

	capped, err := svc.History(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}
