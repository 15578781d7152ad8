package validate

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/thenumber/internal/model"
)

var setAt = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid), "error %v does not wrap ErrInvalid", err)

	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, field, verr.Field)
}

func TestAmount(t *testing.T) {
	assert.NoError(t, Amount("amount", 0.01))
	assert.NoError(t, Amount("amount", MaxAmount))

	requireField(t, Amount("amount", 0), "amount")
	requireField(t, Amount("amount", -5), "amount")
	requireField(t, Amount("amount", MaxAmount+0.01), "amount")
	requireField(t, Amount("amount", math.NaN()), "amount")
	requireField(t, Amount("amount", math.Inf(1)), "amount")
}

func TestText(t *testing.T) {
	got, err := Text("name", "  Rent  ")
	require.NoError(t, err)
	assert.Equal(t, "Rent", got)

	_, err = Text("name", "   ")
	requireField(t, err, "name")

	_, err = Text("name", strings.Repeat("a", MaxStringLength+1))
	requireField(t, err, "name")

	got, err = Text("name", strings.Repeat("é", MaxStringLength))
	require.NoError(t, err, "limit counts characters, not bytes")
	assert.Len(t, []rune(got), MaxStringLength)
}

func TestConfiguration_Paycheck(t *testing.T) {
	ok := model.Configuration{SetAt: setAt, Plan: model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 15}}
	assert.NoError(t, Configuration(ok))

	cases := []struct {
		name  string
		plan  model.PaycheckPlan
		field string
	}{
		{"zero income", model.PaycheckPlan{MonthlyIncome: 0, DaysUntilPaycheck: 15}, "monthly_income"},
		{"huge income", model.PaycheckPlan{MonthlyIncome: MaxAmount * 2, DaysUntilPaycheck: 15}, "monthly_income"},
		{"zero days", model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: 0}, "days_until_paycheck"},
		{"too many days", model.PaycheckPlan{MonthlyIncome: 3000, DaysUntilPaycheck: MaxDaysUntilPaycheck + 1}, "days_until_paycheck"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			requireField(t, Configuration(model.Configuration{SetAt: setAt, Plan: c.plan}), c.field)
		})
	}
}

func TestConfiguration_Pool(t *testing.T) {
	assert.NoError(t, Configuration(model.Configuration{SetAt: setAt, Plan: model.PoolPlan{TotalMoney: 6000}}))
	assert.NoError(t, Configuration(model.Configuration{SetAt: setAt, Plan: model.PoolPlan{
		TotalMoney: 6000, Horizon: model.DailyLimit{Amount: 50},
	}}))
	assert.NoError(t, Configuration(model.Configuration{SetAt: setAt, Plan: model.PoolPlan{
		TotalMoney: 6000, Horizon: model.TargetDate{At: setAt.AddDate(0, 1, 0)},
	}}))

	requireField(t, Configuration(model.Configuration{SetAt: setAt, Plan: model.PoolPlan{TotalMoney: -1}}), "total_money")
	requireField(t, Configuration(model.Configuration{SetAt: setAt, Plan: model.PoolPlan{
		TotalMoney: 6000, Horizon: model.DailyLimit{Amount: 0},
	}}), "daily_limit")
	requireField(t, Configuration(model.Configuration{SetAt: setAt, Plan: model.PoolPlan{
		TotalMoney: 6000, Horizon: model.TargetDate{At: setAt.Add(-time.Hour)},
	}}), "target_date")
}

func TestConfiguration_MissingPieces(t *testing.T) {
	requireField(t, Configuration(model.Configuration{SetAt: setAt}), "mode")
	requireField(t, Configuration(model.Configuration{Plan: model.PoolPlan{TotalMoney: 10}}), "set_at")
}

func TestHorizon(t *testing.T) {
	target := setAt.AddDate(0, 0, 30)

	h, err := Horizon(time.Time{}, 0)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultHorizon{}, h)

	h, err = Horizon(target, 0)
	require.NoError(t, err)
	assert.Equal(t, model.TargetDate{At: target}, h)

	h, err = Horizon(time.Time{}, 25)
	require.NoError(t, err)
	assert.Equal(t, model.DailyLimit{Amount: 25}, h)

	_, err = Horizon(target, 25)
	requireField(t, err, "horizon")

	_, err = Horizon(time.Time{}, -3)
	requireField(t, err, "daily_limit")
}

func TestExpense(t *testing.T) {
	e := model.Expense{Name: "  Rent ", Amount: 1500, IsFixed: true}
	require.NoError(t, Expense(&e))
	assert.Equal(t, "Rent", e.Name)

	requireField(t, Expense(&model.Expense{Name: "", Amount: 10}), "name")
	requireField(t, Expense(&model.Expense{Name: "Gym", Amount: 0}), "amount")
}

func TestExpensePatch(t *testing.T) {
	requireField(t, ExpensePatch(&model.ExpensePatch{}), "expense")

	name := "  Phone  "
	p := model.ExpensePatch{Name: &name}
	require.NoError(t, ExpensePatch(&p))
	assert.Equal(t, "Phone", *p.Name)
	assert.Equal(t, "  Phone  ", name, "caller's string untouched")

	bad := -1.0
	requireField(t, ExpensePatch(&model.ExpensePatch{Amount: &bad}), "amount")

	fixed := false
	assert.NoError(t, ExpensePatch(&model.ExpensePatch{IsFixed: &fixed}))
}

func TestTransaction(t *testing.T) {
	txn := model.Transaction{Amount: 12.5, Description: " Coffee ", Category: " income "}
	require.NoError(t, Transaction(&txn))
	assert.Equal(t, "Coffee", txn.Description)
	assert.Equal(t, "income", txn.Category)

	requireField(t, Transaction(&model.Transaction{Amount: 12.5, Description: ""}), "description")
	requireField(t, Transaction(&model.Transaction{Amount: 0, Description: "x"}), "amount")
	requireField(t, Transaction(&model.Transaction{
		Amount: 1, Description: "x", Category: strings.Repeat("c", MaxStringLength+1),
	}), "category")

	noCat := model.Transaction{Amount: 1, Description: "x"}
	assert.NoError(t, Transaction(&noCat))
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("amount", " $1,250.50 ")
	require.NoError(t, err)
	assert.Equal(t, 1250.5, a)

	requireField(t, errOnly(ParseAmount("amount", "")), "amount")
	requireField(t, errOnly(ParseAmount("amount", "twelve")), "amount")
	requireField(t, errOnly(ParseAmount("amount", "-4")), "amount")
	requireField(t, errOnly(ParseAmount("amount", "NaN")), "amount")
}

func TestParseDays(t *testing.T) {
	d, err := ParseDays("days", " 15 ")
	require.NoError(t, err)
	assert.Equal(t, 15, d)

	requireField(t, errOnly(ParseDays("days", "0")), "days")
	requireField(t, errOnly(ParseDays("days", "366")), "days")
	requireField(t, errOnly(ParseDays("days", "1.5")), "days")
}

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("MST", -7*60*60)

	d, err := ParseDate("target_date", "2026-03-01", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, loc), d)

	requireField(t, errOnly(ParseDate("target_date", "03/01/2026", loc)), "target_date")
}

func errOnly[T any](_ T, err error) error { return err }
