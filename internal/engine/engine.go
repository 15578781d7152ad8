// Package engine derives the daily spending allowance ("the number") from a
// budget configuration, the monthly expense total, and the transaction ledger.
//
// Compute is a pure function of its arguments. It never reads the clock,
// never touches storage, and is safe for concurrent use.
package engine

import (
	"math"
	"time"

	"github.com/theirongolddev/thenumber/internal/ledger"
	"github.com/theirongolddev/thenumber/internal/model"
)

// DaysPerMonth prorates monthly expenses into a daily rate.
const DaysPerMonth = 30.0

// maxProjectionDays caps the depletion date projection (100 years).
const maxProjectionDays = 36500

// ElapsedDays returns the number of full 24h periods between setAt and now,
// clamped to zero.
func ElapsedDays(setAt, now time.Time) int {
	if !now.After(setAt) {
		return 0
	}
	return int(now.Sub(setAt) / (24 * time.Hour))
}

// CalendarDays returns the number of calendar days from from's day to to's
// day, both read in loc. It is negative when to falls on an earlier day.
func CalendarDays(from, to time.Time, loc *time.Location) int {
	day := func(t time.Time) time.Time {
		y, m, d := t.In(loc).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	return int(day(to).Sub(day(from)) / (24 * time.Hour))
}

// ledgerView is what both modes need from the transaction snapshot.
type ledgerView struct {
	elapsed       int
	todaySpending float64 // signed total dated today
	priorSpent    float64 // signed total from SetAt up to the start of today
	sinceSet      float64 // signed total from SetAt through the end of today
}

// Compute derives the BudgetNumber at now. txns must contain at least every
// transaction dated within [min(cfg.SetAt, start of today), end of today);
// anything outside that window is ignored. Degenerate arithmetic is absorbed:
// the result is always finite and flagged over budget instead.
func Compute(cfg model.Configuration, expenseTotal float64, txns []model.Transaction, now time.Time) model.BudgetNumber {
	dayStart := ledger.DayStart(now)
	dayEnd := ledger.DayEnd(now)

	view := ledgerView{
		elapsed:       ElapsedDays(cfg.SetAt, now),
		todaySpending: ledger.NetSigned(ledger.TransactionsOn(txns, now)),
		priorSpent:    ledger.NetBetween(txns, cfg.SetAt, dayStart),
		sinceSet:      ledger.NetBetween(txns, cfg.SetAt, dayEnd),
	}

	var n model.BudgetNumber
	switch p := cfg.Plan.(type) {
	case model.PaycheckPlan:
		n = paycheck(p, expenseTotal, view)
	case model.PoolPlan:
		n = pool(p, expenseTotal, cfg.SetAt, now, view)
	default:
		n = model.BudgetNumber{
			TodaySpending:  view.todaySpending,
			RemainingToday: -view.todaySpending,
			TotalExpenses:  expenseTotal,
			IsOverBudget:   true,
		}
	}

	n.ComputedAt = now
	return sanitize(n)
}

func paycheck(p model.PaycheckPlan, expenseTotal float64, v ledgerView) model.BudgetNumber {
	remaining := p.MonthlyIncome - expenseTotal

	n := model.BudgetNumber{
		Mode:           model.ModePaycheck,
		TodaySpending:  v.todaySpending,
		TotalIncome:    p.MonthlyIncome,
		TotalExpenses:  expenseTotal,
		RemainingMoney: remaining,
	}
	if remaining < 0 {
		n.Deficit = -remaining
	}

	// The original rate is fixed against the day count at SetAt.
	original, ok := divide(remaining, float64(p.DaysUntilPaycheck))
	degenerate := !ok || remaining <= 0

	daysLeft := max(p.DaysUntilPaycheck-v.elapsed, 0)

	// Money consumed on prior days leaves the pool before it is re-divided
	// over the days that remain, today included. On the last day (or after
	// it) the whole pool is today's.
	poolToday := remaining - v.priorSpent
	adjusted := poolToday / float64(max(daysLeft, 1))
	tomorrow := (poolToday - v.todaySpending) / float64(max(daysLeft-1, 1))

	n.DaysRemaining = float64(daysLeft)
	n.OriginalDailyBudget = original
	n.AdjustedDailyBudget = adjusted
	n.TomorrowDailyBudget = tomorrow
	n.TheNumber = adjusted
	n.RemainingToday = adjusted - v.todaySpending
	n.IsOverBudget = n.RemainingToday < 0 || degenerate
	return n
}

func pool(p model.PoolPlan, expenseTotal float64, setAt, now time.Time, v ledgerView) model.BudgetNumber {
	expenseRate := expenseTotal / DaysPerMonth
	horizon, kind := horizonDays(p, expenseRate, setAt, now.Location())

	// An expenses-based horizon already spends the pool at the expense rate,
	// so the rate is the allowance and is not subtracted again.
	deduct := expenseRate
	if kind == model.HorizonExpensesBased {
		deduct = 0
	}

	n := model.BudgetNumber{
		Mode:          model.ModeFixedPool,
		TodaySpending: v.todaySpending,
		TotalExpenses: expenseTotal,
		TotalMoney:    p.TotalMoney,
		HorizonKind:   kind,
	}

	daysLeft := math.Max(horizon-float64(v.elapsed), 0)
	if h, ok := model.HorizonOf(p).(model.TargetDate); ok {
		// Today counts toward a target date; the target day does not.
		daysLeft = math.Max(float64(CalendarDays(now, h.At, now.Location())), 0)
	}

	original := math.Max(p.TotalMoney/math.Max(horizon, 1)-deduct, 0)

	poolToday := p.TotalMoney - v.priorSpent
	adjusted := poolToday/math.Max(daysLeft, 1) - deduct
	tomorrow := (poolToday-v.todaySpending)/math.Max(daysLeft-1, 1) - deduct
	moneyLeft := p.TotalMoney - v.sinceSet

	n.DaysRemaining = daysLeft
	n.OriginalDailyBudget = original
	n.AdjustedDailyBudget = adjusted
	n.TomorrowDailyBudget = tomorrow
	n.TheNumber = adjusted
	n.RemainingToday = adjusted - v.todaySpending
	n.RemainingMoney = moneyLeft

	degenerate := true
	if lasts, ok := divide(moneyLeft, adjusted); ok && moneyLeft > 0 {
		degenerate = false
		n.WillLastDays = lasts
		if lasts < maxProjectionDays {
			n.DepletionDate = now.Add(time.Duration(lasts * float64(24*time.Hour)))
		}
	}

	n.IsOverBudget = n.RemainingToday < 0 || degenerate
	return n
}

// horizonDays returns the pool's horizon in days as fixed at setAt.
func horizonDays(p model.PoolPlan, expenseRate float64, setAt time.Time, loc *time.Location) (float64, model.HorizonKind) {
	switch h := model.HorizonOf(p).(type) {
	case model.DailyLimit:
		days, _ := divide(p.TotalMoney, h.Amount)
		return days, model.HorizonDailyLimit
	case model.TargetDate:
		return math.Max(float64(CalendarDays(setAt, h.At, loc)), 0), model.HorizonTargetDate
	default:
		// Without expenses there is no burn rate to size the pool against;
		// fall back to one nominal month.
		if days, ok := divide(p.TotalMoney, expenseRate); ok {
			return days, model.HorizonExpensesBased
		}
		return DaysPerMonth, model.HorizonExpensesBased
	}
}

// divide returns a/b, or (0, false) when b is not positive or the result is
// not finite.
func divide(a, b float64) (float64, bool) {
	if b <= 0 || math.IsNaN(b) {
		return 0, false
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// sanitize replaces any non-finite field with 0 and flags the result.
func sanitize(n model.BudgetNumber) model.BudgetNumber {
	fields := []*float64{
		&n.TheNumber, &n.TodaySpending, &n.RemainingToday, &n.DaysRemaining,
		&n.OriginalDailyBudget, &n.AdjustedDailyBudget, &n.TomorrowDailyBudget,
		&n.TotalIncome, &n.TotalExpenses, &n.RemainingMoney, &n.TotalMoney,
		&n.Deficit, &n.WillLastDays,
	}
	for _, f := range fields {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
			n.IsOverBudget = true
		}
	}
	return n
}
