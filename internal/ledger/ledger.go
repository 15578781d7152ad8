// Package ledger provides read-only accessors over expense and transaction slices.
package ledger

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/thenumber/internal/model"
)

// TotalExpenses sums every expense amount, fixed or variable.
func TotalExpenses(expenses []model.Expense) float64 {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(decimal.NewFromFloat(e.Amount))
	}
	return total.InexactFloat64()
}

// SplitExpenses returns the fixed and variable subtotals. Display only.
func SplitExpenses(expenses []model.Expense) (fixed, variable float64) {
	f, v := decimal.Zero, decimal.Zero
	for _, e := range expenses {
		if e.IsFixed {
			f = f.Add(decimal.NewFromFloat(e.Amount))
		} else {
			v = v.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return f.InexactFloat64(), v.InexactFloat64()
}

// IsIncome reports whether t adds money instead of consuming it.
func IsIncome(t model.Transaction) bool {
	return strings.EqualFold(strings.TrimSpace(t.Category), model.CategoryIncome)
}

// SignedAmount is the transaction's contribution to spending: income is
// negative, everything else (tagged "expense", free text, or untagged) positive.
func SignedAmount(t model.Transaction) float64 {
	if IsIncome(t) {
		return -t.Amount
	}
	return t.Amount
}

// DayStart returns midnight of t's calendar day in t's location.
func DayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayEnd returns midnight of the calendar day after t's, in t's location.
func DayEnd(t time.Time) time.Time {
	return DayStart(t).AddDate(0, 0, 1)
}

// TransactionsOn returns the transactions dated on day's calendar day (in
// day's location), oldest first. The input is not modified.
func TransactionsOn(txns []model.Transaction, day time.Time) []model.Transaction {
	return FilterByTime(txns, DayStart(day), DayEnd(day))
}

// FilterByTime returns transactions dated within [since, until), oldest first.
// A zero bound is open.
func FilterByTime(txns []model.Transaction, since, until time.Time) []model.Transaction {
	var result []model.Transaction
	for _, t := range txns {
		if !since.IsZero() && t.Date.Before(since) {
			continue
		}
		if !until.IsZero() && !t.Date.Before(until) {
			continue
		}
		result = append(result, t)
	}
	SortByDate(result)
	return result
}

// SortByDate orders transactions by date, then creation time, ascending.
func SortByDate(txns []model.Transaction) {
	sort.SliceStable(txns, func(i, j int) bool {
		if txns[i].Date.Equal(txns[j].Date) {
			return txns[i].CreatedAt.Before(txns[j].CreatedAt)
		}
		return txns[i].Date.Before(txns[j].Date)
	})
}

// NetSigned sums SignedAmount over txns.
func NetSigned(txns []model.Transaction) float64 {
	total := decimal.Zero
	for _, t := range txns {
		total = total.Add(decimal.NewFromFloat(SignedAmount(t)))
	}
	return total.InexactFloat64()
}

// CumulativeNetSince sums signed amounts of transactions dated at or after since.
func CumulativeNetSince(txns []model.Transaction, since time.Time) float64 {
	total := decimal.Zero
	for _, t := range txns {
		if t.Date.Before(since) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(SignedAmount(t)))
	}
	return total.InexactFloat64()
}

// NetBetween sums signed amounts of transactions dated within [from, to).
func NetBetween(txns []model.Transaction, from, to time.Time) float64 {
	if !to.After(from) {
		return 0
	}
	total := decimal.Zero
	for _, t := range txns {
		if t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(SignedAmount(t)))
	}
	return total.InexactFloat64()
}

// DailyTotals buckets transactions into calendar days in loc over [from, to).
// Every day in the range is present so gaps show as zeros. Most recent first.
func DailyTotals(txns []model.Transaction, from, to time.Time, loc *time.Location) []model.DaySummary {
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		spent, received decimal.Decimal
		count           int
	}
	dayMap := make(map[string]*bucket)

	for _, t := range FilterByTime(txns, from, to) {
		key := t.Date.In(loc).Format("2006-01-02")
		b, ok := dayMap[key]
		if !ok {
			b = &bucket{}
			dayMap[key] = b
		}
		amt := decimal.NewFromFloat(t.Amount)
		if IsIncome(t) {
			b.received = b.received.Add(amt)
		} else {
			b.spent = b.spent.Add(amt)
		}
		b.count++
	}

	var days []model.DaySummary
	day := DayStart(from.In(loc))
	for day.Before(to) {
		ds := model.DaySummary{Date: day}
		if b, ok := dayMap[day.Format("2006-01-02")]; ok {
			ds.Spent = b.spent.InexactFloat64()
			ds.Received = b.received.InexactFloat64()
			ds.Net = b.spent.Sub(b.received).InexactFloat64()
			ds.Count = b.count
		}
		days = append(days, ds)
		day = day.AddDate(0, 0, 1)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}
