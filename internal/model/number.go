package model

import "time"

// BudgetNumber is the derived allowance for one instant. It is recomputed on
// demand and never persisted.
type BudgetNumber struct {
	Mode Mode `json:"mode"`

	TheNumber      float64 `json:"the_number"`
	TodaySpending  float64 `json:"today_spending"`
	RemainingToday float64 `json:"remaining_today"`
	IsOverBudget   bool    `json:"is_over_budget"`
	DaysRemaining  float64 `json:"days_remaining"`

	OriginalDailyBudget float64 `json:"original_daily_budget"`
	AdjustedDailyBudget float64 `json:"adjusted_daily_budget"`
	TomorrowDailyBudget float64 `json:"tomorrow_daily_budget"`

	TotalIncome    float64 `json:"total_income,omitempty"`
	TotalExpenses  float64 `json:"total_expenses"`
	RemainingMoney float64 `json:"remaining_money"`
	TotalMoney     float64 `json:"total_money,omitempty"`

	// Paycheck only: how far expenses exceed income.
	Deficit float64 `json:"deficit,omitempty"`

	// Pool only.
	HorizonKind   HorizonKind `json:"horizon_kind,omitempty"`
	WillLastDays  float64     `json:"will_last_days,omitempty"`
	DepletionDate time.Time   `json:"depletion_date,omitzero"`

	ComputedAt time.Time `json:"computed_at"`
}
