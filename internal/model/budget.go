// Package model defines domain types for budgets, expenses, and the ledger.
package model

import "time"

// Mode names the active budgeting strategy.
type Mode string

const (
	ModePaycheck  Mode = "paycheck"
	ModeFixedPool Mode = "fixed_pool"
)

// Configuration is the active budget. Exactly one Plan is set; switching plans
// replaces SetAt and nothing carries over from the previous configuration.
type Configuration struct {
	SetAt time.Time
	Plan  Plan
}

// Mode returns the mode of the configured plan, or "" when no plan is set.
func (c Configuration) Mode() Mode {
	if c.Plan == nil {
		return ""
	}
	return c.Plan.Mode()
}

// Plan is implemented by PaycheckPlan and PoolPlan only.
type Plan interface {
	Mode() Mode
	isPlan()
}

// PaycheckPlan budgets a monthly income over the days until the next paycheck.
type PaycheckPlan struct {
	MonthlyIncome     float64
	DaysUntilPaycheck int // counted from Configuration.SetAt
}

// Mode implements Plan.
func (PaycheckPlan) Mode() Mode { return ModePaycheck }
func (PaycheckPlan) isPlan()    {}

// PoolPlan depletes a one-time sum of money over a horizon.
type PoolPlan struct {
	TotalMoney float64
	Horizon    Horizon
}

// Mode implements Plan.
func (PoolPlan) Mode() Mode { return ModeFixedPool }
func (PoolPlan) isPlan()    {}

// HorizonKind names how a pool's depletion horizon is derived.
type HorizonKind string

const (
	HorizonTargetDate    HorizonKind = "target_date"
	HorizonDailyLimit    HorizonKind = "daily_limit"
	HorizonExpensesBased HorizonKind = "expenses_based"
)

// Horizon is implemented by TargetDate, DailyLimit and DefaultHorizon only.
// A nil Horizon on a PoolPlan behaves as DefaultHorizon.
type Horizon interface {
	Kind() HorizonKind
	isHorizon()
}

// TargetDate makes the pool last until At.
type TargetDate struct {
	At time.Time
}

// DailyLimit spends Amount per day and projects how long the pool lasts.
type DailyLimit struct {
	Amount float64
}

// DefaultHorizon derives the horizon from the monthly expense rate.
type DefaultHorizon struct{}

func (TargetDate) Kind() HorizonKind     { return HorizonTargetDate }
func (DailyLimit) Kind() HorizonKind     { return HorizonDailyLimit }
func (DefaultHorizon) Kind() HorizonKind { return HorizonExpensesBased }

func (TargetDate) isHorizon()     {}
func (DailyLimit) isHorizon()     {}
func (DefaultHorizon) isHorizon() {}

// HorizonOf returns the plan's horizon, substituting DefaultHorizon for nil.
func HorizonOf(p PoolPlan) Horizon {
	if p.Horizon == nil {
		return DefaultHorizon{}
	}
	return p.Horizon
}
