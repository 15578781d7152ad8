package model

import "time"

// CategoryIncome and CategoryExpense are the two categories with arithmetic
// meaning. Any other category is free text and counts as spending.
const (
	CategoryIncome  = "income"
	CategoryExpense = "expense"
)

// Expense is a recurring monthly obligation.
type Expense struct {
	ID        string
	Name      string
	Amount    float64
	IsFixed   bool // informational; every expense counts toward the total
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExpensePatch holds the fields of a partial expense update. Nil fields are left unchanged.
type ExpensePatch struct {
	Name    *string
	Amount  *float64
	IsFixed *bool
}

// Transaction is one money event. Amount is always positive; the category
// decides whether it consumes allowance or adds to it.
type Transaction struct {
	ID          string
	Date        time.Time
	Amount      float64
	Description string
	Category    string
	CreatedAt   time.Time
}

// DaySummary holds the signed ledger total for one calendar day.
type DaySummary struct {
	Date     time.Time
	Spent    float64 // sum of non-income amounts
	Received float64 // sum of income amounts
	Net      float64 // Spent - Received
	Count    int
}
