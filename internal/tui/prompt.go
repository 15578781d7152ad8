package tui

import (
	"time"

	"github.com/theirongolddev/thenumber/internal/model"
)

// PromptConfiguration runs the setup wizard outside the dashboard, seeded
// from current. It returns huh.ErrUserAborted if the user quits.
func PromptConfiguration(current model.Configuration, loc *time.Location) (model.Configuration, error) {
	v := &formValues{}
	v.prefill(current, loc)
	if err := newSetupForm(v, loc).Run(); err != nil {
		return model.Configuration{}, err
	}
	return v.configuration(time.Now(), loc)
}

// PromptTransaction asks for an amount and description, and a category
// unless income is set.
func PromptTransaction(income bool) (model.Transaction, error) {
	v := &formValues{}
	if err := newSpendForm(v, income).Run(); err != nil {
		return model.Transaction{}, err
	}
	if income {
		return v.transaction(model.CategoryIncome)
	}
	return v.transaction("")
}

// PromptExpense asks for a new monthly expense.
func PromptExpense() (model.Expense, error) {
	v := &formValues{}
	if err := newExpenseForm(v).Run(); err != nil {
		return model.Expense{}, err
	}
	return v.expense()
}
