package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/validate"
)

type formKind int

const (
	formNone formKind = iota
	formSetup
	formSpend
	formIncome
	formExpense
)

const (
	horizonDefault = "default"
	horizonTarget  = "target"
	horizonLimit   = "limit"
)

// formValues backs every huh form. It lives behind a pointer because the
// form fields bind to its addresses while App is passed by value.
type formValues struct {
	mode    string
	income  string
	days    string
	total   string
	horizon string
	target  string
	limit   string

	amount      string
	description string
	category    string

	name  string
	fixed bool
}

// prefill seeds the setup form from the current configuration.
func (v *formValues) prefill(cfg model.Configuration, loc *time.Location) {
	v.mode = string(model.ModePaycheck)
	v.horizon = horizonDefault

	switch p := cfg.Plan.(type) {
	case model.PaycheckPlan:
		v.income = money(p.MonthlyIncome)
		v.days = strconv.Itoa(p.DaysUntilPaycheck)
	case model.PoolPlan:
		v.mode = string(model.ModeFixedPool)
		v.total = money(p.TotalMoney)
		switch h := model.HorizonOf(p).(type) {
		case model.TargetDate:
			v.horizon = horizonTarget
			v.target = h.At.In(loc).Format(validate.DateLayout)
		case model.DailyLimit:
			v.horizon = horizonLimit
			v.limit = money(h.Amount)
		}
	}
}

func money(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// configuration turns the setup answers into a plan set at now.
func (v *formValues) configuration(now time.Time, loc *time.Location) (model.Configuration, error) {
	cfg := model.Configuration{SetAt: now}

	switch model.Mode(v.mode) {
	case model.ModePaycheck:
		income, err := validate.ParseAmount("monthly_income", v.income)
		if err != nil {
			return cfg, err
		}
		days, err := validate.ParseDays("days_until_paycheck", v.days)
		if err != nil {
			return cfg, err
		}
		cfg.Plan = model.PaycheckPlan{MonthlyIncome: income, DaysUntilPaycheck: days}

	case model.ModeFixedPool:
		total, err := validate.ParseAmount("total_money", v.total)
		if err != nil {
			return cfg, err
		}
		var (
			target time.Time
			limit  float64
		)
		switch v.horizon {
		case horizonTarget:
			if target, err = validate.ParseDate("target_date", v.target, loc); err != nil {
				return cfg, err
			}
		case horizonLimit:
			if limit, err = validate.ParseAmount("daily_limit", v.limit); err != nil {
				return cfg, err
			}
		}
		h, err := validate.Horizon(target, limit)
		if err != nil {
			return cfg, err
		}
		cfg.Plan = model.PoolPlan{TotalMoney: total, Horizon: h}
	}

	return cfg, validate.Configuration(cfg)
}

func (v *formValues) transaction(category string) (model.Transaction, error) {
	amount, err := validate.ParseAmount("amount", v.amount)
	if err != nil {
		return model.Transaction{}, err
	}
	if category == "" {
		category = v.category
	}
	t := model.Transaction{Amount: amount, Description: v.description, Category: category}
	return t, validate.Transaction(&t)
}

func (v *formValues) expense() (model.Expense, error) {
	amount, err := validate.ParseAmount("amount", v.amount)
	if err != nil {
		return model.Expense{}, err
	}
	e := model.Expense{Name: v.name, Amount: amount, IsFixed: v.fixed}
	return e, validate.Expense(&e)
}

func amountField(field string) func(string) error {
	return func(s string) error {
		_, err := validate.ParseAmount(field, s)
		return err
	}
}

func textField(field string) func(string) error {
	return func(s string) error {
		_, err := validate.Text(field, s)
		return err
	}
}

func newSetupForm(v *formValues, loc *time.Location) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How do you get money?").
				Options(
					huh.NewOption("Paycheck to paycheck", string(model.ModePaycheck)),
					huh.NewOption("A fixed pool of money", string(model.ModeFixedPool)),
				).
				Value(&v.mode),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Monthly income").
				Placeholder("4000").
				Value(&v.income).
				Validate(amountField("monthly_income")),
			huh.NewInput().
				Title("Days until your next paycheck").
				Placeholder("15").
				Value(&v.days).
				Validate(func(s string) error {
					_, err := validate.ParseDays("days_until_paycheck", s)
					return err
				}),
		).WithHideFunc(func() bool { return v.mode != string(model.ModePaycheck) }),

		huh.NewGroup(
			huh.NewInput().
				Title("Total money").
				Placeholder("10000").
				Value(&v.total).
				Validate(amountField("total_money")),
			huh.NewSelect[string]().
				Title("How long should it last?").
				Options(
					huh.NewOption("As long as my expenses allow", horizonDefault),
					huh.NewOption("Until a date", horizonTarget),
					huh.NewOption("Spend at most a fixed amount per day", horizonLimit),
				).
				Value(&v.horizon),
		).WithHideFunc(func() bool { return v.mode != string(model.ModeFixedPool) }),

		huh.NewGroup(
			huh.NewInput().
				Title("Make it last until (YYYY-MM-DD)").
				Value(&v.target).
				Validate(func(s string) error {
					d, err := validate.ParseDate("target_date", s, loc)
					if err != nil {
						return err
					}
					if !d.After(time.Now()) {
						return &validate.Error{Field: "target_date", Reason: "must be in the future"}
					}
					return nil
				}),
		).WithHideFunc(func() bool {
			return v.mode != string(model.ModeFixedPool) || v.horizon != horizonTarget
		}),

		huh.NewGroup(
			huh.NewInput().
				Title("Daily limit").
				Value(&v.limit).
				Validate(amountField("daily_limit")),
		).WithHideFunc(func() bool {
			return v.mode != string(model.ModeFixedPool) || v.horizon != horizonLimit
		}),
	).WithShowHelp(true)
}

func newSpendForm(v *formValues, income bool) *huh.Form {
	title := "Spent"
	if income {
		title = "Received"
	}

	fields := []huh.Field{
		huh.NewInput().
			Title(title).
			Placeholder("12.50").
			Value(&v.amount).
			Validate(amountField("amount")),
		huh.NewInput().
			Title("Description").
			Value(&v.description).
			Validate(textField("description")),
	}
	if !income {
		fields = append(fields, huh.NewInput().
			Title("Category").
			Placeholder("optional").
			Value(&v.category).
			Validate(func(s string) error {
				_, err := validate.Category(s)
				return err
			}))
	}

	return huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(true)
}

func newExpenseForm(v *formValues) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Expense").
				Placeholder("Rent").
				Value(&v.name).
				Validate(textField("name")),
			huh.NewInput().
				Title("Monthly amount").
				Value(&v.amount).
				Validate(amountField("amount")),
			huh.NewConfirm().
				Title("Fixed cost?").
				Affirmative("Fixed").
				Negative("Variable").
				Value(&v.fixed),
		),
	).WithShowHelp(true)
}
