// Package validate rejects malformed budget input before it reaches storage
// or the engine.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/thenumber/internal/model"
)

// Input limits.
const (
	MaxAmount            = 10_000_000.0
	MaxStringLength      = 200
	MaxDaysUntilPaycheck = 365
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid input")

// Error names the offending field.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error { return ErrInvalid }

func fail(field, format string, args ...any) error {
	return &Error{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Amount checks 0 < a <= MaxAmount.
func Amount(field string, a float64) error {
	switch {
	case math.IsNaN(a) || math.IsInf(a, 0):
		return fail(field, "must be a number")
	case a <= 0:
		return fail(field, "must be greater than zero")
	case a > MaxAmount:
		return fail(field, "must not exceed %.0f", MaxAmount)
	}
	return nil
}

// Text trims s and checks it is non-empty and within MaxStringLength.
func Text(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fail(field, "must not be empty")
	}
	if len([]rune(s)) > MaxStringLength {
		return "", fail(field, "must be at most %d characters", MaxStringLength)
	}
	return s, nil
}

// Category trims c; an empty category is allowed.
func Category(c string) (string, error) {
	c = strings.TrimSpace(c)
	if len([]rune(c)) > MaxStringLength {
		return "", fail("category", "must be at most %d characters", MaxStringLength)
	}
	return c, nil
}

// Configuration checks the plan payload against its limits.
func Configuration(cfg model.Configuration) error {
	if cfg.SetAt.IsZero() {
		return fail("set_at", "must be set")
	}

	switch p := cfg.Plan.(type) {
	case model.PaycheckPlan:
		if err := Amount("monthly_income", p.MonthlyIncome); err != nil {
			return err
		}
		if p.DaysUntilPaycheck < 1 || p.DaysUntilPaycheck > MaxDaysUntilPaycheck {
			return fail("days_until_paycheck", "must be between 1 and %d", MaxDaysUntilPaycheck)
		}
	case model.PoolPlan:
		if err := Amount("total_money", p.TotalMoney); err != nil {
			return err
		}
		switch h := model.HorizonOf(p).(type) {
		case model.DailyLimit:
			if err := Amount("daily_limit", h.Amount); err != nil {
				return err
			}
		case model.TargetDate:
			if !h.At.After(cfg.SetAt) {
				return fail("target_date", "must be in the future")
			}
		}
	case nil:
		return fail("mode", "must be chosen")
	default:
		return fail("mode", "unknown plan %T", p)
	}
	return nil
}

// Horizon builds a pool horizon from optional user input. A zero target and a
// zero limit mean neither was given.
func Horizon(target time.Time, limit float64) (model.Horizon, error) {
	switch {
	case !target.IsZero() && limit != 0:
		return nil, fail("horizon", "choose a target date or a daily limit, not both")
	case !target.IsZero():
		return model.TargetDate{At: target}, nil
	case limit != 0:
		if err := Amount("daily_limit", limit); err != nil {
			return nil, err
		}
		return model.DailyLimit{Amount: limit}, nil
	}
	return model.DefaultHorizon{}, nil
}

// Expense trims and checks a new expense in place.
func Expense(e *model.Expense) error {
	name, err := Text("name", e.Name)
	if err != nil {
		return err
	}
	if err := Amount("amount", e.Amount); err != nil {
		return err
	}
	e.Name = name
	return nil
}

// ExpensePatch checks only the fields present in p, trimming the name.
func ExpensePatch(p *model.ExpensePatch) error {
	if p.Name == nil && p.Amount == nil && p.IsFixed == nil {
		return fail("expense", "nothing to update")
	}
	if p.Name != nil {
		name, err := Text("name", *p.Name)
		if err != nil {
			return err
		}
		p.Name = &name
	}
	if p.Amount != nil {
		if err := Amount("amount", *p.Amount); err != nil {
			return err
		}
	}
	return nil
}

// Transaction trims and checks a new transaction in place.
func Transaction(t *model.Transaction) error {
	desc, err := Text("description", t.Description)
	if err != nil {
		return err
	}
	if err := Amount("amount", t.Amount); err != nil {
		return err
	}
	cat, err := Category(t.Category)
	if err != nil {
		return err
	}
	t.Description = desc
	t.Category = cat
	return nil
}

// ParseAmount reads a user-typed dollar amount such as "1,250.50" or "$12"
// and checks it with Amount.
func ParseAmount(field, s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fail(field, "must not be empty")
	}
	a, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fail(field, "%q is not an amount", s)
	}
	return a, Amount(field, a)
}

// ParseDays reads a whole number of days until the next paycheck.
func ParseDays(field, s string) (int, error) {
	d, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fail(field, "%q is not a whole number", s)
	}
	if d < 1 || d > MaxDaysUntilPaycheck {
		return 0, fail(field, "must be between 1 and %d", MaxDaysUntilPaycheck)
	}
	return d, nil
}

// DateLayout is the accepted calendar date format.
const DateLayout = "2006-01-02"

// ParseDate reads a YYYY-MM-DD date as midnight in loc.
func ParseDate(field, s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fail(field, "%q is not a YYYY-MM-DD date", s)
	}
	return d, nil
}
