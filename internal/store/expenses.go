package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/theirongolddev/thenumber/internal/model"
)

var expenseColumns = []string{"id", "name", "amount", "is_fixed", "created_at", "updated_at"}

// AddExpense inserts e, assigning an ID and timestamps when absent.
func (s *Store) AddExpense(ctx context.Context, e model.Expense) (model.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	if e.UpdatedAt.IsZero() {
		e.UpdatedAt = e.CreatedAt
	}
	e.CreatedAt, e.UpdatedAt = stamp(e.CreatedAt), stamp(e.UpdatedAt)

	query, args, err := sq.Insert("expenses").
		Columns(expenseColumns...).
		Values(e.ID, e.Name, e.Amount, boolInt(e.IsFixed), formatTime(e.CreatedAt), formatTime(e.UpdatedAt)).
		ToSql()
	if err != nil {
		return e, fmt.Errorf("building query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return e, fmt.Errorf("adding expense: %w", err)
	}
	return e, nil
}

// UpdateExpense applies the fields present in p and returns the result.
func (s *Store) UpdateExpense(ctx context.Context, id string, p model.ExpensePatch, now time.Time) (model.Expense, error) {
	b := sq.Update("expenses").
		Set("updated_at", formatTime(now)).
		Where(sq.Eq{"id": id})
	if p.Name != nil {
		b = b.Set("name", *p.Name)
	}
	if p.Amount != nil {
		b = b.Set("amount", *p.Amount)
	}
	if p.IsFixed != nil {
		b = b.Set("is_fixed", boolInt(*p.IsFixed))
	}

	if err := exec(ctx, s.db, b); err != nil {
		return model.Expense{}, fmt.Errorf("updating expense %s: %w", id, err)
	}
	return s.getExpense(ctx, id)
}

// DeleteExpense removes one expense.
func (s *Store) DeleteExpense(ctx context.Context, id string) error {
	if err := exec(ctx, s.db, sq.Delete("expenses").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("deleting expense %s: %w", id, err)
	}
	return nil
}

// ListExpenses returns every expense, oldest first.
func (s *Store) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return listExpenses(ctx, s.db)
}

func (s *Store) getExpense(ctx context.Context, id string) (model.Expense, error) {
	query, args, err := sq.Select(expenseColumns...).From("expenses").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return model.Expense{}, fmt.Errorf("building query: %w", err)
	}
	e, err := scanExpense(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return e, ErrNotFound
	}
	return e, err
}

func listExpenses(ctx context.Context, q querier) ([]model.Expense, error) {
	query, args, err := sq.Select(expenseColumns...).From("expenses").OrderBy("created_at ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var expenses []model.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (model.Expense, error) {
	var e model.Expense
	var isFixed int
	var created, updated string
	if err := row.Scan(&e.ID, &e.Name, &e.Amount, &isFixed, &created, &updated); err != nil {
		return e, err
	}
	e.IsFixed = isFixed != 0

	var err error
	if e.CreatedAt, err = parseTime(created); err != nil {
		return e, err
	}
	if e.UpdatedAt, err = parseTime(updated); err != nil {
		return e, err
	}
	return e, nil
}
