package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/theirongolddev/thenumber/internal/model"
)

var transactionColumns = []string{"id", "date", "amount", "description", "category", "created_at"}

// TxnFilter narrows ListTransactions. Zero values mean no bound.
type TxnFilter struct {
	Since       time.Time // inclusive
	Until       time.Time // exclusive
	Limit       uint64
	NewestFirst bool
}

// AddTransaction appends t, assigning an ID, creation time and date when absent.
func (s *Store) AddTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Date.IsZero() {
		t.Date = t.CreatedAt
	}
	t.Date, t.CreatedAt = stamp(t.Date), stamp(t.CreatedAt)

	query, args, err := sq.Insert("transactions").
		Columns(transactionColumns...).
		Values(t.ID, formatTime(t.Date), t.Amount, t.Description, t.Category, formatTime(t.CreatedAt)).
		ToSql()
	if err != nil {
		return t, fmt.Errorf("building query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return t, fmt.Errorf("adding transaction: %w", err)
	}
	return t, nil
}

// DeleteTransaction removes one transaction.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if err := exec(ctx, s.db, sq.Delete("transactions").Where(sq.Eq{"id": id})); err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return nil
}

// ListTransactions returns transactions matching f, oldest first unless
// f.NewestFirst is set.
func (s *Store) ListTransactions(ctx context.Context, f TxnFilter) ([]model.Transaction, error) {
	return listTransactions(ctx, s.db, f)
}

func listTransactions(ctx context.Context, q querier, f TxnFilter) ([]model.Transaction, error) {
	b := sq.Select(transactionColumns...).From("transactions")
	if !f.Since.IsZero() {
		b = b.Where(sq.GtOrEq{"date": formatTime(f.Since)})
	}
	if !f.Until.IsZero() {
		b = b.Where(sq.Lt{"date": formatTime(f.Until)})
	}
	if f.NewestFirst {
		b = b.OrderBy("date DESC", "created_at DESC")
	} else {
		b = b.OrderBy("date ASC", "created_at ASC")
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var txns []model.Transaction
	for rows.Next() {
		var t model.Transaction
		var date, created string
		if err := rows.Scan(&t.ID, &date, &t.Amount, &t.Description, &t.Category, &created); err != nil {
			return nil, err
		}
		if t.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if t.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		txns = append(txns, t)
	}
	return txns, rows.Err()
}
