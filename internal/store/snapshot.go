package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/thenumber/internal/model"
)

// Snapshot is one consistent read of the whole ledger.
type Snapshot struct {
	Config       model.Configuration
	Configured   bool
	Expenses     []model.Expense
	Transactions []model.Transaction
}

// Snapshot reads the configuration, every expense and the transactions dated
// within [from, to) inside a single read transaction. When a configuration
// exists, from is widened back to its SetAt.
func (s *Store) Snapshot(ctx context.Context, from, to time.Time) (Snapshot, error) {
	var snap Snapshot

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return snap, fmt.Errorf("beginning snapshot: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	cfg, err := s.loadConfiguration(ctx, tx)
	switch {
	case err == nil:
		snap.Config = cfg
		snap.Configured = true
		if cfg.SetAt.Before(from) {
			from = cfg.SetAt
		}
	case errors.Is(err, ErrNotConfigured):
	default:
		return snap, err
	}

	if snap.Expenses, err = listExpenses(ctx, tx); err != nil {
		return snap, err
	}
	if snap.Transactions, err = listTransactions(ctx, tx, TxnFilter{Since: from, Until: to}); err != nil {
		return snap, err
	}
	return snap, tx.Commit()
}
