// Package service coordinates reads and writes against the ledger and
// recomputes the number after every change.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/thenumber/internal/engine"
	"github.com/theirongolddev/thenumber/internal/ledger"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/store"
	"github.com/theirongolddev/thenumber/internal/validate"
)

// ErrNotConfigured is returned by reads that need a budget configuration.
var ErrNotConfigured = store.ErrNotConfigured

// Ledger is the persistence the service needs. *store.Store implements it.
type Ledger interface {
	SaveConfiguration(ctx context.Context, cfg model.Configuration) error
	LoadConfiguration(ctx context.Context) (model.Configuration, error)
	ClearConfiguration(ctx context.Context, expenses bool) error
	AddExpense(ctx context.Context, e model.Expense) (model.Expense, error)
	UpdateExpense(ctx context.Context, id string, p model.ExpensePatch, now time.Time) (model.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	ListExpenses(ctx context.Context) ([]model.Expense, error)
	AddTransaction(ctx context.Context, t model.Transaction) (model.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListTransactions(ctx context.Context, f store.TxnFilter) ([]model.Transaction, error)
	Snapshot(ctx context.Context, from, to time.Time) (store.Snapshot, error)
}

// Options configures a Service. Zero values get defaults.
type Options struct {
	Location *time.Location
	Logger   logrus.FieldLogger
	Now      func() time.Time
}

// Service is safe for concurrent use. Writes to one ledger are serialized;
// writes to different ledgers proceed independently.
type Service struct {
	ledger Ledger
	log    logrus.FieldLogger
	loc    *time.Location
	clock  func() time.Time

	configMu   sync.Mutex
	expensesMu sync.Mutex
	txnsMu     sync.Mutex

	tracker Tracker
	seq     atomic.Uint64

	latestMu  sync.Mutex
	latestSeq uint64
	latest    model.BudgetNumber
	hasLatest bool
}

// New returns a Service over l.
func New(l Ledger, opts Options) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		quiet := logrus.New()
		quiet.SetLevel(logrus.PanicLevel)
		opts.Logger = quiet
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		ledger: l,
		log:    opts.Logger,
		loc:    opts.Location,
		clock:  opts.Now,
	}
}

// Location is the timezone that defines "today".
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) now() time.Time {
	return s.clock().In(s.loc)
}

// Busy reports whether an operation on r is in flight.
func (s *Service) Busy(r Resource) bool {
	return s.tracker.Busy(r)
}

// AnyBusy reports whether any operation is in flight.
func (s *Service) AnyBusy() bool {
	return s.tracker.AnyBusy()
}

// Configure validates and stores a new configuration, replacing the old one.
// A zero SetAt means now.
func (s *Service) Configure(ctx context.Context, cfg model.Configuration) (model.BudgetNumber, error) {
	done := s.tracker.Begin(ResourceNumber)
	defer done()

	if cfg.SetAt.IsZero() {
		cfg.SetAt = s.now()
	}
	if err := validate.Configuration(cfg); err != nil {
		return model.BudgetNumber{}, err
	}

	s.configMu.Lock()
	err := s.ledger.SaveConfiguration(ctx, cfg)
	s.configMu.Unlock()
	if err != nil {
		return model.BudgetNumber{}, err
	}

	s.log.WithField("mode", cfg.Mode()).Info("budget configured")
	return s.Number(ctx)
}

// Configuration returns the stored configuration.
func (s *Service) Configuration(ctx context.Context) (model.Configuration, error) {
	return s.ledger.LoadConfiguration(ctx)
}

// Reset clears the configuration, and the recurring expenses with it when
// expenses is set. Transactions are kept.
func (s *Service) Reset(ctx context.Context, expenses bool) error {
	done := s.tracker.Begin(ResourceNumber)
	defer done()

	s.configMu.Lock()
	defer s.configMu.Unlock()
	if expenses {
		s.expensesMu.Lock()
		defer s.expensesMu.Unlock()
	}

	if err := s.ledger.ClearConfiguration(ctx, expenses); err != nil {
		return err
	}

	s.latestMu.Lock()
	s.hasLatest = false
	s.latest = model.BudgetNumber{}
	s.latestSeq = s.seq.Load()
	s.latestMu.Unlock()

	s.log.WithField("expenses", expenses).Info("budget reset")
	return nil
}

// AddExpense records a recurring monthly expense.
func (s *Service) AddExpense(ctx context.Context, e model.Expense) (model.Expense, *model.BudgetNumber, error) {
	if err := validate.Expense(&e); err != nil {
		return e, nil, err
	}
	now := s.now()
	e.ID, e.CreatedAt, e.UpdatedAt = "", now, now

	e, err := s.writeExpenses(func() (model.Expense, error) {
		return s.ledger.AddExpense(ctx, e)
	})
	if err != nil {
		return e, nil, err
	}

	s.log.WithField("expense_id", e.ID).Info("expense added")
	n, err := s.refresh(ctx)
	return e, n, err
}

// UpdateExpense applies a partial update.
func (s *Service) UpdateExpense(ctx context.Context, id string, p model.ExpensePatch) (model.Expense, *model.BudgetNumber, error) {
	if err := validate.ExpensePatch(&p); err != nil {
		return model.Expense{}, nil, err
	}

	e, err := s.writeExpenses(func() (model.Expense, error) {
		return s.ledger.UpdateExpense(ctx, id, p, s.now())
	})
	if err != nil {
		return e, nil, err
	}

	s.log.WithField("expense_id", id).Info("expense updated")
	n, err := s.refresh(ctx)
	return e, n, err
}

// RemoveExpense deletes an expense.
func (s *Service) RemoveExpense(ctx context.Context, id string) (*model.BudgetNumber, error) {
	_, err := s.writeExpenses(func() (model.Expense, error) {
		return model.Expense{}, s.ledger.DeleteExpense(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("expense_id", id).Info("expense removed")
	return s.refresh(ctx)
}

// ListExpenses returns every recurring expense.
func (s *Service) ListExpenses(ctx context.Context) ([]model.Expense, error) {
	return s.ledger.ListExpenses(ctx)
}

// Spend records money going out. An empty category means "expense"; income
// must be recorded with Receive.
func (s *Service) Spend(ctx context.Context, t model.Transaction) (model.Transaction, *model.BudgetNumber, error) {
	if ledger.IsIncome(t) {
		return t, nil, &validate.Error{Field: "category", Reason: "use income to record money in"}
	}
	if strings.TrimSpace(t.Category) == "" {
		t.Category = model.CategoryExpense
	}
	return s.addTransaction(ctx, t)
}

// Receive records money coming in.
func (s *Service) Receive(ctx context.Context, t model.Transaction) (model.Transaction, *model.BudgetNumber, error) {
	t.Category = model.CategoryIncome
	return s.addTransaction(ctx, t)
}

func (s *Service) addTransaction(ctx context.Context, t model.Transaction) (model.Transaction, *model.BudgetNumber, error) {
	if err := validate.Transaction(&t); err != nil {
		return t, nil, err
	}
	now := s.now()
	t.ID, t.CreatedAt = "", now
	if t.Date.IsZero() {
		t.Date = now
	}

	done := s.tracker.Begin(ResourceTransactions)
	s.txnsMu.Lock()
	t, err := s.ledger.AddTransaction(ctx, t)
	s.txnsMu.Unlock()
	done()
	if err != nil {
		return t, nil, err
	}

	s.log.WithFields(logrus.Fields{
		"txn_id":   t.ID,
		"category": t.Category,
	}).Info("transaction recorded")
	n, err := s.refresh(ctx)
	return t, n, err
}

// RemoveTransaction deletes a transaction.
func (s *Service) RemoveTransaction(ctx context.Context, id string) (*model.BudgetNumber, error) {
	done := s.tracker.Begin(ResourceTransactions)
	s.txnsMu.Lock()
	err := s.ledger.DeleteTransaction(ctx, id)
	s.txnsMu.Unlock()
	done()
	if err != nil {
		return nil, err
	}

	s.log.WithField("txn_id", id).Info("transaction removed")
	return s.refresh(ctx)
}

// RecentTransactions returns up to limit transactions, newest first.
func (s *Service) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if limit < 0 {
		limit = 0
	}
	return s.ledger.ListTransactions(ctx, store.TxnFilter{Limit: uint64(limit), NewestFirst: true})
}

func (s *Service) writeExpenses(fn func() (model.Expense, error)) (model.Expense, error) {
	done := s.tracker.Begin(ResourceExpenses)
	defer done()
	s.expensesMu.Lock()
	defer s.expensesMu.Unlock()
	return fn()
}

// Number computes the number from one consistent snapshot of the ledger.
func (s *Service) Number(ctx context.Context) (model.BudgetNumber, error) {
	done := s.tracker.Begin(ResourceNumber)
	defer done()

	seq := s.seq.Add(1)
	now := s.now()

	snap, err := s.ledger.Snapshot(ctx, ledger.DayStart(now), ledger.DayEnd(now))
	if err != nil {
		return model.BudgetNumber{}, fmt.Errorf("reading ledger: %w", err)
	}
	if !snap.Configured {
		return model.BudgetNumber{}, ErrNotConfigured
	}

	n := engine.Compute(snap.Config, ledger.TotalExpenses(snap.Expenses), snap.Transactions, now)
	s.publish(seq, n)
	return n, nil
}

// Latest returns the most recently started read that has completed. Results
// of reads overtaken by a newer one are dropped.
func (s *Service) Latest() (model.BudgetNumber, bool) {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	return s.latest, s.hasLatest
}

func (s *Service) publish(seq uint64, n model.BudgetNumber) {
	s.latestMu.Lock()
	defer s.latestMu.Unlock()
	if seq <= s.latestSeq {
		s.log.WithField("seq", seq).Debug("discarding superseded number")
		return
	}
	s.latestSeq = seq
	s.latest = n
	s.hasLatest = true
}

// refresh recomputes after a write. It returns nil without error when no
// configuration exists yet.
func (s *Service) refresh(ctx context.Context) (*model.BudgetNumber, error) {
	n, err := s.Number(ctx)
	if errors.Is(err, ErrNotConfigured) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Dashboard is everything the overview screens show.
type Dashboard struct {
	Number        *model.BudgetNumber
	Config        model.Configuration
	Expenses      []model.Expense
	FixedTotal    float64
	VariableTotal float64
	Recent        []model.Transaction
}

// Dashboard loads the number, the expenses and the recent transactions
// concurrently. A missing configuration leaves Number nil.
func (s *Service) Dashboard(ctx context.Context, recent int) (Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := s.refresh(gctx)
		d.Number = n
		return err
	})
	g.Go(func() error {
		cfg, err := s.ledger.LoadConfiguration(gctx)
		if errors.Is(err, ErrNotConfigured) {
			return nil
		}
		d.Config = cfg
		return err
	})
	g.Go(func() error {
		expenses, err := s.ledger.ListExpenses(gctx)
		d.Expenses = expenses
		d.FixedTotal, d.VariableTotal = ledger.SplitExpenses(expenses)
		return err
	})
	g.Go(func() error {
		txns, err := s.RecentTransactions(gctx, recent)
		d.Recent = txns
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return d, nil
}

// History returns per-day totals since the configuration was set, most
// recent first. days > 0 caps the number of days returned.
func (s *Service) History(ctx context.Context, days int) ([]model.DaySummary, error) {
	now := s.now()
	snap, err := s.ledger.Snapshot(ctx, ledger.DayStart(now), ledger.DayEnd(now))
	if err != nil {
		return nil, fmt.Errorf("reading ledger: %w", err)
	}
	if !snap.Configured {
		return nil, ErrNotConfigured
	}

	from := ledger.DayStart(snap.Config.SetAt.In(s.loc))
	summaries := ledger.DailyTotals(snap.Transactions, from, ledger.DayEnd(now), s.loc)
	if days > 0 && len(summaries) > days {
		summaries = summaries[:days]
	}
	return summaries, nil
}
