package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/theirongolddev/thenumber/internal/model"
)

// configRecord is the sealed JSON form of model.Configuration.
type configRecord struct {
	Mode              model.Mode `json:"mode"`
	SetAt             time.Time  `json:"set_at"`
	MonthlyIncome     float64    `json:"monthly_income,omitempty"`
	DaysUntilPaycheck int        `json:"days_until_paycheck,omitempty"`
	TotalMoney        float64    `json:"total_money,omitempty"`
	TargetDate        *time.Time `json:"target_date,omitempty"`
	DailyLimit        float64    `json:"daily_limit,omitempty"`
}

func toRecord(cfg model.Configuration) (configRecord, error) {
	rec := configRecord{Mode: cfg.Mode(), SetAt: cfg.SetAt.UTC()}
	switch p := cfg.Plan.(type) {
	case model.PaycheckPlan:
		rec.MonthlyIncome = p.MonthlyIncome
		rec.DaysUntilPaycheck = p.DaysUntilPaycheck
	case model.PoolPlan:
		rec.TotalMoney = p.TotalMoney
		switch h := model.HorizonOf(p).(type) {
		case model.TargetDate:
			at := h.At.UTC()
			rec.TargetDate = &at
		case model.DailyLimit:
			rec.DailyLimit = h.Amount
		}
	default:
		return rec, fmt.Errorf("unsupported plan %T", cfg.Plan)
	}
	return rec, nil
}

func (r configRecord) configuration() (model.Configuration, error) {
	cfg := model.Configuration{SetAt: r.SetAt}
	switch r.Mode {
	case model.ModePaycheck:
		cfg.Plan = model.PaycheckPlan{MonthlyIncome: r.MonthlyIncome, DaysUntilPaycheck: r.DaysUntilPaycheck}
	case model.ModeFixedPool:
		p := model.PoolPlan{TotalMoney: r.TotalMoney, Horizon: model.DefaultHorizon{}}
		switch {
		case r.TargetDate != nil:
			p.Horizon = model.TargetDate{At: *r.TargetDate}
		case r.DailyLimit > 0:
			p.Horizon = model.DailyLimit{Amount: r.DailyLimit}
		}
		cfg.Plan = p
	default:
		return cfg, fmt.Errorf("unknown stored mode %q", r.Mode)
	}
	return cfg, nil
}

// SaveConfiguration replaces the active configuration.
func (s *Store) SaveConfiguration(ctx context.Context, cfg model.Configuration) error {
	rec, err := toRecord(cfg)
	if err != nil {
		return err
	}
	plain, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	sealed, err := s.sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("sealing configuration: %w", err)
	}

	query, args, err := sq.Insert("settings").
		Columns("id", "payload", "updated_at").
		Values(1, sealed, formatTime(time.Now())).
		Suffix("ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("building query: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	return nil
}

// LoadConfiguration returns the active configuration or ErrNotConfigured.
func (s *Store) LoadConfiguration(ctx context.Context) (model.Configuration, error) {
	return s.loadConfiguration(ctx, s.db)
}

func (s *Store) loadConfiguration(ctx context.Context, q querier) (model.Configuration, error) {
	query, args, err := sq.Select("payload").From("settings").Where(sq.Eq{"id": 1}).ToSql()
	if err != nil {
		return model.Configuration{}, fmt.Errorf("building query: %w", err)
	}

	var sealed []byte
	if err := q.QueryRowContext(ctx, query, args...).Scan(&sealed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Configuration{}, ErrNotConfigured
		}
		return model.Configuration{}, fmt.Errorf("loading configuration: %w", err)
	}

	plain, err := s.sealer.Open(sealed)
	if err != nil {
		return model.Configuration{}, fmt.Errorf("opening configuration: %w", err)
	}
	var rec configRecord
	if err := json.Unmarshal(plain, &rec); err != nil {
		return model.Configuration{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return rec.configuration()
}

// ClearConfiguration removes the active configuration. With expenses set the
// recurring expenses are removed too; transactions are always kept.
func (s *Store) ClearConfiguration(ctx context.Context, expenses bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM settings"); err != nil {
		return fmt.Errorf("clearing configuration: %w", err)
	}
	if expenses {
		if _, err := tx.ExecContext(ctx, "DELETE FROM expenses"); err != nil {
			return fmt.Errorf("clearing expenses: %w", err)
		}
	}
	return tx.Commit()
}
