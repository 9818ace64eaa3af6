package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/tradelog/market"
	"github.com/rustyeddy/tradelog/pkg/id"
	"github.com/sirupsen/logrus"
)

type Options struct {
	Logger    logrus.FieldLogger
	Checklist []string        // labels a trade's Checklist indexes into; defaults to DefaultChecklist
	Defaults  AccountSettings // returned until settings are saved
	Now       func() time.Time
}

// dbtx is the part of *sql.DB and *sql.Tx the store runs statements on.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store keeps trades and account settings in SQLite.
type Store struct {
	db   *sql.DB
	log  logrus.FieldLogger
	opts Options
}

// Open opens (or creates) the SQLite journal at path.
func Open(path string, opts Options) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	s, err := New(db, opts)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and makes sure the schema exists.
func New(db *sql.DB, opts Options) (*Store, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if len(opts.Checklist) == 0 {
		opts.Checklist = DefaultChecklist
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{db: db, log: opts.Logger, opts: opts}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Checklist returns the checklist labels trades are validated against.
func (s *Store) Checklist() []string {
	return s.opts.Checklist
}

func (s *Store) prepare(t *Trade) error {
	if t.Outcome == "" {
		t.Outcome = Pending
	}
	if err := t.Validate(len(s.opts.Checklist)); err != nil {
		return err
	}
	t.FollowedPlan = FollowedPlan(t.Checklist, len(s.opts.Checklist))
	t.UpdatedAt = s.opts.Now().UTC()
	return nil
}

// Create inserts a new trade, assigning an ID and timestamps when missing.
func (s *Store) Create(ctx context.Context, t *Trade) error {
	if err := s.prepare(t); err != nil {
		return err
	}
	t.CreatedAt = t.UpdatedAt
	if t.TradeTime.IsZero() {
		t.TradeTime = t.CreatedAt
	}
	if t.ID == "" {
		t.ID = id.NewAt(t.TradeTime)
	}

	checklist, err := encodeChecklist(t.Checklist)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO trades (`+tradeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Symbol, string(t.Direction), t.EntryPrice, t.StopLoss, t.TakeProfit, t.Lots,
		string(t.Outcome), nullable(t.RealizedPL), t.Rating, t.Notes, checklist,
		t.TradeTime.UTC(), t.CreatedAt, t.UpdatedAt, t.RMultiple, t.FollowedPlan,
	)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", t.ID, err)
	}
	s.log.WithFields(logrus.Fields{"id": t.ID, "symbol": t.Symbol}).Debug("trade created")
	return nil
}

// Update rewrites every editable field of an existing trade. A closed
// trade gets its R-multiple recomputed from the edited prices and lots.
func (s *Store) Update(ctx context.Context, t *Trade, accountCurrency string, rates market.Rates) error {
	if err := s.prepare(t); err != nil {
		return err
	}
	if t.RealizedPL != nil {
		t.RMultiple = RMultiple(*t.RealizedPL, t.InitialRisk(accountCurrency, rates))
	}
	if err := s.update(ctx, s.db, t); err != nil {
		return err
	}
	s.log.WithField("id", t.ID).Debug("trade updated")
	return nil
}

func (s *Store) update(ctx context.Context, q dbtx, t *Trade) error {
	checklist, err := encodeChecklist(t.Checklist)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx, `
		UPDATE trades SET symbol = ?, direction = ?, entry_price = ?, stop_loss = ?, take_profit = ?,
			lots = ?, outcome = ?, realized_pl = ?, rating = ?, notes = ?, checklist = ?,
			trade_time = ?, updated_at = ?, r_multiple = ?, followed_plan = ?
		WHERE id = ?`,
		t.Symbol, string(t.Direction), t.EntryPrice, t.StopLoss, t.TakeProfit,
		t.Lots, string(t.Outcome), nullable(t.RealizedPL), t.Rating, t.Notes, checklist,
		t.TradeTime.UTC(), t.UpdatedAt, t.RMultiple, t.FollowedPlan,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update trade %s: %w", t.ID, err)
	}
	return expectOne(res, t.ID)
}

// Finalize moves a pending trade to outcome with the realized P/L and stores it.
// The account balance is left alone; see FinalizeAndBook.
func (s *Store) Finalize(ctx context.Context, tradeID string, outcome Outcome, pl float64, accountCurrency string, rates market.Rates) (Trade, error) {
	t, err := s.finalize(ctx, s.db, tradeID, outcome, pl, accountCurrency, rates)
	if err != nil {
		return Trade{}, err
	}
	s.log.WithFields(logrus.Fields{"id": t.ID, "outcome": t.Outcome, "pl": pl}).Info("trade finalized")
	return t, nil
}

// FinalizeAndBook finalizes a pending trade and adds its P/L to the current
// balance in one transaction. Either both writes land or neither does.
func (s *Store) FinalizeAndBook(ctx context.Context, tradeID string, outcome Outcome, pl float64, rates market.Rates) (Trade, AccountSettings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Trade{}, AccountSettings{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	acct, err := s.settings(ctx, tx)
	if err != nil {
		return Trade{}, AccountSettings{}, err
	}
	t, err := s.finalize(ctx, tx, tradeID, outcome, pl, acct.Currency, rates)
	if err != nil {
		return Trade{}, AccountSettings{}, err
	}
	acct.CurrentBalance += pl
	if err := s.saveSettings(ctx, tx, &acct); err != nil {
		return Trade{}, AccountSettings{}, fmt.Errorf("book P/L of %s: %w", tradeID, err)
	}
	if err := tx.Commit(); err != nil {
		return Trade{}, AccountSettings{}, fmt.Errorf("commit: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"id": t.ID, "outcome": t.Outcome, "pl": pl, "balance": acct.CurrentBalance,
	}).Info("trade finalized")
	return t, acct, nil
}

func (s *Store) finalize(ctx context.Context, q dbtx, tradeID string, outcome Outcome, pl float64, accountCurrency string, rates market.Rates) (Trade, error) {
	t, err := s.get(ctx, q, tradeID)
	if err != nil {
		return Trade{}, err
	}
	if err := t.Finalize(outcome, pl, accountCurrency, rates); err != nil {
		return Trade{}, err
	}
	if err := s.prepare(&t); err != nil {
		return Trade{}, err
	}
	if err := s.update(ctx, q, &t); err != nil {
		return Trade{}, err
	}
	return t, nil
}

func (s *Store) Delete(ctx context.Context, tradeID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trades WHERE id = ?`, tradeID)
	if err != nil {
		return fmt.Errorf("delete trade %s: %w", tradeID, err)
	}
	if err := expectOne(res, tradeID); err != nil {
		return err
	}
	s.log.WithField("id", tradeID).Debug("trade deleted")
	return nil
}

func expectOne(res sql.Result, tradeID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
	}
	return nil
}

func nullable(x *float64) sql.NullFloat64 {
	if x == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *x, Valid: true}
}

func encodeChecklist(items []int) (string, error) {
	if items == nil {
		items = []int{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode checklist: %w", err)
	}
	return string(b), nil
}
