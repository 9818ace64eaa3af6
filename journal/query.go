package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type scanner interface {
	Scan(dest ...any) error
}

func scanTrade(row scanner) (Trade, error) {
	var (
		t         Trade
		direction string
		outcome   string
		pl        sql.NullFloat64
		checklist string
	)
	err := row.Scan(
		&t.ID, &t.Symbol, &direction, &t.EntryPrice, &t.StopLoss, &t.TakeProfit, &t.Lots, &outcome,
		&pl, &t.Rating, &t.Notes, &checklist, &t.TradeTime, &t.CreatedAt, &t.UpdatedAt,
		&t.RMultiple, &t.FollowedPlan,
	)
	if err != nil {
		return Trade{}, err
	}
	t.Direction = Direction(direction)
	t.Outcome = Outcome(outcome)
	if pl.Valid {
		t.RealizedPL = Float(pl.Float64)
	}
	if checklist != "" {
		if err := json.Unmarshal([]byte(checklist), &t.Checklist); err != nil {
			return Trade{}, fmt.Errorf("trade %s checklist: %w", t.ID, err)
		}
	}
	return t, nil
}

// Get returns a single trade by ID.
func (s *Store) Get(ctx context.Context, tradeID string) (Trade, error) {
	return s.get(ctx, s.db, tradeID)
}

func (s *Store) get(ctx context.Context, q dbtx, tradeID string) (Trade, error) {
	row := q.QueryRowContext(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = ?`, tradeID)
	t, err := scanTrade(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return Trade{}, err
	}
	return t, nil
}

// List returns every trade ordered by trade time.
func (s *Store) List(ctx context.Context) ([]Trade, error) {
	return s.query(ctx, `SELECT `+tradeColumns+` FROM trades ORDER BY trade_time ASC, id ASC`)
}

// ListBetween returns trades whose trade_time is within [start, end).
func (s *Store) ListBetween(ctx context.Context, start, end time.Time) ([]Trade, error) {
	return s.query(ctx, `SELECT `+tradeColumns+` FROM trades
		WHERE trade_time >= ? AND trade_time < ?
		ORDER BY trade_time ASC, id ASC`, start.UTC(), end.UTC())
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Trade, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
