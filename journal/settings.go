package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Settings returns the saved account settings, or the store defaults when
// nothing has been saved yet.
func (s *Store) Settings(ctx context.Context) (AccountSettings, error) {
	return s.settings(ctx, s.db)
}

func (s *Store) settings(ctx context.Context, q dbtx) (AccountSettings, error) {
	var a AccountSettings
	err := q.QueryRowContext(ctx, `
		SELECT starting_balance, current_balance, currency, default_risk_percent, default_lots, leverage, updated_at
		FROM settings WHERE id = 1`).Scan(
		&a.StartingBalance, &a.CurrentBalance, &a.Currency, &a.DefaultRiskPercent,
		&a.DefaultLots, &a.Leverage, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return s.opts.Defaults, nil
	}
	if err != nil {
		return AccountSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return a, nil
}

func (a AccountSettings) Validate() error {
	if a.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if a.CurrentBalance < 0 || a.StartingBalance < 0 {
		return fmt.Errorf("balances cannot be negative")
	}
	if a.DefaultRiskPercent < 0 || a.DefaultRiskPercent > 100 {
		return fmt.Errorf("default risk percent must be between 0 and 100")
	}
	if a.DefaultLots < 0 {
		return fmt.Errorf("default lots cannot be negative")
	}
	return nil
}

// SaveSettings replaces the stored account settings.
func (s *Store) SaveSettings(ctx context.Context, a *AccountSettings) error {
	if err := s.saveSettings(ctx, s.db, a); err != nil {
		return err
	}
	s.log.WithField("currency", a.Currency).Info("settings saved")
	return nil
}

func (s *Store) saveSettings(ctx context.Context, q dbtx, a *AccountSettings) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	a.UpdatedAt = s.opts.Now().UTC()
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (id, starting_balance, current_balance, currency, default_risk_percent, default_lots, leverage, updated_at)
		VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			starting_balance = excluded.starting_balance,
			current_balance = excluded.current_balance,
			currency = excluded.currency,
			default_risk_percent = excluded.default_risk_percent,
			default_lots = excluded.default_lots,
			leverage = excluded.leverage,
			updated_at = excluded.updated_at`,
		a.StartingBalance, a.CurrentBalance, a.Currency, a.DefaultRiskPercent, a.DefaultLots, a.Leverage, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
