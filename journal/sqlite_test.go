package journal

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	log, _ := test.NewNullLogger()
	s, err := Open(path, Options{
		Logger:   log,
		Defaults: AccountSettings{Currency: "USD", StartingBalance: 10000, CurrentBalance: 10000, DefaultRiskPercent: 1},
		Now:      func() time.Time { return testNow },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStoreSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestStore(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('trades','settings')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())
	assert.True(t, found["trades"])
	assert.True(t, found["settings"])
}

func TestStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := pendingTrade()
	tr.ID = ""
	tr.Notes = "london open breakout"
	require.NoError(t, s.Create(ctx, &tr))

	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, ulid.Timestamp(tr.TradeTime), ulid.MustParseStrict(tr.ID).Time(), "id stamped with the trade time")
	assert.True(t, tr.CreatedAt.Equal(testNow))
	assert.True(t, tr.FollowedPlan, "5 of 6 checklist items")

	got, err := s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.Symbol, got.Symbol)
	assert.Equal(t, Buy, got.Direction)
	assert.InDelta(t, 1.1, got.EntryPrice, 1e-12)
	assert.InDelta(t, 1.095, got.StopLoss, 1e-12)
	assert.InDelta(t, 1.11, got.TakeProfit, 1e-12)
	assert.InDelta(t, 0.2, got.Lots, 1e-12)
	assert.Equal(t, Pending, got.Outcome)
	assert.Nil(t, got.RealizedPL)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got.Checklist)
	assert.Equal(t, "london open breakout", got.Notes)
	assert.True(t, got.TradeTime.Equal(tr.TradeTime))
	assert.True(t, got.FollowedPlan)
}

func TestStoreCreateDefaults(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := Trade{Symbol: "XAU/USD", Direction: Sell, EntryPrice: 2300}
	require.NoError(t, s.Create(ctx, &tr))

	assert.Equal(t, Pending, tr.Outcome)
	assert.True(t, tr.TradeTime.Equal(testNow))
	assert.False(t, tr.FollowedPlan)

	got, err := s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Checklist)
}

func TestStoreCreateRejectsInvalid(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	tr := pendingTrade()
	tr.EntryPrice = 0
	err := s.Create(context.Background(), &tr)
	assert.True(t, errors.Is(err, ErrInvalidTrade))

	all, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestStoreGetNotFound(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	_, err := s.Get(context.Background(), "nonexistent")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "nonexistent")
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))

	tr.Notes = "moved stop"
	tr.StopLoss = 1.0975
	tr.Checklist = []int{0}
	require.NoError(t, s.Update(ctx, &tr, "USD", nil))

	got, err := s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, "moved stop", got.Notes)
	assert.InDelta(t, 1.0975, got.StopLoss, 1e-12)
	assert.False(t, got.FollowedPlan)

	missing := pendingTrade()
	missing.ID = "ghost"
	assert.True(t, errors.Is(s.Update(ctx, &missing, "USD", nil), ErrNotFound))
}

func TestStoreFinalize(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))

	done, err := s.Finalize(ctx, tr.ID, Loss, -100, "USD", nil)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, done.RMultiple, 1e-9)

	got, err := s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, Loss, got.Outcome)
	require.NotNil(t, got.RealizedPL)
	assert.Equal(t, -100.0, *got.RealizedPL)
	assert.InDelta(t, -1.0, got.RMultiple, 1e-9)

	_, err = s.Finalize(ctx, tr.ID, Profit, 10, "USD", nil)
	assert.True(t, errors.Is(err, ErrNotPending))

	_, err = s.Finalize(ctx, "ghost", Profit, 10, "USD", nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStoreUpdateRecomputesRMultiple(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))
	done, err := s.Finalize(ctx, tr.ID, Loss, -100, "USD", nil)
	require.NoError(t, err)
	require.InDelta(t, -1.0, done.RMultiple, 1e-9)

	// doubling the lots doubles the initial risk
	done.Lots = 0.4
	require.NoError(t, s.Update(ctx, &done, "USD", nil))
	assert.InDelta(t, -0.5, done.RMultiple, 1e-9)

	got, err := s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.InDelta(t, -0.5, got.RMultiple, 1e-9)

	// moving the stop changes it as well
	got.StopLoss = 1.0975
	require.NoError(t, s.Update(ctx, &got, "USD", nil))
	got, err = s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, got.RMultiple, 1e-9)
}

func TestStoreFinalizeAndBook(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))

	done, acct, err := s.FinalizeAndBook(ctx, tr.ID, Profit, 200, nil)
	require.NoError(t, err)
	assert.Equal(t, Profit, done.Outcome)
	assert.InDelta(t, 2.0, done.RMultiple, 1e-9)
	assert.Equal(t, 10200.0, acct.CurrentBalance)

	saved, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10200.0, saved.CurrentBalance)

	_, _, err = s.FinalizeAndBook(ctx, tr.ID, Profit, 200, nil)
	assert.True(t, errors.Is(err, ErrNotPending))
	saved, err = s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10200.0, saved.CurrentBalance, "a rejected finalize books nothing")
}

func TestStoreFinalizeAndBookRollsBack(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	small := AccountSettings{StartingBalance: 50, CurrentBalance: 50, Currency: "USD", DefaultRiskPercent: 1}
	require.NoError(t, s.SaveSettings(ctx, &small))

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))

	// the booked balance would go negative, so the settings write fails
	_, _, err := s.FinalizeAndBook(ctx, tr.ID, Loss, -100, nil)
	assert.ErrorContains(t, err, "book P/L")

	got, err := s.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, Pending, got.Outcome, "trade write rolled back with the balance")
	assert.Nil(t, got.RealizedPL)

	acct, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50.0, acct.CurrentBalance)

	_, err = s.Finalize(ctx, tr.ID, Loss, -100, "USD", nil)
	assert.NoError(t, err, "the trade can still be closed")
}

func TestStoreConfiguredChecklist(t *testing.T) {
	t.Parallel()

	labels := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	log, _ := test.NewNullLogger()
	s, err := Open(filepath.Join(t.TempDir(), "checklist.db"), Options{Logger: log, Checklist: labels})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	assert.Equal(t, labels, s.Checklist())

	tr := pendingTrade()
	tr.Checklist = []int{1, 7}
	require.NoError(t, s.Create(ctx, &tr))
	assert.False(t, tr.FollowedPlan, "2 of 8 items")

	def, _ := newTestStore(t)
	assert.Equal(t, DefaultChecklist, def.Checklist())
	other := pendingTrade()
	other.Checklist = []int{7}
	assert.True(t, errors.Is(def.Create(ctx, &other), ErrInvalidTrade))
}

func TestStoreDelete(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))
	require.NoError(t, s.Delete(ctx, tr.ID))

	_, err := s.Get(ctx, tr.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, tr.ID), ErrNotFound))
}

func TestStoreListOrderedByTradeTime(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)
	for i, offset := range []time.Duration{48 * time.Hour, 0, 24 * time.Hour} {
		tr := pendingTrade()
		tr.ID = []string{"C", "A", "B"}[i]
		tr.TradeTime = base.Add(offset)
		require.NoError(t, s.Create(ctx, &tr))
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].ID)
	assert.Equal(t, "B", all[1].ID)
	assert.Equal(t, "C", all[2].ID)

	day, err := s.ListBetween(ctx, base.Add(24*time.Hour), base.Add(48*time.Hour))
	require.NoError(t, err)
	require.Len(t, day, 1)
	assert.Equal(t, "B", day[0].ID)
}

func TestStoreSettings(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	ctx := context.Background()

	def, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "USD", def.Currency)
	assert.Equal(t, 10000.0, def.CurrentBalance)

	a := AccountSettings{
		StartingBalance:    5000,
		CurrentBalance:     6200,
		Currency:           "EUR",
		DefaultRiskPercent: 0.5,
		DefaultLots:        0.1,
		Leverage:           30,
	}
	require.NoError(t, s.SaveSettings(ctx, &a))

	a.CurrentBalance = 6400
	require.NoError(t, s.SaveSettings(ctx, &a))

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, 6400.0, got.CurrentBalance)
	assert.Equal(t, 30.0, got.Leverage)
	assert.True(t, got.UpdatedAt.Equal(testNow))

	bad := AccountSettings{Currency: ""}
	assert.Error(t, s.SaveSettings(ctx, &bad))
}

func TestStoreLogsFinalize(t *testing.T) {
	t.Parallel()

	log, hook := test.NewNullLogger()
	s, err := Open(filepath.Join(t.TempDir(), "log.db"), Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	tr := pendingTrade()
	require.NoError(t, s.Create(ctx, &tr))
	_, err = s.Finalize(ctx, tr.ID, Profit, 50, "USD", nil)
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "trade finalized", entry.Message)
	assert.Equal(t, tr.ID, entry.Data["id"])
}
