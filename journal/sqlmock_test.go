package journal

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS trades")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	log, _ := test.NewNullLogger()
	s, err := New(db, Options{Logger: log})
	require.NoError(t, err)
	return s, mock
}

func TestNewSchemaFailure(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("disk I/O error"))

	_, err = New(db, Options{})
	assert.ErrorContains(t, err, "create schema")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWrapsDriverError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec("INSERT INTO trades").WillReturnError(errors.New("database is locked"))

	tr := pendingTrade()
	err := s.Create(context.Background(), &tr)
	assert.ErrorContains(t, err, "insert trade T1")
	assert.ErrorContains(t, err, "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRowsAffectedError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectExec("DELETE FROM trades").
		WithArgs("T1").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("rows affected unsupported")))

	err := s.Delete(context.Background(), "T1")
	assert.ErrorContains(t, err, "rows affected unsupported")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListQueryError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("SELECT (.+) FROM trades").WillReturnError(errors.New("no such table"))

	_, err := s.List(context.Background())
	assert.ErrorContains(t, err, "no such table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBadChecklist(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	cols := []string{"id", "symbol", "direction", "entry_price", "stop_loss", "take_profit", "lots", "outcome",
		"realized_pl", "rating", "notes", "checklist", "trade_time", "created_at", "updated_at", "r_multiple", "followed_plan"}
	mock.ExpectQuery("SELECT (.+) FROM trades WHERE id = ?").
		WithArgs("T1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"T1", "EUR/USD", "BUY", 1.1, 0.0, 0.0, 0.1, "PENDING",
			nil, 0, "", "{oops", testNow, testNow, testNow, 0.0, false,
		))

	_, err := s.Get(context.Background(), "T1")
	assert.ErrorContains(t, err, "checklist")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsLoadError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectQuery("FROM settings").WillReturnError(errors.New("corrupt"))

	_, err := s.Settings(context.Background())
	assert.ErrorContains(t, err, "load settings")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalizeAndBookRollsBackOnReadError(t *testing.T) {
	t.Parallel()

	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM settings").WillReturnError(errors.New("corrupt"))
	mock.ExpectRollback()

	_, _, err := s.FinalizeAndBook(context.Background(), "T1", Profit, 10, nil)
	assert.ErrorContains(t, err, "load settings")
	assert.NoError(t, mock.ExpectationsWereMet())
}
