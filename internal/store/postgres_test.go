package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO merge_runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), string(model.RunStatusRunning), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), testInput())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE merge_runs SET result = \$1, status = \$2, updated_at = \$3 WHERE id = \$4`).
		WithArgs(pgxmock.AnyArg(), string(model.RunStatusComplete), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", &model.RunResult{TotalBefore: 3, TotalAfter: 2})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_CompleteRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE merge_runs`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "missing", &model.RunResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	input, err := json.Marshal(testInput())
	require.NoError(t, err)
	result, err := json.Marshal(&model.RunResult{TotalBefore: 17, TotalAfter: 14})
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, input, status, result, created_at, updated_at FROM merge_runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "input", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", input, string(model.RunStatusComplete), result, now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)
	assert.Equal(t, testInput(), run.Input)
	require.NotNil(t, run.Result)
	assert.Equal(t, 14, run.Result.TotalAfter)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, input, status, result, created_at, updated_at FROM merge_runs WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get run")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	input, err := json.Marshal(testInput())
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, input, status, result, created_at, updated_at FROM merge_runs WHERE status = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs(string(model.RunStatusComplete), 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "input", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", input, string(model.RunStatusComplete), []byte(nil), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Nil(t, runs[0].Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}
