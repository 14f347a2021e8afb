package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testInput() model.RunInput {
	return model.RunInput{
		GooglePath:  "g.vcf",
		ICloudPath:  "i.vcf",
		GoogleCount: 10,
		ICloudCount: 7,
	}
}

func TestSQLiteStore_CreateAndGetRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, testInput(), got.Input)
	assert.Nil(t, got.Result)
}

func TestSQLiteStore_CompleteRun(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)

	result := &model.RunResult{
		TotalBefore:  17,
		TotalAfter:   14,
		GroupsMerged: 3,
		MasterPath:   "out/master_contacts.vcf",
		LogPath:      "out/merge_log.txt",
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, result))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, result, got.Result)
}

func TestSQLiteStore_CompleteRun_FailureStatus(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, run.ID, &model.RunResult{Error: "both contact sources are empty"}))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
}

func TestSQLiteStore_CompleteRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteRun(context.Background(), "missing", &model.RunResult{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_GetRun_NotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetRun(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	_, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)
	second, err := s.CreateRun(ctx, testInput())
	require.NoError(t, err)
	require.NoError(t, s.CompleteRun(ctx, second.ID, &model.RunResult{TotalBefore: 2, TotalAfter: 2}))

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	completed, err := s.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, second.ID, completed[0].ID)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
