package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock
// satisfies it in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS merge_runs (
	id         TEXT PRIMARY KEY,
	input      JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_merge_runs_status ON merge_runs(status);
CREATE INDEX IF NOT EXISTS idx_merge_runs_created_at ON merge_runs(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, input model.RunInput) (*model.MergeRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal input")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO merge_runs (id, input, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(inputJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.MergeRun{
		ID:        id,
		Input:     input,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	status := model.RunStatusComplete
	if result != nil && result.Error != "" {
		status = model.RunStatusFailed
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal result")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE merge_runs SET result = $1, status = $2, updated_at = $3 WHERE id = $4`,
		string(resultJSON), string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("postgres: run %s not found", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.MergeRun, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, input, status, result, created_at, updated_at FROM merge_runs WHERE id = $1`,
		runID,
	)

	run, err := scanPgRun(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: get run %s: not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.MergeRun, error) {
	query := `SELECT id, input, status, result, created_at, updated_at FROM merge_runs`
	var args []any
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` WHERE status = $1`
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.MergeRun
	for rows.Next() {
		run, err := scanPgRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}

// scanPgRun decodes one merge_runs row via the given Scan function.
func scanPgRun(scan func(dest ...any) error) (*model.MergeRun, error) {
	var (
		run        model.MergeRun
		inputJSON  []byte
		resultJSON []byte
		status     string
	)
	if err := scan(&run.ID, &inputJSON, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	if err := json.Unmarshal(inputJSON, &run.Input); err != nil {
		return nil, eris.Wrap(err, "decode run input")
	}
	if len(resultJSON) > 0 && string(resultJSON) != "null" {
		var result model.RunResult
		if err := json.Unmarshal(resultJSON, &result); err != nil {
			return nil, eris.Wrap(err, "decode run result")
		}
		run.Result = &result
	}
	return &run, nil
}
