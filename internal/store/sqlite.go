package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/hollis-labs/contacts-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS merge_runs (
	id         TEXT PRIMARY KEY,
	input      TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'running',
	result     TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_merge_runs_status ON merge_runs(status);
CREATE INDEX IF NOT EXISTS idx_merge_runs_created_at ON merge_runs(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateRun(ctx context.Context, input model.RunInput) (*model.MergeRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	inputJSON, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal input")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO merge_runs (id, input, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(inputJSON), string(model.RunStatusRunning), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.MergeRun{
		ID:        id,
		Input:     input,
		Status:    model.RunStatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, result *model.RunResult) error {
	status := model.RunStatusComplete
	if result != nil && result.Error != "" {
		status = model.RunStatusFailed
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal result")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE merge_runs SET result = ?, status = ?, updated_at = ? WHERE id = ?`,
		string(resultJSON), string(status), time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "sqlite: rows affected")
	}
	if n == 0 {
		return eris.Errorf("sqlite: run %s not found", runID)
	}
	return nil
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.MergeRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, input, status, result, created_at, updated_at FROM merge_runs WHERE id = ?`,
		runID,
	)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("sqlite: run %s not found", runID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get run %s", runID)
	}
	return run, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.MergeRun, error) {
	query := `SELECT id, input, status, result, created_at, updated_at FROM merge_runs`
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.MergeRun
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// scanRun decodes one merge_runs row via the given Scan function.
func scanRun(scan func(dest ...any) error) (*model.MergeRun, error) {
	var (
		run        model.MergeRun
		inputJSON  string
		resultJSON sql.NullString
		status     string
	)
	if err := scan(&run.ID, &inputJSON, &status, &resultJSON, &run.CreatedAt, &run.UpdatedAt); err != nil {
		return nil, err
	}
	run.Status = model.RunStatus(status)
	if err := json.Unmarshal([]byte(inputJSON), &run.Input); err != nil {
		return nil, eris.Wrap(err, "decode run input")
	}
	if resultJSON.Valid && resultJSON.String != "" && resultJSON.String != "null" {
		var result model.RunResult
		if err := json.Unmarshal([]byte(resultJSON.String), &result); err != nil {
			return nil, eris.Wrap(err, "decode run result")
		}
		run.Result = &result
	}
	return &run, nil
}
