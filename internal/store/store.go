// Package store persists merge-run history. SQLite is the default
// backend; Postgres is available for shared deployments.
package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/hollis-labs/contacts-cli/internal/config"
	"github.com/hollis-labs/contacts-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for run history.
type Store interface {
	CreateRun(ctx context.Context, input model.RunInput) (*model.MergeRun, error)
	CompleteRun(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.MergeRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.MergeRun, error)

	Migrate(ctx context.Context) error
	Close() error
}

// New opens the store configured by cfg and runs migrations.
func New(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case "sqlite", "":
		s, err = NewSQLite(cfg.DatabaseURL)
	case "postgres":
		s, err = NewPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}
