package main

import (
	"context"

	"github.com/hollis-labs/contacts-cli/internal/store"
)

// initStore opens the configured run-history backend and applies
// migrations.
func initStore(ctx context.Context) (store.Store, error) {
	return store.New(ctx, cfg.Store)
}
