package main

import (
	"context"
	"fmt"

	"selfmusic/internal/store"
)

// ensureAdminUser creates the administrative account on first start. An
// existing account with the same username is left untouched.
func ensureAdminUser(ctx context.Context, dataStore *store.Store, username, password string) error {
	if err := dataStore.EnsureUser(ctx, username, password, "admin"); err != nil {
		return fmt.Errorf("bootstrap admin user: %w", err)
	}
	return nil
}
