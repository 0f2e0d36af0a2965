package importer

import (
	"context"

	"selfmusic/internal/store"
)

// Store captures the persistence needs for batch imports.
type Store interface {
	CheckExists(ctx context.Context, keys []store.SongKey) ([]store.ExistsResult, error)
	ImportBatch(ctx context.Context, items []store.ImportItem) store.ImportSummary
}

// Service exposes the import reconciliation workflows.
type Service interface {
	CheckExists(ctx context.Context, keys []store.SongKey) ([]store.ExistsResult, error)
	ImportBatch(ctx context.Context, items []store.ImportItem) (store.ImportSummary, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) CheckExists(ctx context.Context, keys []store.SongKey) ([]store.ExistsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.CheckExists(ctx, keys)
}

func (s *service) ImportBatch(ctx context.Context, items []store.ImportItem) (store.ImportSummary, error) {
	if err := ctx.Err(); err != nil {
		return store.ImportSummary{}, err
	}
	return s.store.ImportBatch(ctx, items), nil
}
