package discovery

import (
	"context"

	"selfmusic/internal/store"
)

// Store captures the persistence needs for search and discovery.
type Store interface {
	Search(ctx context.Context, query string) (store.SearchResults, error)
	SimilarSongs(ctx context.Context, songID string, limit int) ([]store.Song, error)
	Recommendations(ctx context.Context, filter store.RecommendationFilter) ([]store.Song, error)
	TrendingSongs(ctx context.Context, limit int) ([]store.Song, error)
	HotSongs(ctx context.Context, limit int) ([]store.Song, error)
	NewSongs(ctx context.Context, limit int) ([]store.Song, error)
}

// Service exposes the read-only browse surface.
type Service interface {
	Search(ctx context.Context, query string) (store.SearchResults, error)
	Similar(ctx context.Context, songID string, limit int) ([]store.Song, error)
	Recommendations(ctx context.Context, filter store.RecommendationFilter) ([]store.Song, error)
	Trending(ctx context.Context, limit int) ([]store.Song, error)
	Hot(ctx context.Context, limit int) ([]store.Song, error)
	New(ctx context.Context, limit int) ([]store.Song, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Search(ctx context.Context, query string) (store.SearchResults, error) {
	if err := ctx.Err(); err != nil {
		return store.SearchResults{}, err
	}
	return s.store.Search(ctx, query)
}

func (s *service) Similar(ctx context.Context, songID string, limit int) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SimilarSongs(ctx, songID, limit)
}

func (s *service) Recommendations(ctx context.Context, filter store.RecommendationFilter) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Recommendations(ctx, filter)
}

func (s *service) Trending(ctx context.Context, limit int) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.TrendingSongs(ctx, limit)
}

func (s *service) Hot(ctx context.Context, limit int) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.HotSongs(ctx, limit)
}

func (s *service) New(ctx context.Context, limit int) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.NewSongs(ctx, limit)
}
