package moods

import (
	"context"

	"selfmusic/internal/store"
)

// Store captures the persistence needs for mood workflows.
type Store interface {
	CreateMood(ctx context.Context, mood store.Mood) (store.Mood, error)
	ListMoods(ctx context.Context) ([]store.Mood, error)
	ListMoodsPage(ctx context.Context, page, limit int) ([]store.Mood, int, error)
	MoodByID(ctx context.Context, id string) (store.Mood, error)
	UpdateMood(ctx context.Context, id string, mood store.Mood) (store.Mood, error)
	DeleteMood(ctx context.Context, id string) error
	SongsByMood(ctx context.Context, moodID string) ([]store.Song, error)
}

// Service coordinates mood-related operations.
type Service interface {
	Create(ctx context.Context, mood store.Mood) (store.Mood, error)
	List(ctx context.Context) ([]store.Mood, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Mood, int, error)
	Get(ctx context.Context, id string) (store.Mood, error)
	Update(ctx context.Context, id string, mood store.Mood) (store.Mood, error)
	Delete(ctx context.Context, id string) error
	Songs(ctx context.Context, id string) ([]store.Song, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, mood store.Mood) (store.Mood, error) {
	if err := ctx.Err(); err != nil {
		return store.Mood{}, err
	}
	return s.store.CreateMood(ctx, mood)
}

func (s *service) List(ctx context.Context) ([]store.Mood, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListMoods(ctx)
}

func (s *service) ListPage(ctx context.Context, page, limit int) ([]store.Mood, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListMoodsPage(ctx, page, limit)
}

func (s *service) Get(ctx context.Context, id string) (store.Mood, error) {
	if err := ctx.Err(); err != nil {
		return store.Mood{}, err
	}
	return s.store.MoodByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, mood store.Mood) (store.Mood, error) {
	if err := ctx.Err(); err != nil {
		return store.Mood{}, err
	}
	return s.store.UpdateMood(ctx, id, mood)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteMood(ctx, id)
}

func (s *service) Songs(ctx context.Context, id string) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SongsByMood(ctx, id)
}
