package artists

import (
	"context"

	"selfmusic/internal/store"
)

// Store captures the persistence needs for artist workflows.
type Store interface {
	CreateArtist(ctx context.Context, artist store.Artist) (store.Artist, error)
	ListArtists(ctx context.Context) ([]store.Artist, error)
	ListArtistsPage(ctx context.Context, page, limit int) ([]store.Artist, int, error)
	ArtistByID(ctx context.Context, id string) (store.Artist, error)
	UpdateArtist(ctx context.Context, id string, artist store.Artist) (store.Artist, error)
	DeleteArtist(ctx context.Context, id string) error
	SongsByArtist(ctx context.Context, artistID string) ([]store.Song, error)
	AlbumsByArtist(ctx context.Context, artistID string) ([]store.Album, error)
}

// Service coordinates artist-related operations.
type Service interface {
	Create(ctx context.Context, artist store.Artist) (store.Artist, error)
	List(ctx context.Context) ([]store.Artist, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Artist, int, error)
	Get(ctx context.Context, id string) (store.Artist, error)
	Update(ctx context.Context, id string, artist store.Artist) (store.Artist, error)
	Delete(ctx context.Context, id string) error
	Songs(ctx context.Context, id string) ([]store.Song, error)
	Albums(ctx context.Context, id string) ([]store.Album, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, artist store.Artist) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}
	return s.store.CreateArtist(ctx, artist)
}

func (s *service) List(ctx context.Context) ([]store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListArtists(ctx)
}

func (s *service) ListPage(ctx context.Context, page, limit int) ([]store.Artist, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListArtistsPage(ctx, page, limit)
}

func (s *service) Get(ctx context.Context, id string) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}
	return s.store.ArtistByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, artist store.Artist) (store.Artist, error) {
	if err := ctx.Err(); err != nil {
		return store.Artist{}, err
	}
	return s.store.UpdateArtist(ctx, id, artist)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteArtist(ctx, id)
}

func (s *service) Songs(ctx context.Context, id string) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SongsByArtist(ctx, id)
}

func (s *service) Albums(ctx context.Context, id string) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.AlbumsByArtist(ctx, id)
}
