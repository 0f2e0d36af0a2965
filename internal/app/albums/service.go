package albums

import (
	"context"

	"selfmusic/internal/store"
)

// Store captures the persistence needs for album workflows.
type Store interface {
	CreateAlbum(ctx context.Context, album store.Album) (store.Album, error)
	ListAlbums(ctx context.Context) ([]store.Album, error)
	ListAlbumsPage(ctx context.Context, page, limit int) ([]store.Album, int, error)
	AlbumByID(ctx context.Context, id string) (store.Album, error)
	UpdateAlbum(ctx context.Context, id string, album store.Album) (store.Album, error)
	DeleteAlbum(ctx context.Context, id string) error
	SongsByAlbum(ctx context.Context, albumID string) ([]store.Song, error)
}

// Service coordinates album-related operations.
type Service interface {
	Create(ctx context.Context, album store.Album) (store.Album, error)
	List(ctx context.Context) ([]store.Album, error)
	ListPage(ctx context.Context, page, limit int) ([]store.Album, int, error)
	Get(ctx context.Context, id string) (store.Album, error)
	Update(ctx context.Context, id string, album store.Album) (store.Album, error)
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

func (s *service) Create(ctx context.Context, album store.Album) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.CreateAlbum(ctx, album)
}

func (s *service) List(ctx context.Context) ([]store.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListAlbums(ctx)
}

func (s *service) ListPage(ctx context.Context, page, limit int) ([]store.Album, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListAlbumsPage(ctx, page, limit)
}

func (s *service) Get(ctx context.Context, id string) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.AlbumByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, album store.Album) (store.Album, error) {
	if err := ctx.Err(); err != nil {
		return store.Album{}, err
	}
	return s.store.UpdateAlbum(ctx, id, album)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteAlbum(ctx, id)
}

func (s *service) Songs(ctx context.Context, id string) ([]store.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.SongsByAlbum(ctx, id)
}
