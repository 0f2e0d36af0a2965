package playlists

import (
	"context"

	"selfmusic/internal/store"
)

// Store captures the persistence needs for playlist workflows.
type Store interface {
	CreatePlaylist(ctx context.Context, playlist store.Playlist) (store.Playlist, error)
	ListPlaylists(ctx context.Context) ([]store.Playlist, error)
	ListPublicPlaylistsPage(ctx context.Context, page, limit int) ([]store.Playlist, int, error)
	PlaylistByID(ctx context.Context, id string) (store.Playlist, error)
	UpdatePlaylist(ctx context.Context, id string, playlist store.Playlist) (store.Playlist, error)
	DeletePlaylist(ctx context.Context, id string) error
	AddPlaylistSong(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	RemovePlaylistSong(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	ReorderPlaylist(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error)
}

// Service coordinates playlist-related operations.
type Service interface {
	Create(ctx context.Context, playlist store.Playlist) (store.Playlist, error)
	List(ctx context.Context) ([]store.Playlist, error)
	ListPublicPage(ctx context.Context, page, limit int) ([]store.Playlist, int, error)
	Get(ctx context.Context, id string) (store.Playlist, error)
	Update(ctx context.Context, id string, playlist store.Playlist) (store.Playlist, error)
	Delete(ctx context.Context, id string) error
	AddSong(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	RemoveSong(ctx context.Context, playlistID, songID string) (store.Playlist, error)
	Reorder(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error)
}

type service struct {
	store Store
}

// New constructs a Service backed by the provided Store.
func New(store Store) Service {
	return &service{store: store}
}

func (s *service) Create(ctx context.Context, playlist store.Playlist) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.CreatePlaylist(ctx, playlist)
}

func (s *service) List(ctx context.Context) ([]store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListPlaylists(ctx)
}

func (s *service) ListPublicPage(ctx context.Context, page, limit int) ([]store.Playlist, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	return s.store.ListPublicPlaylistsPage(ctx, page, limit)
}

func (s *service) Get(ctx context.Context, id string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.PlaylistByID(ctx, id)
}

func (s *service) Update(ctx context.Context, id string, playlist store.Playlist) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.UpdatePlaylist(ctx, id, playlist)
}

func (s *service) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeletePlaylist(ctx, id)
}

func (s *service) AddSong(ctx context.Context, playlistID, songID string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.AddPlaylistSong(ctx, playlistID, songID)
}

func (s *service) RemoveSong(ctx context.Context, playlistID, songID string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.RemovePlaylistSong(ctx, playlistID, songID)
}

func (s *service) Reorder(ctx context.Context, playlistID string, songIDs []string) (store.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return store.Playlist{}, err
	}
	return s.store.ReorderPlaylist(ctx, playlistID, songIDs)
}
