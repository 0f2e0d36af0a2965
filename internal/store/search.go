package store

import (
	"context"
	"fmt"
	"strings"
)

// SearchResults groups naive substring matches across the catalog.
type SearchResults struct {
	Songs     []Song     `json:"songs"`
	Artists   []Artist   `json:"artists"`
	Albums    []Album    `json:"albums"`
	Playlists []Playlist `json:"playlists"`
}

const searchLimit = 20

// Search runs a case-insensitive substring match over song titles, artist
// names, album titles and public playlist names.
func (s *Store) Search(ctx context.Context, query string) (SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchResults{
			Songs:     []Song{},
			Artists:   []Artist{},
			Albums:    []Album{},
			Playlists: []Playlist{},
		}, nil
	}
	pattern := "%" + query + "%"

	var results SearchResults

	songs, err := s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE title ILIKE $1
		ORDER BY play_count DESC, created_at DESC
		LIMIT $2
	`, pattern, searchLimit)
	if err != nil {
		return SearchResults{}, err
	}
	results.Songs = songs

	artistRows, err := s.db.QueryContext(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		WHERE name ILIKE $1
		ORDER BY followers DESC, name ASC
		LIMIT $2
	`, pattern, searchLimit)
	if err != nil {
		return SearchResults{}, fmt.Errorf("search artists: %w", err)
	}
	defer artistRows.Close()
	results.Artists, err = scanArtistRows(artistRows)
	if err != nil {
		return SearchResults{}, err
	}

	albumRows, err := s.db.QueryContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE title ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`, pattern, searchLimit)
	if err != nil {
		return SearchResults{}, fmt.Errorf("search albums: %w", err)
	}
	defer albumRows.Close()
	results.Albums, err = scanAlbumRows(albumRows)
	if err != nil {
		return SearchResults{}, err
	}
	if err := s.attachAlbumRelations(ctx, results.Albums); err != nil {
		return SearchResults{}, err
	}

	playlistRows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE is_public = TRUE AND name ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2
	`, pattern, searchLimit)
	if err != nil {
		return SearchResults{}, fmt.Errorf("search playlists: %w", err)
	}
	defer playlistRows.Close()
	results.Playlists, err = scanPlaylistRows(playlistRows)
	if err != nil {
		return SearchResults{}, err
	}

	if results.Songs == nil {
		results.Songs = []Song{}
	}
	if results.Artists == nil {
		results.Artists = []Artist{}
	}
	if results.Albums == nil {
		results.Albums = []Album{}
	}
	if results.Playlists == nil {
		results.Playlists = []Playlist{}
	}
	return results, nil
}
