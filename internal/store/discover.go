package store

import (
	"context"

	"github.com/lib/pq"
)

const discoverLimit = 20

// RecommendationFilter narrows the recommendation pool. Zero values mean no
// constraint on that axis.
type RecommendationFilter struct {
	Type     string
	MoodID   string
	ArtistID string
	Genre    string
	Limit    int
}

// SimilarSongs returns songs sharing an artist, genre or mood with the given
// song, most played first.
func (s *Store) SimilarSongs(ctx context.Context, songID string, limit int) ([]Song, error) {
	song, err := s.SongByID(ctx, songID)
	if err != nil {
		return nil, err
	}
	if limit < 1 || limit > 100 {
		limit = discoverLimit
	}

	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id <> $1
		  AND (artist_id = $2
		       OR ($3 <> '' AND genre = $3)
		       OR mood_ids && $4
		       OR id IN (SELECT song_id FROM song_artists WHERE artist_id = $2))
		ORDER BY play_count DESC, created_at DESC
		LIMIT $5
	`, song.ID, song.ArtistID, song.Genre, pq.Array(song.MoodIDs), limit)
}

// Recommendations returns a filtered pool of songs. Type picks the ordering:
// "trending" and "hot" favor play counts, "new" favors recency, anything else
// is a random sample.
func (s *Store) Recommendations(ctx context.Context, filter RecommendationFilter) ([]Song, error) {
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = discoverLimit
	}

	var order string
	switch filter.Type {
	case "trending", "hot":
		order = "play_count DESC, created_at DESC"
	case "new":
		order = "created_at DESC"
	default:
		order = "RANDOM()"
	}

	query := `
		SELECT ` + songColumns + `
		FROM songs
		WHERE ($1 = '' OR $1 = ANY(mood_ids))
		  AND ($2 = '' OR artist_id = $2 OR id IN (SELECT song_id FROM song_artists WHERE artist_id = $2))
		  AND ($3 = '' OR genre = $3)
		ORDER BY ` + order + `
		LIMIT $4`

	return s.querySongs(ctx, query, filter.MoodID, filter.ArtistID, filter.Genre, limit)
}

// TrendingSongs returns the most played songs.
func (s *Store) TrendingSongs(ctx context.Context, limit int) ([]Song, error) {
	if limit < 1 || limit > 100 {
		limit = discoverLimit
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY play_count DESC, created_at DESC
		LIMIT $1
	`, limit)
}

// HotSongs returns recently added songs that are already being played.
func (s *Store) HotSongs(ctx context.Context, limit int) ([]Song, error) {
	if limit < 1 || limit > 100 {
		limit = discoverLimit
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE created_at > NOW() - INTERVAL '30 days'
		ORDER BY play_count DESC, created_at DESC
		LIMIT $1
	`, limit)
}

// NewSongs returns the latest additions to the catalog.
func (s *Store) NewSongs(ctx context.Context, limit int) ([]Song, error) {
	if limit < 1 || limit > 100 {
		limit = discoverLimit
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
}
