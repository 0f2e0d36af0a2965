package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const maxImportBioLength = 500

// ImportArtistInfo describes an external artist. Followers arrives as a
// possibly comma-formatted string ("1,234,567") from scraped sources.
type ImportArtistInfo struct {
	Name      string   `json:"name"`
	Bio       string   `json:"bio,omitempty"`
	Avatar    string   `json:"avatar,omitempty"`
	Followers string   `json:"followers,omitempty"`
	Genres    []string `json:"genres,omitempty"`
}

// ImportAlbumInfo describes the external album a song belongs to.
type ImportAlbumInfo struct {
	Title       string `json:"title"`
	CoverURL    string `json:"coverUrl,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Genre       string `json:"genre,omitempty"`
}

// ImportSongInfo describes the external song itself.
type ImportSongInfo struct {
	Title    string   `json:"title"`
	Duration int      `json:"duration,omitempty"`
	CoverURL string   `json:"coverUrl,omitempty"`
	Genre    string   `json:"genre,omitempty"`
	MoodIDs  []string `json:"moodIds,omitempty"`
}

// ImportItem is one unit of a batch import request.
type ImportItem struct {
	Song         ImportSongInfo     `json:"songInfo"`
	Album        *ImportAlbumInfo   `json:"albumInfo,omitempty"`
	Artists      []ImportArtistInfo `json:"artistsInfo"`
	Lyrics       string             `json:"lyrics,omitempty"`
	AudioURL     string             `json:"audioUrl,omitempty"`
	SkipIfExists bool               `json:"skipIfExists"`
}

// ImportItemResult records the outcome of a single item.
type ImportItemResult struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
	Status string `json:"status"`
	SongID string `json:"songId,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// ImportSummary aggregates a whole batch.
type ImportSummary struct {
	Imported int                `json:"imported"`
	Skipped  int                `json:"skipped"`
	Results  []ImportItemResult `json:"results"`
	Errors   []string           `json:"errors"`
}

// SongKey identifies a song by title and credited artist name.
type SongKey struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// ExistsResult reports whether a key already resolves to a catalog song.
type ExistsResult struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Exists bool   `json:"exists"`
	SongID string `json:"songId,omitempty"`
}

// parseFollowers turns a scraped follower count like "1,234,567" into an int,
// defaulting to 0 when it does not parse.
func parseFollowers(raw string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if cleaned == "" {
		return 0
	}
	n, err := strconv.Atoi(cleaned)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// truncateRunes caps a string at n runes without splitting a character.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// CheckExists resolves (title, artist-name) pairs against the catalog without
// mutating anything.
func (s *Store) CheckExists(ctx context.Context, keys []SongKey) ([]ExistsResult, error) {
	results := make([]ExistsResult, 0, len(keys))
	for _, key := range keys {
		result := ExistsResult{Title: key.Title, Artist: key.Artist}
		var songID string
		err := s.db.QueryRowContext(ctx, `
			SELECT s.id
			FROM songs s
			JOIN artists a ON s.artist_id = a.id
			WHERE s.title = $1 AND a.name = $2
			LIMIT 1
		`, key.Title, key.Artist).Scan(&songID)
		switch {
		case err == nil:
			result.Exists = true
			result.SongID = songID
		case errors.Is(err, sql.ErrNoRows):
			// leave Exists false
		default:
			return nil, fmt.Errorf("check song exists: %w", err)
		}
		results = append(results, result)
	}
	return results, nil
}

// ImportBatch reconciles external descriptors against the catalog. Items are
// processed independently, each in its own transaction, so one failure never
// aborts its siblings; the summary carries every per-item outcome.
func (s *Store) ImportBatch(ctx context.Context, items []ImportItem) ImportSummary {
	summary := ImportSummary{
		Results: make([]ImportItemResult, 0, len(items)),
		Errors:  []string{},
	}

	for _, item := range items {
		result := s.importItem(ctx, item)
		switch result.Status {
		case "imported":
			summary.Imported++
		case "skipped":
			summary.Skipped++
		case "error":
			summary.Errors = append(summary.Errors, fmt.Sprintf("%s: %s", result.Title, result.Reason))
		}
		summary.Results = append(summary.Results, result)
	}
	return summary
}

func (s *Store) importItem(ctx context.Context, item ImportItem) ImportItemResult {
	result := ImportItemResult{Title: item.Song.Title}
	if len(item.Artists) > 0 {
		result.Artist = item.Artists[0].Name
	}

	if strings.TrimSpace(item.Song.Title) == "" {
		result.Status = "error"
		result.Reason = "song title is required"
		return result
	}
	if len(item.Artists) == 0 || strings.TrimSpace(item.Artists[0].Name) == "" {
		result.Status = "error"
		result.Reason = "at least one artist is required"
		return result
	}

	if item.SkipIfExists {
		existing, err := s.CheckExists(ctx, []SongKey{{Title: item.Song.Title, Artist: item.Artists[0].Name}})
		if err != nil {
			result.Status = "error"
			result.Reason = err.Error()
			return result
		}
		if existing[0].Exists {
			result.Status = "skipped"
			result.SongID = existing[0].SongID
			return result
		}
	}

	songID, err := s.importItemTx(ctx, item)
	if err != nil {
		result.Status = "error"
		result.Reason = err.Error()
		return result
	}
	result.Status = "imported"
	result.SongID = songID
	return result
}

// importItemTx creates the artists, album and song for one item inside a
// single transaction.
func (s *Store) importItemTx(ctx context.Context, item ImportItem) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()

	// Reuse or create every listed artist, in order. The first becomes the
	// primary credit for both the song and any created album.
	artistIDs := make([]string, 0, len(item.Artists))
	for _, info := range item.Artists {
		name := strings.TrimSpace(info.Name)
		if name == "" {
			continue
		}
		id, err := s.reuseOrCreateArtistTx(ctx, tx, info, name, now)
		if err != nil {
			return "", err
		}
		artistIDs = append(artistIDs, id)
	}
	artistIDs = dedupe(artistIDs)
	primary := artistIDs[0]

	albumID := ""
	if item.Album != nil && strings.TrimSpace(item.Album.Title) != "" {
		albumID, err = s.reuseOrCreateAlbumTx(ctx, tx, *item.Album, artistIDs, primary, now)
		if err != nil {
			return "", err
		}
	}

	songID := uuid.NewString()
	moodIDs := item.Song.MoodIDs
	if moodIDs == nil {
		moodIDs = []string{}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist_id, album_id, duration, audio_url, cover_url, lyrics, mood_ids, play_count, liked, genre, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, FALSE, $10, $11, $12)
	`, songID, strings.TrimSpace(item.Song.Title), primary, nullIfEmpty(albumID), item.Song.Duration,
		nullIfEmpty(item.AudioURL), nullIfEmpty(item.Song.CoverURL), nullIfEmpty(item.Lyrics),
		pq.Array(moodIDs), nullIfEmpty(item.Song.Genre), now, now); err != nil {
		return "", fmt.Errorf("insert song: %w", err)
	}

	if err := s.setEntityArtistsTx(ctx, tx, songArtistLinks, songID, artistIDs, primary); err != nil {
		return "", err
	}
	if albumID != "" {
		if err := bumpAlbumSongCountTx(ctx, tx, albumID, +1); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return songID, nil
}

func (s *Store) reuseOrCreateArtistTx(ctx context.Context, tx *sql.Tx, info ImportArtistInfo, name string, now time.Time) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM artists WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup artist: %w", err)
	}

	id = uuid.NewString()
	genres := info.Genres
	if genres == nil {
		genres = []string{}
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO artists (id, name, bio, avatar, cover_url, followers, song_count, album_count, genres, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULL, $5, 0, 0, $6, FALSE, $7, $8)
	`, id, name, nullIfEmpty(truncateRunes(info.Bio, maxImportBioLength)), nullIfEmpty(info.Avatar),
		parseFollowers(info.Followers), pq.Array(genres), now, now); err != nil {
		return "", fmt.Errorf("insert artist: %w", err)
	}
	return id, nil
}

func (s *Store) reuseOrCreateAlbumTx(ctx context.Context, tx *sql.Tx, info ImportAlbumInfo, artistIDs []string, primary string, now time.Time) (string, error) {
	title := strings.TrimSpace(info.Title)

	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM albums WHERE title = $1 AND artist_id = $2`, title, primary).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("lookup album: %w", err)
	}

	id = uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO albums (id, title, artist_id, cover_url, release_date, song_count, duration, genre, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 0, 0, $6, NULL, $7, $8)
	`, id, title, primary, nullIfEmpty(info.CoverURL), nullIfEmpty(info.ReleaseDate),
		nullIfEmpty(info.Genre), now, now); err != nil {
		return "", fmt.Errorf("insert album: %w", err)
	}

	if err := s.setEntityArtistsTx(ctx, tx, albumArtistLinks, id, artistIDs, primary); err != nil {
		return "", err
	}
	return id, nil
}
