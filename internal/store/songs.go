package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Song models a track. ArtistID is the primary credited artist; the full
// credit set lives in song_artists. ArtistIDs is a request-only field, while
// ArtistName, AlbumTitle and Artists are filled in on reads.
type Song struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	ArtistID   string         `json:"artistId"`
	ArtistName string         `json:"artistName,omitempty"`
	AlbumID    string         `json:"albumId,omitempty"`
	AlbumTitle string         `json:"albumTitle,omitempty"`
	Duration   int            `json:"duration"`
	AudioURL   string         `json:"audioUrl,omitempty"`
	CoverURL   string         `json:"coverUrl,omitempty"`
	Lyrics     string         `json:"lyrics,omitempty"`
	MoodIDs    []string       `json:"moodIds"`
	PlayCount  int            `json:"playCount"`
	Liked      bool           `json:"liked"`
	Genre      string         `json:"genre,omitempty"`
	ArtistIDs  []string       `json:"artistIds,omitempty"`
	Artists    []ArtistCredit `json:"artists,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

const songColumns = `id, title, artist_id, album_id, duration, audio_url, cover_url, lyrics, mood_ids, play_count, liked, genre, created_at, updated_at`

func scanSongFields(sc rowScanner, s *Song) error {
	var albumID, audioURL, coverURL, lyrics, genre sql.NullString
	if err := sc.Scan(&s.ID, &s.Title, &s.ArtistID, &albumID, &s.Duration,
		&audioURL, &coverURL, &lyrics, pq.Array(&s.MoodIDs),
		&s.PlayCount, &s.Liked, &genre, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("scan song: %w", err)
	}
	s.AlbumID = albumID.String
	s.AudioURL = audioURL.String
	s.CoverURL = coverURL.String
	s.Lyrics = lyrics.String
	s.Genre = genre.String
	return nil
}

func scanSongRows(rows *sql.Rows) ([]Song, error) {
	var songs []Song
	for rows.Next() {
		var s Song
		if err := scanSongFields(rows, &s); err != nil {
			return nil, err
		}
		songs = append(songs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}
	return songs, nil
}

// checkAlbumTx verifies the referenced album exists inside the transaction.
func checkAlbumTx(ctx context.Context, tx *sql.Tx, albumID string) error {
	var exists int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM albums WHERE id = $1`, albumID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: album %s not found", ErrInvalidInput, albumID)
	}
	if err != nil {
		return fmt.Errorf("check album: %w", err)
	}
	return nil
}

func bumpAlbumSongCountTx(ctx context.Context, tx *sql.Tx, albumID string, delta int) error {
	var query string
	if delta > 0 {
		query = `UPDATE albums SET song_count = song_count + 1 WHERE id = $1`
	} else {
		query = `UPDATE albums SET song_count = GREATEST(song_count - 1, 0) WHERE id = $1`
	}
	if _, err := tx.ExecContext(ctx, query, albumID); err != nil {
		return fmt.Errorf("adjust album song count: %w", err)
	}
	return nil
}

// CreateSong inserts a song, links its artist credits and bumps the parent
// album's song count, all in one transaction. A failed artist reference
// leaves no song row behind.
func (s *Store) CreateSong(ctx context.Context, song Song) (Song, error) {
	song.Title = strings.TrimSpace(song.Title)
	if song.Title == "" {
		return Song{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	ids, primary, err := creditSet(song.ArtistIDs, song.ArtistID)
	if err != nil {
		return Song{}, err
	}
	if song.MoodIDs == nil {
		song.MoodIDs = []string{}
	}

	song.ID = uuid.NewString()
	song.ArtistID = primary
	now := time.Now().UTC()
	song.CreatedAt = now
	song.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if song.AlbumID != "" {
		if err := checkAlbumTx(ctx, tx, song.AlbumID); err != nil {
			return Song{}, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO songs (id, title, artist_id, album_id, duration, audio_url, cover_url, lyrics, mood_ids, play_count, liked, genre, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, song.ID, song.Title, primary, nullIfEmpty(song.AlbumID), song.Duration,
		nullIfEmpty(song.AudioURL), nullIfEmpty(song.CoverURL), nullIfEmpty(song.Lyrics),
		pq.Array(song.MoodIDs), song.PlayCount, song.Liked, nullIfEmpty(song.Genre), now, now); err != nil {
		// The album is checked above, so a rejected reference is the primary
		// artist.
		if isForeignKeyViolation(err) {
			return Song{}, fmt.Errorf("%w: artist %s not found", ErrInvalidInput, primary)
		}
		return Song{}, fmt.Errorf("insert song: %w", err)
	}

	if err := s.setEntityArtistsTx(ctx, tx, songArtistLinks, song.ID, ids, primary); err != nil {
		return Song{}, err
	}

	if song.AlbumID != "" {
		if err := bumpAlbumSongCountTx(ctx, tx, song.AlbumID, +1); err != nil {
			return Song{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	song.ArtistIDs = nil
	songs := []Song{song}
	if err := s.attachSongRelations(ctx, songs); err != nil {
		return Song{}, err
	}
	return songs[0], nil
}

// ListSongs returns every song, newest first, with relations attached.
func (s *Store) ListSongs(ctx context.Context) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	songs, err := scanSongRows(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachSongRelations(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// ListSongsPage returns a page of songs, newest first, with the total count.
func (s *Store) ListSongsPage(ctx context.Context, page, limit int) ([]Song, int, error) {
	_, limit, offset := pageWindow(page, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count songs: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	songs, err := scanSongRows(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachSongRelations(ctx, songs); err != nil {
		return nil, 0, err
	}
	return songs, total, nil
}

// SongByID returns a single song with relations attached.
func (s *Store) SongByID(ctx context.Context, id string) (Song, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = $1
	`, id)

	var song Song
	if err := scanSongFields(row, &song); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, err
	}

	songs := []Song{song}
	if err := s.attachSongRelations(ctx, songs); err != nil {
		return Song{}, err
	}
	return songs[0], nil
}

// SongsByArtist returns every song the artist is credited on, newest first.
func (s *Store) SongsByArtist(ctx context.Context, artistID string) ([]Song, error) {
	if _, err := s.ArtistByID(ctx, artistID); err != nil {
		return nil, err
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id IN (SELECT song_id FROM song_artists WHERE artist_id = $1)
		ORDER BY created_at DESC
	`, artistID)
}

// SongsByAlbum returns the songs of an album, newest first.
func (s *Store) SongsByAlbum(ctx context.Context, albumID string) ([]Song, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM albums WHERE id = $1`, albumID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAlbumNotFound
		}
		return nil, fmt.Errorf("check album: %w", err)
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE album_id = $1
		ORDER BY created_at DESC
	`, albumID)
}

// SongsByMood returns the songs tagged with a mood, newest first.
func (s *Store) SongsByMood(ctx context.Context, moodID string) ([]Song, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM moods WHERE id = $1`, moodID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMoodNotFound
		}
		return nil, fmt.Errorf("check mood: %w", err)
	}
	return s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE $1 = ANY(mood_ids)
		ORDER BY created_at DESC
	`, moodID)
}

func (s *Store) querySongs(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select songs: %w", err)
	}
	defer rows.Close()

	songs, err := scanSongRows(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachSongRelations(ctx, songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// UpdateSong replaces the song's mutable fields, re-synchronizes its artist
// credits and moves the album song count when the song changes album.
func (s *Store) UpdateSong(ctx context.Context, id string, song Song) (Song, error) {
	song.Title = strings.TrimSpace(song.Title)
	if song.Title == "" {
		return Song{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	ids, primary, err := creditSet(song.ArtistIDs, song.ArtistID)
	if err != nil {
		return Song{}, err
	}
	if song.MoodIDs == nil {
		song.MoodIDs = []string{}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Song{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var prevAlbum sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT album_id FROM songs WHERE id = $1`, id).Scan(&prevAlbum); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Song{}, ErrSongNotFound
		}
		return Song{}, fmt.Errorf("lookup song: %w", err)
	}

	if song.AlbumID != "" && song.AlbumID != prevAlbum.String {
		if err := checkAlbumTx(ctx, tx, song.AlbumID); err != nil {
			return Song{}, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE songs
		SET title = $1, artist_id = $2, album_id = $3, duration = $4, audio_url = $5, cover_url = $6, lyrics = $7, mood_ids = $8, play_count = $9, liked = $10, genre = $11, updated_at = $12
		WHERE id = $13
	`, song.Title, primary, nullIfEmpty(song.AlbumID), song.Duration,
		nullIfEmpty(song.AudioURL), nullIfEmpty(song.CoverURL), nullIfEmpty(song.Lyrics),
		pq.Array(song.MoodIDs), song.PlayCount, song.Liked, nullIfEmpty(song.Genre),
		time.Now().UTC(), id); err != nil {
		if isForeignKeyViolation(err) {
			return Song{}, fmt.Errorf("%w: artist %s not found", ErrInvalidInput, primary)
		}
		return Song{}, fmt.Errorf("update song: %w", err)
	}

	if err := s.setEntityArtistsTx(ctx, tx, songArtistLinks, id, ids, primary); err != nil {
		return Song{}, err
	}

	if prevAlbum.String != song.AlbumID {
		if prevAlbum.Valid && prevAlbum.String != "" {
			if err := bumpAlbumSongCountTx(ctx, tx, prevAlbum.String, -1); err != nil {
				return Song{}, err
			}
		}
		if song.AlbumID != "" {
			if err := bumpAlbumSongCountTx(ctx, tx, song.AlbumID, +1); err != nil {
				return Song{}, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Song{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return s.SongByID(ctx, id)
}

// DeleteSong removes a song, decrementing the counters of its credited
// artists and its parent album's song count.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var albumID sql.NullString
	if err := tx.QueryRowContext(ctx, `SELECT album_id FROM songs WHERE id = $1`, id).Scan(&albumID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrSongNotFound
		}
		return fmt.Errorf("lookup song: %w", err)
	}

	if err := s.clearEntityArtistsTx(ctx, tx, songArtistLinks, id); err != nil {
		return err
	}
	if albumID.Valid && albumID.String != "" {
		if err := bumpAlbumSongCountTx(ctx, tx, albumID.String, -1); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete song: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}

// BumpPlayCount records one playback of a song.
func (s *Store) BumpPlayCount(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE songs SET play_count = play_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("bump play count: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrSongNotFound
	}
	return nil
}

// attachSongRelations fills in artist credits, the primary artist name and
// the parent album title, row by row.
func (s *Store) attachSongRelations(ctx context.Context, songs []Song) error {
	for i := range songs {
		credits, err := s.SongArtists(ctx, songs[i].ID)
		if err != nil {
			return err
		}
		songs[i].Artists = credits
		if primary := primaryCredit(credits); primary != nil {
			songs[i].ArtistName = primary.Name
		}
		if songs[i].AlbumID != "" {
			var title string
			err := s.db.QueryRowContext(ctx, `SELECT title FROM albums WHERE id = $1`, songs[i].AlbumID).Scan(&title)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lookup album title: %w", err)
			}
			songs[i].AlbumTitle = title
		}
	}
	return nil
}
