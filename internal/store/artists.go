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

// Artist models a performer in the catalog. SongCount and AlbumCount are
// denormalized counters maintained on every association change, never
// recomputed at read time.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Bio        string    `json:"bio,omitempty"`
	Avatar     string    `json:"avatar,omitempty"`
	CoverURL   string    `json:"coverUrl,omitempty"`
	Followers  int       `json:"followers"`
	SongCount  int       `json:"songCount"`
	AlbumCount int       `json:"albumCount"`
	Genres     []string  `json:"genres"`
	Verified   bool      `json:"verified"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

const artistColumns = `id, name, bio, avatar, cover_url, followers, song_count, album_count, genres, verified, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtistFields(sc rowScanner, a *Artist, extra ...any) error {
	var bio, avatar, coverURL sql.NullString
	dest := []any{
		&a.ID, &a.Name, &bio, &avatar, &coverURL,
		&a.Followers, &a.SongCount, &a.AlbumCount,
		pq.Array(&a.Genres), &a.Verified, &a.CreatedAt, &a.UpdatedAt,
	}
	dest = append(dest, extra...)
	if err := sc.Scan(dest...); err != nil {
		return fmt.Errorf("scan artist: %w", err)
	}
	a.Bio = bio.String
	a.Avatar = avatar.String
	a.CoverURL = coverURL.String
	return nil
}

func scanArtistRows(rows *sql.Rows) ([]Artist, error) {
	var artists []Artist
	for rows.Next() {
		var a Artist
		if err := scanArtistFields(rows, &a); err != nil {
			return nil, err
		}
		artists = append(artists, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}
	return artists, nil
}

// CreateArtist inserts a new artist with a generated id.
func (s *Store) CreateArtist(ctx context.Context, artist Artist) (Artist, error) {
	artist.Name = strings.TrimSpace(artist.Name)
	if artist.Name == "" {
		return Artist{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if artist.Genres == nil {
		artist.Genres = []string{}
	}

	artist.ID = uuid.NewString()
	now := time.Now().UTC()
	artist.CreatedAt = now
	artist.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO artists (id, name, bio, avatar, cover_url, followers, song_count, album_count, genres, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, artist.ID, artist.Name, nullIfEmpty(artist.Bio), nullIfEmpty(artist.Avatar), nullIfEmpty(artist.CoverURL),
		artist.Followers, 0, 0, pq.Array(artist.Genres), artist.Verified, now, now); err != nil {
		if isUniqueViolation(err) {
			return Artist{}, fmt.Errorf("%w: artist name already exists", ErrNameTaken)
		}
		return Artist{}, fmt.Errorf("insert artist: %w", err)
	}

	artist.SongCount = 0
	artist.AlbumCount = 0
	return artist, nil
}

// ListArtists returns every artist, newest first.
func (s *Store) ListArtists(ctx context.Context) ([]Artist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()
	return scanArtistRows(rows)
}

// ListArtistsPage returns a page of artists, newest first, with the total count.
func (s *Store) ListArtistsPage(ctx context.Context, page, limit int) ([]Artist, int, error) {
	_, limit, offset := pageWindow(page, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artists`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count artists: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select artists: %w", err)
	}
	defer rows.Close()

	artists, err := scanArtistRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return artists, total, nil
}

// ArtistByID returns a single artist.
func (s *Store) ArtistByID(ctx context.Context, id string) (Artist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+artistColumns+`
		FROM artists
		WHERE id = $1
	`, id)

	var a Artist
	if err := scanArtistFields(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Artist{}, ErrArtistNotFound
		}
		return Artist{}, err
	}
	return a, nil
}

// UpdateArtist replaces the mutable fields of an artist. The derived
// song_count/album_count columns are left to the association bookkeeping.
func (s *Store) UpdateArtist(ctx context.Context, id string, artist Artist) (Artist, error) {
	artist.Name = strings.TrimSpace(artist.Name)
	if artist.Name == "" {
		return Artist{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if artist.Genres == nil {
		artist.Genres = []string{}
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE artists
		SET name = $1, bio = $2, avatar = $3, cover_url = $4, followers = $5, genres = $6, verified = $7, updated_at = $8
		WHERE id = $9
	`, artist.Name, nullIfEmpty(artist.Bio), nullIfEmpty(artist.Avatar), nullIfEmpty(artist.CoverURL),
		artist.Followers, pq.Array(artist.Genres), artist.Verified, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return Artist{}, fmt.Errorf("%w: artist name already exists", ErrNameTaken)
		}
		return Artist{}, fmt.Errorf("update artist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Artist{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Artist{}, ErrArtistNotFound
	}

	return s.ArtistByID(ctx, id)
}

// DeleteArtist removes an artist. Albums and songs whose primary artist this
// is are cascade-deleted by the schema, so the counters of every co-credited
// artist and the song counts of surviving parent albums are adjusted here
// first; the FK cascade cannot do that bookkeeping.
func (s *Store) DeleteArtist(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM artists WHERE id = $1`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrArtistNotFound
		}
		return fmt.Errorf("check artist: %w", err)
	}

	// Songs that will cascade away with this artist.
	type doomedSong struct {
		id      string
		albumID sql.NullString
	}
	rows, err := tx.QueryContext(ctx, `SELECT id, album_id FROM songs WHERE artist_id = $1`, id)
	if err != nil {
		return fmt.Errorf("select dependent songs: %w", err)
	}
	var doomed []doomedSong
	for rows.Next() {
		var d doomedSong
		if err := rows.Scan(&d.id, &d.albumID); err != nil {
			rows.Close()
			return fmt.Errorf("scan dependent song: %w", err)
		}
		doomed = append(doomed, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate dependent songs: %w", err)
	}

	for _, d := range doomed {
		if err := s.clearEntityArtistsTx(ctx, tx, songArtistLinks, d.id); err != nil {
			return err
		}
		if d.albumID.Valid {
			if _, err := tx.ExecContext(ctx, `
				UPDATE albums SET song_count = GREATEST(song_count - 1, 0) WHERE id = $1
			`, d.albumID.String); err != nil {
				return fmt.Errorf("adjust album song count: %w", err)
			}
		}
	}

	// Albums that will cascade away with this artist.
	albumRows, err := tx.QueryContext(ctx, `SELECT id FROM albums WHERE artist_id = $1`, id)
	if err != nil {
		return fmt.Errorf("select dependent albums: %w", err)
	}
	var albumIDs []string
	for albumRows.Next() {
		var albumID string
		if err := albumRows.Scan(&albumID); err != nil {
			albumRows.Close()
			return fmt.Errorf("scan dependent album: %w", err)
		}
		albumIDs = append(albumIDs, albumID)
	}
	albumRows.Close()
	if err := albumRows.Err(); err != nil {
		return fmt.Errorf("iterate dependent albums: %w", err)
	}

	for _, albumID := range albumIDs {
		if err := s.clearEntityArtistsTx(ctx, tx, albumArtistLinks, albumID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM artists WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete artist: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}
