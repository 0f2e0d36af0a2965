package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Album models a release. ArtistID always points at the primary credited
// artist; the full credit set lives in album_artists. ArtistIDs is accepted on
// create/update requests and echoes nothing on reads; Artists and ArtistName
// are filled in when responses are assembled.
type Album struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	ArtistID    string         `json:"artistId"`
	ArtistName  string         `json:"artistName,omitempty"`
	CoverURL    string         `json:"coverUrl,omitempty"`
	ReleaseDate string         `json:"releaseDate,omitempty"`
	SongCount   int            `json:"songCount"`
	Duration    int            `json:"duration"`
	Genre       string         `json:"genre,omitempty"`
	Description string         `json:"description,omitempty"`
	ArtistIDs   []string       `json:"artistIds,omitempty"`
	Artists     []ArtistCredit `json:"artists,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

const albumColumns = `id, title, artist_id, cover_url, release_date, song_count, duration, genre, description, created_at, updated_at`

func scanAlbumFields(sc rowScanner, a *Album) error {
	var coverURL, releaseDate, genre, description sql.NullString
	if err := sc.Scan(&a.ID, &a.Title, &a.ArtistID, &coverURL, &releaseDate,
		&a.SongCount, &a.Duration, &genre, &description, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("scan album: %w", err)
	}
	a.CoverURL = coverURL.String
	a.ReleaseDate = releaseDate.String
	a.Genre = genre.String
	a.Description = description.String
	return nil
}

func scanAlbumRows(rows *sql.Rows) ([]Album, error) {
	var albums []Album
	for rows.Next() {
		var a Album
		if err := scanAlbumFields(rows, &a); err != nil {
			return nil, err
		}
		albums = append(albums, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}
	return albums, nil
}

// creditSet resolves the credit set and primary artist for an incoming
// album payload. An omitted artistIds list means the single primary artist.
func creditSet(artistIDs []string, artistID string) ([]string, string, error) {
	ids := artistIDs
	if len(ids) == 0 {
		if artistID == "" {
			return nil, "", fmt.Errorf("%w: artistId is required", ErrInvalidInput)
		}
		ids = []string{artistID}
	}
	ids = dedupe(ids)
	return ids, resolvePrimary(ids, artistID), nil
}

// CreateAlbum inserts an album and links its artist credits in one
// transaction. The stored artist_id is the resolved primary artist.
func (s *Store) CreateAlbum(ctx context.Context, album Album) (Album, error) {
	album.Title = strings.TrimSpace(album.Title)
	if album.Title == "" {
		return Album{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	ids, primary, err := creditSet(album.ArtistIDs, album.ArtistID)
	if err != nil {
		return Album{}, err
	}

	album.ID = uuid.NewString()
	album.ArtistID = primary
	now := time.Now().UTC()
	album.CreatedAt = now
	album.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Album{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO albums (id, title, artist_id, cover_url, release_date, song_count, duration, genre, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, album.ID, album.Title, primary, nullIfEmpty(album.CoverURL), nullIfEmpty(album.ReleaseDate),
		0, album.Duration, nullIfEmpty(album.Genre), nullIfEmpty(album.Description), now, now); err != nil {
		if isForeignKeyViolation(err) {
			return Album{}, fmt.Errorf("%w: artist %s not found", ErrInvalidInput, primary)
		}
		return Album{}, fmt.Errorf("insert album: %w", err)
	}

	if err := s.setEntityArtistsTx(ctx, tx, albumArtistLinks, album.ID, ids, primary); err != nil {
		return Album{}, err
	}

	if err := tx.Commit(); err != nil {
		return Album{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	album.SongCount = 0
	album.ArtistIDs = nil
	if err := s.attachAlbumRelations(ctx, []Album{album}); err != nil {
		return Album{}, err
	}
	return album, nil
}

// ListAlbums returns every album, newest first, with artist credits attached.
func (s *Store) ListAlbums(ctx context.Context) ([]Album, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	albums, err := scanAlbumRows(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachAlbumRelations(ctx, albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// ListAlbumsPage returns a page of albums, newest first, with the total count.
func (s *Store) ListAlbumsPage(ctx context.Context, page, limit int) ([]Album, int, error) {
	_, limit, offset := pageWindow(page, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM albums`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count albums: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	albums, err := scanAlbumRows(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := s.attachAlbumRelations(ctx, albums); err != nil {
		return nil, 0, err
	}
	return albums, total, nil
}

// AlbumByID returns a single album with artist credits attached.
func (s *Store) AlbumByID(ctx context.Context, id string) (Album, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE id = $1
	`, id)

	var a Album
	if err := scanAlbumFields(row, &a); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Album{}, ErrAlbumNotFound
		}
		return Album{}, err
	}
	albums := []Album{a}
	if err := s.attachAlbumRelations(ctx, albums); err != nil {
		return Album{}, err
	}
	return albums[0], nil
}

// AlbumsByArtist returns every album the artist is credited on, newest first.
func (s *Store) AlbumsByArtist(ctx context.Context, artistID string) ([]Album, error) {
	if _, err := s.ArtistByID(ctx, artistID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+albumColumns+`
		FROM albums
		WHERE id IN (SELECT album_id FROM album_artists WHERE artist_id = $1)
		ORDER BY created_at DESC
	`, artistID)
	if err != nil {
		return nil, fmt.Errorf("select albums: %w", err)
	}
	defer rows.Close()

	albums, err := scanAlbumRows(rows)
	if err != nil {
		return nil, err
	}
	if err := s.attachAlbumRelations(ctx, albums); err != nil {
		return nil, err
	}
	return albums, nil
}

// UpdateAlbum replaces the album's mutable fields and re-synchronizes its
// artist credits. The derived song_count column is untouched.
func (s *Store) UpdateAlbum(ctx context.Context, id string, album Album) (Album, error) {
	album.Title = strings.TrimSpace(album.Title)
	if album.Title == "" {
		return Album{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	ids, primary, err := creditSet(album.ArtistIDs, album.ArtistID)
	if err != nil {
		return Album{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Album{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE albums
		SET title = $1, artist_id = $2, cover_url = $3, release_date = $4, duration = $5, genre = $6, description = $7, updated_at = $8
		WHERE id = $9
	`, album.Title, primary, nullIfEmpty(album.CoverURL), nullIfEmpty(album.ReleaseDate),
		album.Duration, nullIfEmpty(album.Genre), nullIfEmpty(album.Description), time.Now().UTC(), id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return Album{}, fmt.Errorf("%w: artist %s not found", ErrInvalidInput, primary)
		}
		return Album{}, fmt.Errorf("update album: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Album{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Album{}, ErrAlbumNotFound
	}

	if err := s.setEntityArtistsTx(ctx, tx, albumArtistLinks, id, ids, primary); err != nil {
		return Album{}, err
	}

	if err := tx.Commit(); err != nil {
		return Album{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil

	return s.AlbumByID(ctx, id)
}

// DeleteAlbum removes an album. Songs referencing it are kept with their
// album_id nulled by the schema; credited artists lose an album_count each.
func (s *Store) DeleteAlbum(ctx context.Context, id string) error {
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
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM albums WHERE id = $1`, id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAlbumNotFound
		}
		return fmt.Errorf("check album: %w", err)
	}

	if err := s.clearEntityArtistsTx(ctx, tx, albumArtistLinks, id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM albums WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete album: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return nil
}

// attachAlbumRelations fills in the artist credits and primary artist name,
// row by row. The credit set is many-to-many so a flat join cannot do it.
func (s *Store) attachAlbumRelations(ctx context.Context, albums []Album) error {
	for i := range albums {
		credits, err := s.AlbumArtists(ctx, albums[i].ID)
		if err != nil {
			return err
		}
		albums[i].Artists = credits
		if primary := primaryCredit(credits); primary != nil {
			albums[i].ArtistName = primary.Name
		}
	}
	return nil
}
