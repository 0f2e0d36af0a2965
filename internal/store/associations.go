package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ArtistCredit is an artist annotated with its role on a song or album.
type ArtistCredit struct {
	Artist
	IsPrimary bool `json:"isPrimary"`
}

// assocTable parameterizes the two association tables. The strings are
// compile-time constants, never request data.
type assocTable struct {
	table      string
	entityCol  string
	counterCol string
}

var (
	songArtistLinks  = assocTable{table: "song_artists", entityCol: "song_id", counterCol: "song_count"}
	albumArtistLinks = assocTable{table: "album_artists", entityCol: "album_id", counterCol: "album_count"}
)

// resolvePrimary picks the primary artist for an association set: the
// requested primary when it is part of the set, otherwise the first artist.
func resolvePrimary(artistIDs []string, primaryID string) string {
	for _, id := range artistIDs {
		if id == primaryID {
			return primaryID
		}
	}
	return artistIDs[0]
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// setEntityArtistsTx replaces the full association set of a song or album and
// adjusts the per-artist counters by the delta between the old and new sets.
// Exactly one row is flagged primary. Every referenced artist must exist or
// the whole operation fails before any row is touched.
func (s *Store) setEntityArtistsTx(ctx context.Context, tx *sql.Tx, links assocTable, entityID string, artistIDs []string, primaryID string) error {
	if len(artistIDs) == 0 {
		return fmt.Errorf("%w: at least one artist is required", ErrInvalidInput)
	}
	artistIDs = dedupe(artistIDs)

	for _, id := range artistIDs {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM artists WHERE id = $1`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: artist %s not found", ErrInvalidInput, id)
		}
		if err != nil {
			return fmt.Errorf("check artist: %w", err)
		}
	}

	previous, err := s.entityArtistIDs(ctx, tx, links, entityID)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, links.table, links.entityCol),
		entityID,
	); err != nil {
		return fmt.Errorf("clear %s: %w", links.table, err)
	}

	primary := resolvePrimary(artistIDs, primaryID)
	now := time.Now().UTC()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, artist_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4)`, links.table, links.entityCol))
	if err != nil {
		return fmt.Errorf("prepare insert %s: %w", links.table, err)
	}
	defer stmt.Close()

	for _, id := range artistIDs {
		if _, err := stmt.ExecContext(ctx, entityID, id, id == primary, now); err != nil {
			return fmt.Errorf("insert %s: %w", links.table, err)
		}
	}

	prevSet := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		prevSet[id] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(artistIDs))
	for _, id := range artistIDs {
		newSet[id] = struct{}{}
	}

	for _, id := range artistIDs {
		if _, ok := prevSet[id]; !ok {
			if err := s.bumpArtistCounterTx(ctx, tx, links, id, +1); err != nil {
				return err
			}
		}
	}
	for _, id := range previous {
		if _, ok := newSet[id]; !ok {
			if err := s.bumpArtistCounterTx(ctx, tx, links, id, -1); err != nil {
				return err
			}
		}
	}
	return nil
}

// clearEntityArtistsTx decrements counters for every artist currently linked
// to the entity. Called before the owning row is deleted; the association
// rows themselves go away with the FK cascade.
func (s *Store) clearEntityArtistsTx(ctx context.Context, tx *sql.Tx, links assocTable, entityID string) error {
	previous, err := s.entityArtistIDs(ctx, tx, links, entityID)
	if err != nil {
		return err
	}
	for _, id := range previous {
		if err := s.bumpArtistCounterTx(ctx, tx, links, id, -1); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) bumpArtistCounterTx(ctx context.Context, tx *sql.Tx, links assocTable, artistID string, delta int) error {
	var query string
	if delta > 0 {
		query = fmt.Sprintf(`UPDATE artists SET %s = %s + 1 WHERE id = $1`, links.counterCol, links.counterCol)
	} else {
		// Never let a counter go negative.
		query = fmt.Sprintf(`UPDATE artists SET %s = GREATEST(%s - 1, 0) WHERE id = $1`, links.counterCol, links.counterCol)
	}
	if _, err := tx.ExecContext(ctx, query, artistID); err != nil {
		return fmt.Errorf("adjust %s: %w", links.counterCol, err)
	}
	return nil
}

func (s *Store) entityArtistIDs(ctx context.Context, q dbtx, links assocTable, entityID string) ([]string, error) {
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT artist_id FROM %s WHERE %s = $1`, links.table, links.entityCol),
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", links.table, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan artist id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", links.table, err)
	}
	return ids, nil
}

// entityArtists returns the credited artists for a song or album ordered
// primary-first, then alphabetically by name.
func (s *Store) entityArtists(ctx context.Context, q dbtx, links assocTable, entityID string) ([]ArtistCredit, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf(`
		SELECT a.id, a.name, a.bio, a.avatar, a.cover_url, a.followers, a.song_count, a.album_count,
			a.genres, a.verified, a.created_at, a.updated_at, x.is_primary
		FROM artists a
		JOIN %s x ON a.id = x.artist_id
		WHERE x.%s = $1
		ORDER BY x.is_primary DESC, a.name ASC`, links.table, links.entityCol),
		entityID,
	)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", links.table, err)
	}
	defer rows.Close()

	var credits []ArtistCredit
	for rows.Next() {
		var c ArtistCredit
		if err := scanArtistFields(rows, &c.Artist, &c.IsPrimary); err != nil {
			return nil, err
		}
		credits = append(credits, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", links.table, err)
	}
	return credits, nil
}

// SongArtists returns the credited artists of a song, primary first.
func (s *Store) SongArtists(ctx context.Context, songID string) ([]ArtistCredit, error) {
	return s.entityArtists(ctx, s.db, songArtistLinks, songID)
}

// AlbumArtists returns the credited artists of an album, primary first.
func (s *Store) AlbumArtists(ctx context.Context, albumID string) ([]ArtistCredit, error) {
	return s.entityArtists(ctx, s.db, albumArtistLinks, albumID)
}

func primaryCredit(credits []ArtistCredit) *ArtistCredit {
	for i := range credits {
		if credits[i].IsPrimary {
			return &credits[i]
		}
	}
	if len(credits) > 0 {
		return &credits[0]
	}
	return nil
}
