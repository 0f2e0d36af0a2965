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

// Playlist holds an explicitly ordered list of song ids. The order is user
// controlled and duplicates are allowed; song_count and duration are kept in
// step with the list on every membership change.
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	SongIDs     []string  `json:"songIds"`
	SongCount   int       `json:"songCount"`
	PlayCount   int       `json:"playCount"`
	Duration    int       `json:"duration"`
	Creator     string    `json:"creator"`
	IsPublic    bool      `json:"isPublic"`
	Songs       []Song    `json:"songs,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const playlistColumns = `id, name, description, cover_url, song_ids, song_count, play_count, duration, creator, is_public, created_at, updated_at`

func scanPlaylistFields(sc rowScanner, p *Playlist) error {
	var description, coverURL sql.NullString
	if err := sc.Scan(&p.ID, &p.Name, &description, &coverURL, pq.Array(&p.SongIDs),
		&p.SongCount, &p.PlayCount, &p.Duration, &p.Creator, &p.IsPublic,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("scan playlist: %w", err)
	}
	p.Description = description.String
	p.CoverURL = coverURL.String
	return nil
}

func scanPlaylistRows(rows *sql.Rows) ([]Playlist, error) {
	var playlists []Playlist
	for rows.Next() {
		var p Playlist
		if err := scanPlaylistFields(rows, &p); err != nil {
			return nil, err
		}
		playlists = append(playlists, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate playlists: %w", err)
	}
	return playlists, nil
}

// sameMembers reports whether two id lists are equal as multisets, ignoring
// order but counting duplicates.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, id := range a {
		counts[id]++
	}
	for _, id := range b {
		counts[id]--
		if counts[id] < 0 {
			return false
		}
	}
	return true
}

// memberDuration sums the durations of the listed songs, counting each
// occurrence. Ids that no longer resolve contribute zero.
func (s *Store) memberDuration(ctx context.Context, songIDs []string) (int, error) {
	if len(songIDs) == 0 {
		return 0, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, duration FROM songs WHERE id = ANY($1)`, pq.Array(dedupe(songIDs)))
	if err != nil {
		return 0, fmt.Errorf("select song durations: %w", err)
	}
	defer rows.Close()

	durations := make(map[string]int)
	for rows.Next() {
		var id string
		var d int
		if err := rows.Scan(&id, &d); err != nil {
			return 0, fmt.Errorf("scan song duration: %w", err)
		}
		durations[id] = d
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate song durations: %w", err)
	}

	total := 0
	for _, id := range songIDs {
		total += durations[id]
	}
	return total, nil
}

// CreatePlaylist inserts a playlist. The derived song_count and duration are
// computed from the supplied membership, not taken from the payload.
func (s *Store) CreatePlaylist(ctx context.Context, playlist Playlist) (Playlist, error) {
	playlist.Name = strings.TrimSpace(playlist.Name)
	if playlist.Name == "" {
		return Playlist{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if playlist.SongIDs == nil {
		playlist.SongIDs = []string{}
	}
	if playlist.Creator == "" {
		playlist.Creator = "admin"
	}

	duration, err := s.memberDuration(ctx, playlist.SongIDs)
	if err != nil {
		return Playlist{}, err
	}

	playlist.ID = uuid.NewString()
	playlist.SongCount = len(playlist.SongIDs)
	playlist.Duration = duration
	now := time.Now().UTC()
	playlist.CreatedAt = now
	playlist.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO playlists (id, name, description, cover_url, song_ids, song_count, play_count, duration, creator, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, playlist.ID, playlist.Name, nullIfEmpty(playlist.Description), nullIfEmpty(playlist.CoverURL),
		pq.Array(playlist.SongIDs), playlist.SongCount, playlist.PlayCount, playlist.Duration,
		playlist.Creator, playlist.IsPublic, now, now); err != nil {
		return Playlist{}, fmt.Errorf("insert playlist: %w", err)
	}
	return playlist, nil
}

// ListPlaylists returns every playlist, newest first.
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select playlists: %w", err)
	}
	defer rows.Close()
	return scanPlaylistRows(rows)
}

// ListPublicPlaylistsPage returns a page of public playlists, newest first,
// with the total count.
func (s *Store) ListPublicPlaylistsPage(ctx context.Context, page, limit int) ([]Playlist, int, error) {
	_, limit, offset := pageWindow(page, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playlists WHERE is_public = TRUE`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count playlists: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE is_public = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select playlists: %w", err)
	}
	defer rows.Close()

	playlists, err := scanPlaylistRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return playlists, total, nil
}

// PlaylistByID returns a single playlist with its member songs hydrated in
// stored order, duplicates included.
func (s *Store) PlaylistByID(ctx context.Context, id string) (Playlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+playlistColumns+`
		FROM playlists
		WHERE id = $1
	`, id)

	var p Playlist
	if err := scanPlaylistFields(row, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Playlist{}, ErrPlaylistNotFound
		}
		return Playlist{}, err
	}

	songs, err := s.playlistSongs(ctx, p.SongIDs)
	if err != nil {
		return Playlist{}, err
	}
	p.Songs = songs
	return p, nil
}

// playlistSongs hydrates the member songs. The rows come back unordered from
// a single ANY() fetch and are laid out here to match the stored id list; ids
// that no longer resolve are skipped.
func (s *Store) playlistSongs(ctx context.Context, songIDs []string) ([]Song, error) {
	if len(songIDs) == 0 {
		return nil, nil
	}

	songs, err := s.querySongs(ctx, `
		SELECT `+songColumns+`
		FROM songs
		WHERE id = ANY($1)
	`, pq.Array(dedupe(songIDs)))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Song, len(songs))
	for _, song := range songs {
		byID[song.ID] = song
	}

	ordered := make([]Song, 0, len(songIDs))
	for _, id := range songIDs {
		if song, ok := byID[id]; ok {
			ordered = append(ordered, song)
		}
	}
	return ordered, nil
}

// UpdatePlaylist replaces the mutable fields of a playlist, recomputing the
// derived song_count and duration from the submitted membership.
func (s *Store) UpdatePlaylist(ctx context.Context, id string, playlist Playlist) (Playlist, error) {
	playlist.Name = strings.TrimSpace(playlist.Name)
	if playlist.Name == "" {
		return Playlist{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if playlist.SongIDs == nil {
		playlist.SongIDs = []string{}
	}

	duration, err := s.memberDuration(ctx, playlist.SongIDs)
	if err != nil {
		return Playlist{}, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE playlists
		SET name = $1, description = $2, cover_url = $3, song_ids = $4, song_count = $5, play_count = $6, duration = $7, creator = $8, is_public = $9, updated_at = $10
		WHERE id = $11
	`, playlist.Name, nullIfEmpty(playlist.Description), nullIfEmpty(playlist.CoverURL),
		pq.Array(playlist.SongIDs), len(playlist.SongIDs), playlist.PlayCount, duration,
		playlist.Creator, playlist.IsPublic, time.Now().UTC(), id)
	if err != nil {
		return Playlist{}, fmt.Errorf("update playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Playlist{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Playlist{}, ErrPlaylistNotFound
	}

	return s.PlaylistByID(ctx, id)
}

// DeletePlaylist removes a playlist.
func (s *Store) DeletePlaylist(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlists WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete playlist: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// AddPlaylistSong appends a song to the end of the playlist. Duplicates are
// allowed; every add appends regardless of existing membership.
func (s *Store) AddPlaylistSong(ctx context.Context, playlistID, songID string) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var songDuration int
	err = tx.QueryRowContext(ctx, `SELECT duration FROM songs WHERE id = $1`, songID).Scan(&songDuration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Playlist{}, ErrSongNotFound
		}
		return Playlist{}, fmt.Errorf("lookup song: %w", err)
	}

	songIDs, duration, err := lockPlaylistTx(ctx, tx, playlistID)
	if err != nil {
		return Playlist{}, err
	}

	songIDs = append(songIDs, songID)
	if err := writeMembershipTx(ctx, tx, playlistID, songIDs, duration+songDuration); err != nil {
		return Playlist{}, err
	}

	if err := tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return s.PlaylistByID(ctx, playlistID)
}

// RemovePlaylistSong removes the first occurrence of the song from the
// playlist. Later duplicates stay in place.
func (s *Store) RemovePlaylistSong(ctx context.Context, playlistID, songID string) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	songIDs, duration, err := lockPlaylistTx(ctx, tx, playlistID)
	if err != nil {
		return Playlist{}, err
	}

	index := -1
	for i, id := range songIDs {
		if id == songID {
			index = i
			break
		}
	}
	if index < 0 {
		return Playlist{}, fmt.Errorf("%w: song not in playlist", ErrSongNotFound)
	}
	songIDs = append(songIDs[:index], songIDs[index+1:]...)

	// A deleted song cannot report its duration; it contributes zero.
	var songDuration int
	if err := tx.QueryRowContext(ctx, `SELECT duration FROM songs WHERE id = $1`, songID).Scan(&songDuration); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, fmt.Errorf("lookup song: %w", err)
	}
	duration -= songDuration
	if duration < 0 {
		duration = 0
	}

	if err := writeMembershipTx(ctx, tx, playlistID, songIDs, duration); err != nil {
		return Playlist{}, err
	}

	if err := tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return s.PlaylistByID(ctx, playlistID)
}

// lockPlaylistTx reads the membership under a row lock so concurrent
// mutations of the same playlist serialize instead of losing updates.
func lockPlaylistTx(ctx context.Context, tx *sql.Tx, playlistID string) ([]string, int, error) {
	var songIDs []string
	var duration int
	err := tx.QueryRowContext(ctx, `SELECT song_ids, duration FROM playlists WHERE id = $1 FOR UPDATE`, playlistID).
		Scan(pq.Array(&songIDs), &duration)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrPlaylistNotFound
		}
		return nil, 0, fmt.Errorf("lookup playlist: %w", err)
	}
	return songIDs, duration, nil
}

func writeMembershipTx(ctx context.Context, tx *sql.Tx, playlistID string, songIDs []string, duration int) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE playlists
		SET song_ids = $1, song_count = $2, duration = $3, updated_at = $4
		WHERE id = $5
	`, pq.Array(songIDs), len(songIDs), duration, time.Now().UTC(), playlistID); err != nil {
		return fmt.Errorf("update playlist membership: %w", err)
	}
	return nil
}

// ReorderPlaylist replaces the playlist order with the submitted sequence.
// The new sequence must contain exactly the current members, duplicates
// counted; membership changes go through add/remove instead. Count and
// duration are untouched since membership is unchanged by construction.
func (s *Store) ReorderPlaylist(ctx context.Context, playlistID string, songIDs []string) (Playlist, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Playlist{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	current, _, err := lockPlaylistTx(ctx, tx, playlistID)
	if err != nil {
		return Playlist{}, err
	}

	if !sameMembers(current, songIDs) {
		return Playlist{}, fmt.Errorf("%w: reorder must contain exactly the current songs", ErrInvalidInput)
	}
	for _, id := range dedupe(songIDs) {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM songs WHERE id = $1`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return Playlist{}, fmt.Errorf("%w: song %s not found", ErrInvalidInput, id)
		}
		if err != nil {
			return Playlist{}, fmt.Errorf("check song: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE playlists
		SET song_ids = $1, updated_at = $2
		WHERE id = $3
	`, pq.Array(songIDs), time.Now().UTC(), playlistID); err != nil {
		return Playlist{}, fmt.Errorf("update playlist order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Playlist{}, fmt.Errorf("commit tx: %w", err)
	}
	tx = nil
	return s.PlaylistByID(ctx, playlistID)
}
