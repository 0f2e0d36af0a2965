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

// Mood is a curated tag applied to songs through their mood_ids list. The
// song_count column is informational only and never maintained.
type Mood struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Icon        string    `json:"icon"`
	Color       string    `json:"color"`
	CoverURL    string    `json:"coverUrl,omitempty"`
	SongCount   int       `json:"songCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const moodColumns = `id, name, description, icon, color, cover_url, song_count, created_at, updated_at`

func scanMoodFields(sc rowScanner, m *Mood) error {
	var description, coverURL sql.NullString
	if err := sc.Scan(&m.ID, &m.Name, &description, &m.Icon, &m.Color,
		&coverURL, &m.SongCount, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return fmt.Errorf("scan mood: %w", err)
	}
	m.Description = description.String
	m.CoverURL = coverURL.String
	return nil
}

func scanMoodRows(rows *sql.Rows) ([]Mood, error) {
	var moods []Mood
	for rows.Next() {
		var m Mood
		if err := scanMoodFields(rows, &m); err != nil {
			return nil, err
		}
		moods = append(moods, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moods: %w", err)
	}
	return moods, nil
}

// CreateMood inserts a new mood with a generated id.
func (s *Store) CreateMood(ctx context.Context, mood Mood) (Mood, error) {
	mood.Name = strings.TrimSpace(mood.Name)
	if mood.Name == "" {
		return Mood{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	mood.ID = uuid.NewString()
	now := time.Now().UTC()
	mood.CreatedAt = now
	mood.UpdatedAt = now

	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO moods (id, name, description, icon, color, cover_url, song_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, mood.ID, mood.Name, nullIfEmpty(mood.Description), mood.Icon, mood.Color,
		nullIfEmpty(mood.CoverURL), mood.SongCount, now, now); err != nil {
		if isUniqueViolation(err) {
			return Mood{}, fmt.Errorf("%w: mood name already exists", ErrNameTaken)
		}
		return Mood{}, fmt.Errorf("insert mood: %w", err)
	}
	return mood, nil
}

// ListMoods returns every mood, newest first.
func (s *Store) ListMoods(ctx context.Context) ([]Mood, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+moodColumns+`
		FROM moods
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("select moods: %w", err)
	}
	defer rows.Close()
	return scanMoodRows(rows)
}

// ListMoodsPage returns a page of moods, newest first, with the total count.
func (s *Store) ListMoodsPage(ctx context.Context, page, limit int) ([]Mood, int, error) {
	_, limit, offset := pageWindow(page, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM moods`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count moods: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+moodColumns+`
		FROM moods
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("select moods: %w", err)
	}
	defer rows.Close()

	moods, err := scanMoodRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return moods, total, nil
}

// MoodByID returns a single mood.
func (s *Store) MoodByID(ctx context.Context, id string) (Mood, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+moodColumns+`
		FROM moods
		WHERE id = $1
	`, id)

	var m Mood
	if err := scanMoodFields(row, &m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Mood{}, ErrMoodNotFound
		}
		return Mood{}, err
	}
	return m, nil
}

// UpdateMood replaces the mutable fields of a mood.
func (s *Store) UpdateMood(ctx context.Context, id string, mood Mood) (Mood, error) {
	mood.Name = strings.TrimSpace(mood.Name)
	if mood.Name == "" {
		return Mood{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE moods
		SET name = $1, description = $2, icon = $3, color = $4, cover_url = $5, song_count = $6, updated_at = $7
		WHERE id = $8
	`, mood.Name, nullIfEmpty(mood.Description), mood.Icon, mood.Color,
		nullIfEmpty(mood.CoverURL), mood.SongCount, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return Mood{}, fmt.Errorf("%w: mood name already exists", ErrNameTaken)
		}
		return Mood{}, fmt.Errorf("update mood: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Mood{}, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return Mood{}, ErrMoodNotFound
	}

	return s.MoodByID(ctx, id)
}

// DeleteMood removes a mood. Songs keep whatever mood ids they carry; stale
// references are simply ignored by readers.
func (s *Store) DeleteMood(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM moods WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete mood: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrMoodNotFound
	}
	return nil
}
