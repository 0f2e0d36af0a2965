package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreateSongRequiresTitle(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	_, err = s.CreateSong(context.Background(), Song{Title: "", ArtistID: "a1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateSongRequiresArtist(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	_, err = s.CreateSong(context.Background(), Song{Title: "Untitled"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestCreateSongUnknownArtistLeavesNoRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// The insert happens inside the transaction, so the failed artist
	// reference rolls it back.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO songs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM artists WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err = s.CreateSong(context.Background(), Song{Title: "Orphan", ArtistID: "ghost"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateSongUnknownPrimaryArtist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	// The database rejects the artist reference on the insert itself; that
	// is a bad request, not a server fault.
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO songs`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err = s.CreateSong(context.Background(), Song{Title: "Orphan", ArtistID: "ghost"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateSongUnknownPrimaryArtist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT album_id FROM songs WHERE id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"album_id"}).AddRow(nil))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE songs`)).
		WillReturnError(&pgconn.PgError{Code: "23503"})
	mock.ExpectRollback()

	_, err = s.UpdateSong(context.Background(), "s1", Song{Title: "Renamed", ArtistID: "ghost"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdateSongMovesAlbumCounts(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT album_id FROM songs WHERE id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"album_id"}).AddRow("al1"))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM albums WHERE id = $1`)).
		WithArgs("al2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE songs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Credit set is unchanged, so no artist counters move.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM artists WHERE id = $1`)).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT artist_id FROM song_artists WHERE song_id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow("a1"))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM song_artists WHERE song_id = $1`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	insert := regexp.QuoteMeta(`
		INSERT INTO song_artists (song_id, artist_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4)`)
	mock.ExpectPrepare(insert)
	mock.ExpectExec(insert).
		WithArgs("s1", "a1", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// The song moved from al1 to al2.
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE albums SET song_count = GREATEST(song_count - 1, 0) WHERE id = $1`)).
		WithArgs("al1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE albums SET song_count = song_count + 1 WHERE id = $1`)).
		WithArgs("al2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, artist_id, album_id`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "artist_id", "album_id", "duration", "audio_url", "cover_url",
			"lyrics", "mood_ids", "play_count", "liked", "genre", "created_at", "updated_at",
		}).AddRow("s1", "Moved", "a1", "al2", 180, nil, nil, nil, "{}", 0, false, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`JOIN song_artists`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "name", "bio", "avatar", "cover_url", "followers", "song_count", "album_count",
			"genres", "verified", "created_at", "updated_at", "is_primary",
		}).AddRow("a1", "Artist One", nil, nil, nil, 0, 1, 0, "{}", false, now, now, true))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT title FROM albums WHERE id = $1`)).
		WithArgs("al2").
		WillReturnRows(sqlmock.NewRows([]string{"title"}).AddRow("Album Two"))

	got, err := s.UpdateSong(context.Background(), "s1", Song{Title: "Moved", ArtistID: "a1", AlbumID: "al2", Duration: 180})
	if err != nil {
		t.Fatalf("UpdateSong error: %v", err)
	}
	if got.AlbumTitle != "Album Two" {
		t.Fatalf("expected album title %q, got %q", "Album Two", got.AlbumTitle)
	}
	if got.ArtistName != "Artist One" {
		t.Fatalf("expected artist name %q, got %q", "Artist One", got.ArtistName)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestBumpPlayCountNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE songs SET play_count = play_count + 1 WHERE id = $1`)).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.BumpPlayCount(context.Background(), "missing"); !errors.Is(err, ErrSongNotFound) {
		t.Fatalf("expected ErrSongNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
