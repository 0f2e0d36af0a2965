package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestResolvePrimary(t *testing.T) {
	tests := []struct {
		name      string
		artistIDs []string
		primaryID string
		want      string
	}{
		{name: "requested primary in set", artistIDs: []string{"a1", "a2"}, primaryID: "a2", want: "a2"},
		{name: "requested primary not in set", artistIDs: []string{"a1", "a2"}, primaryID: "a9", want: "a1"},
		{name: "empty primary", artistIDs: []string{"a1"}, primaryID: "", want: "a1"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			if got := resolvePrimary(tc.artistIDs, tc.primaryID); got != tc.want {
				t.Fatalf("resolvePrimary(%v, %q) = %q, want %q", tc.artistIDs, tc.primaryID, got, tc.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a1", "a2", "a1", "a3", "a2"})
	want := []string{"a1", "a2", "a3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("dedupe = %v, want %v", got, want)
	}
}

func TestSetEntityArtistsCounterDiff(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()

	// Previous credits are a1+a2, the new set is a2+a3 with a3 primary:
	// a3 gains a song, a1 loses one, a2 stays untouched.
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM artists WHERE id = $1`)).
		WithArgs("a2").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM artists WHERE id = $1`)).
		WithArgs("a3").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT artist_id FROM song_artists WHERE song_id = $1`)).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"artist_id"}).AddRow("a1").AddRow("a2"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM song_artists WHERE song_id = $1`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	insert := regexp.QuoteMeta(`
		INSERT INTO song_artists (song_id, artist_id, is_primary, created_at)
		VALUES ($1, $2, $3, $4)`)
	mock.ExpectPrepare(insert)
	mock.ExpectExec(insert).
		WithArgs("s1", "a2", false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).
		WithArgs("s1", "a3", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE artists SET song_count = song_count + 1 WHERE id = $1`)).
		WithArgs("a3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE artists SET song_count = GREATEST(song_count - 1, 0) WHERE id = $1`)).
		WithArgs("a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}

	if err := s.setEntityArtistsTx(ctx, tx, songArtistLinks, "s1", []string{"a2", "a3"}, "a3"); err != nil {
		t.Fatalf("setEntityArtistsTx error: %v", err)
	}
	_ = tx.Rollback()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetEntityArtistsUnknownArtist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM artists WHERE id = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}

	err = s.setEntityArtistsTx(ctx, tx, songArtistLinks, "s1", []string{"ghost"}, "ghost")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	_ = tx.Rollback()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSetEntityArtistsEmptySet(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	err = s.setEntityArtistsTx(context.Background(), nil, songArtistLinks, "s1", nil, "")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
