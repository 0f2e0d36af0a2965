package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"selfmusic/internal/auth"
)

func TestAuthenticateUnknownUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}))

	_, err = s.Authenticate(context.Background(), "nobody", "whatever")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)

	hash, err := auth.HashPassword("admin123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	userRow := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{"id", "username", "password_hash", "role", "created_at"}).
			AddRow("u1", "admin", hash, "admin", time.Now().UTC())
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("admin").
		WillReturnRows(userRow())
	if _, err := s.Authenticate(context.Background(), "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users`)).
		WithArgs("admin").
		WillReturnRows(userRow())
	user, err := s.Authenticate(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("Authenticate error: %v", err)
	}
	if user.Username != "admin" || user.Role != "admin" {
		t.Fatalf("unexpected user: %+v", user)
	}
}

func TestEnsureUserRequiresCredentials(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	s := New(db)
	if err := s.EnsureUser(context.Background(), "", "pw", "admin"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := s.EnsureUser(context.Background(), "admin", "", "admin"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
