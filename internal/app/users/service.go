package users

import (
	"context"

	"selfmusic/internal/store"
)

// Store describes the persistence operations required by the user service.
type Store interface {
	Authenticate(ctx context.Context, username, password string) (store.User, error)
	EnsureUser(ctx context.Context, username, password, role string) error
}

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(username, role string) (string, error)
}

// Service exposes login workflows.
type Service interface {
	Login(ctx context.Context, username, password string) (store.User, string, error)
}

type service struct {
	store  Store
	tokens TokenIssuer
}

// New wires a Service backed by the provided Store and token issuer.
func New(store Store, tokens TokenIssuer) Service {
	return &service{store: store, tokens: tokens}
}

func (s *service) Login(ctx context.Context, username, password string) (store.User, string, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, "", err
	}
	user, err := s.store.Authenticate(ctx, username, password)
	if err != nil {
		return store.User{}, "", err
	}
	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return store.User{}, "", err
	}
	return user, token, nil
}
