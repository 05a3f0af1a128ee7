// Package tokenstore persists the single bearer token of the signed in user.
package tokenstore

import (
	"context"

	"github.com/jrsteele09/go-campus/localstore"
	"github.com/pkg/errors"
)

// Key is the storage slot of the token.
const Key = "auth_token"

// Tokens is the read/write/clear contract the request pipeline and the session provider share.
type Tokens interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

var _ Tokens = (*Store)(nil)

// Store keeps the token in a localstore.Store under Key.
type Store struct {
	backend localstore.Store
}

func New(backend localstore.Store) *Store {
	return &Store{backend: backend}
}

// Get reports ok only when a non-empty token is stored.
func (s *Store) Get(ctx context.Context) (string, bool, error) {
	token, found, err := s.backend.Get(ctx, Key)
	if err != nil {
		return "", false, errors.Wrap(err, "[tokenstore.Get] read token")
	}
	if !found || token == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Set replaces the stored token. An empty token clears the slot.
func (s *Store) Set(ctx context.Context, token string) error {
	if token == "" {
		return s.Clear(ctx)
	}
	if err := s.backend.Set(ctx, Key, token); err != nil {
		return errors.Wrap(err, "[tokenstore.Set] write token")
	}
	return nil
}

// Clear is a no-op when nothing is stored.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Remove(ctx, Key); err != nil {
		return errors.Wrap(err, "[tokenstore.Clear] remove token")
	}
	return nil
}
