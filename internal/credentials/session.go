// Package credentials owns the access/refresh pair of a client session.
//
// All reads and writes of persisted tokens go through Session so that they
// can be audited and replaced in tests.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/examshare/examshare-client/internal/model"
)

// Session is the single accessor over the persisted credential pair.
type Session struct {
	store     model.CredentialStore
	namespace string
}

// NewSession creates a Session over store. A non-empty namespace prefixes
// both keys so several profiles can share one store.
func NewSession(store model.CredentialStore, namespace string) *Session {
	return &Session{store: store, namespace: namespace}
}

func (s *Session) key(name string) string {
	if s.namespace == "" {
		return name
	}
	return s.namespace + ":" + name
}

// AccessToken returns the stored access token or "" when there is none.
func (s *Session) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, model.AccessTokenKey)
}

// RefreshToken returns the stored refresh token or "" when there is none.
func (s *Session) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, model.RefreshTokenKey)
}

// Credentials returns both tokens.
func (s *Session) Credentials(ctx context.Context) (model.Credentials, error) {
	access, err := s.AccessToken(ctx)
	if err != nil {
		return model.Credentials{}, err
	}
	refresh, err := s.RefreshToken(ctx)
	if err != nil {
		return model.Credentials{}, err
	}
	return model.Credentials{AccessToken: access, RefreshToken: refresh}, nil
}

// Save stores a freshly issued pair.
func (s *Session) Save(ctx context.Context, creds model.Credentials) error {
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		return fmt.Errorf("save credentials: both tokens are required")
	}
	if err := s.store.Set(ctx, s.key(model.AccessTokenKey), creds.AccessToken); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := s.store.Set(ctx, s.key(model.RefreshTokenKey), creds.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	return nil
}

// ReplaceAccess stores a new access token and leaves the refresh token alone.
func (s *Session) ReplaceAccess(ctx context.Context, access string) error {
	if access == "" {
		return fmt.Errorf("replace access token: empty token")
	}
	if err := s.store.Set(ctx, s.key(model.AccessTokenKey), access); err != nil {
		return fmt.Errorf("replace access token: %w", err)
	}
	return nil
}

// Clear removes both tokens. Both removals are attempted even if the first fails.
func (s *Session) Clear(ctx context.Context) error {
	errAccess := s.store.Remove(ctx, s.key(model.AccessTokenKey))
	errRefresh := s.store.Remove(ctx, s.key(model.RefreshTokenKey))
	if err := errors.Join(errAccess, errRefresh); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (s *Session) get(ctx context.Context, name string) (string, error) {
	v, err := s.store.Get(ctx, s.key(name))
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return v, nil
}
