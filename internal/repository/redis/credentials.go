package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/examshare/examshare-client/internal/model"
)

var _ model.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps credentials in Redis so several clients can share a session.
type CredentialStore struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewCredentialStore creates a store writing keys as "<prefix>:<key>".
// A zero ttl stores keys without expiry.
func NewCredentialStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration) *CredentialStore {
	return &CredentialStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *CredentialStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *CredentialStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", model.ErrNotFound
		}
		return "", fmt.Errorf("failed to get credential: %w", err)
	}
	return v, nil
}

func (s *CredentialStore) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set credential: %w", err)
	}
	return nil
}

func (s *CredentialStore) Remove(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove credential: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *CredentialStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
