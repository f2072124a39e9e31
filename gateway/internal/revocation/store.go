package revocation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces revoked tokens inside the shared Redis keyspace.
const KeyPrefix = "bl_token:"

const revokedValue = "blacklisted"

// Store records revoked tokens in Redis until their natural expiry.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func Key(token string) string {
	return KeyPrefix + token
}

func (s *Store) Revoke(ctx context.Context, token string, ttlSeconds int) error {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultTTLSeconds
	}
	err := s.rdb.Set(ctx, Key(token), revokedValue, time.Duration(ttlSeconds)*time.Second).Err()
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, token string) (bool, error) {
	n, err := s.rdb.Exists(ctx, Key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n == 1, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
