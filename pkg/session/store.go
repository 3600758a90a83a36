// Package session keeps the server-side half of bearer sessions: the set of
// session ids revoked by logout before their token expired.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "session_revoked:"

type Store struct {
	redisClient *redis.Client
}

func NewStore(redisClient *redis.Client) *Store {
	return &Store{redisClient: redisClient}
}

func revokedKey(sessionID string) string {
	return revokedKeyPrefix + sessionID
}

// Revoke marks sessionID as revoked for ttl, which should be the remaining
// lifetime of the token. Non-positive ttl is a no-op: the token is already dead.
func (s *Store) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.redisClient.Set(ctx, revokedKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := s.redisClient.Exists(ctx, revokedKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check session: %w", err)
	}
	return n > 0, nil
}
