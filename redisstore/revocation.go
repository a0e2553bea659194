package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/opencivic/portalauth"
)

// RevocationStore implements portalauth.TokenRevocationStore on Redis.
// Revoked token IDs live under <prefix>:revoked:<jti>; callers pass a TTL
// covering the remaining token lifetime so entries expire on their own once
// the token itself can no longer validate.
type RevocationStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRevocationStore creates a revocation store using the given key prefix;
// empty means "pa".
func NewRevocationStore(client redis.UniversalClient, prefix string) *RevocationStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RevocationStore{redis: client, prefix: prefix}
}

func (s *RevocationStore) key(tokenID string) string {
	return s.prefix + ":revoked:" + tokenID
}

// Revoke marks the token ID as revoked for ttl; zero keeps the entry until
// explicitly deleted.
func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
	return nil
}

// IsRevoked reports whether the token ID has been revoked.
func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(tokenID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", portalauth.ErrStoreUnavailable, err)
	}
	return n > 0, nil
}
