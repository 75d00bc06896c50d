package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/mms-api/internal/token"
)

// RevocationStore is the cluster-wide token blacklist. An entry lives exactly
// as long as the token it shadows would have remained valid, so the set is
// self-purging.
type RevocationStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRevocationStore wires the blacklist onto the shared Redis client.
func NewRevocationStore(client *redis.Client, timeout time.Duration) *RevocationStore {
	return &RevocationStore{client: client, timeout: timeout}
}

// Revoke marks a jti as dead until its natural expiry. Revoking an already
// expired token is a no-op.
func (s *RevocationStore) Revoke(ctx context.Context, jti string, tokenType token.Type, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := blacklistKeyPrefix + jti
	if err := s.client.Set(ctx, key, string(tokenType), ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// IsRevoked reports whether the jti is blacklisted. Errors are surfaced, not
// swallowed: an unreachable store must never read as "not revoked".
func (s *RevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := blacklistKeyPrefix + jti
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}

	return n > 0, nil
}
