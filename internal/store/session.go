package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// replaceScript swaps the active refresh jti only when the stored value still
// matches the one the caller validated against. Returns 1 on success, 0 when
// a concurrent login or refresh got there first.
var replaceScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
  redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
  return 1
end
return 0
`)

// SessionStore maps each username to the jti of its single currently-valid
// refresh token. A refresh token whose jti is not the stored value is dead
// regardless of its cryptographic validity.
type SessionStore struct {
	client  *redis.Client
	timeout time.Duration
}

// NewSessionStore wires the active-session map onto the shared Redis client.
func NewSessionStore(client *redis.Client, timeout time.Duration) *SessionStore {
	return &SessionStore{client: client, timeout: timeout}
}

// SetActiveRefresh unconditionally installs the jti as the user's active
// session. This is how a new login invalidates the previous session.
func (s *SessionStore) SetActiveRefresh(ctx context.Context, username, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := refreshSessionPrefix + username
	if err := s.client.Set(ctx, key, jti, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return nil
}

// ReplaceActiveRefresh atomically rotates the session pointer from oldJTI to
// newJTI. It fails (false, nil) when the stored jti no longer equals oldJTI,
// which closes the race between two concurrent refresh calls.
func (s *SessionStore) ReplaceActiveRefresh(ctx context.Context, username, oldJTI, newJTI string, ttl time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := refreshSessionPrefix + username
	n, err := replaceScript.Run(ctx, s.client, []string{key}, oldJTI, newJTI, ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("redis replace %s: %w", key, err)
	}

	return n == 1, nil
}

// GetActiveRefresh returns the jti of the user's current refresh session, or
// empty when no session exists.
func (s *SessionStore) GetActiveRefresh(ctx context.Context, username string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := refreshSessionPrefix + username
	jti, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("redis get %s: %w", key, err)
	}

	return jti, nil
}

// Clear removes the user's active session.
func (s *SessionStore) Clear(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := refreshSessionPrefix + username
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}
