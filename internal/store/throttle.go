package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginThrottle tracks failed logins per username and the resulting account
// locks. Counting is keyed by username only; the client address plays no part.
type LoginThrottle struct {
	client        *redis.Client
	timeout       time.Duration
	attemptWindow time.Duration
}

// NewLoginThrottle wires the throttle onto the shared Redis client. The
// attempt window bounds how long a failure counter survives without reset.
func NewLoginThrottle(client *redis.Client, timeout, attemptWindow time.Duration) *LoginThrottle {
	return &LoginThrottle{client: client, timeout: timeout, attemptWindow: attemptWindow}
}

// RecordFailure atomically increments the failure counter and returns the new
// count. INCR keeps concurrent failed logins from undercounting.
func (t *LoginThrottle) RecordFailure(ctx context.Context, username string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := loginAttemptKeyPrefix + username
	count, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}

	// Counter expires with the window so abandoned usernames do not
	// accumulate state forever.
	if err := t.client.Expire(ctx, key, t.attemptWindow).Err(); err != nil {
		return 0, fmt.Errorf("redis expire %s: %w", key, err)
	}

	return int(count), nil
}

// FailureCount returns the current number of recorded failures.
func (t *LoginThrottle) FailureCount(ctx context.Context, username string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := loginAttemptKeyPrefix + username
	count, err := t.client.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("redis get %s: %w", key, err)
	}

	return count, nil
}

// Reset clears the failure counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := loginAttemptKeyPrefix + username
	if err := t.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return nil
}

// Lock marks the account locked for the given duration and resets the
// failure counter.
func (t *LoginThrottle) Lock(ctx context.Context, username string, duration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := accountLockKeyPrefix + username
	if err := t.client.Set(ctx, key, "locked", duration).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}

	return t.Reset(ctx, username)
}

// IsLocked reports whether a lock marker exists for the username.
func (t *LoginThrottle) IsLocked(ctx context.Context, username string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := accountLockKeyPrefix + username
	n, err := t.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists %s: %w", key, err)
	}

	return n > 0, nil
}

// RemainingLockSeconds returns how long the lock still holds, zero when the
// account is not locked.
func (t *LoginThrottle) RemainingLockSeconds(ctx context.Context, username string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := accountLockKeyPrefix + username
	ttl, err := t.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis ttl %s: %w", key, err)
	}
	if ttl <= 0 {
		return 0, nil
	}

	return int64(ttl.Seconds()), nil
}

// Unlock removes the lock marker and failure counter. Used by the admin
// unlock endpoint.
func (t *LoginThrottle) Unlock(ctx context.Context, username string) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	key := accountLockKeyPrefix + username
	if err := t.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}

	return t.Reset(ctx, username)
}
