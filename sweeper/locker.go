package sweeper

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
)

// DefaultLockKey is the Redis key of the sweep lock.
const DefaultLockKey = "openshelf:lock:hold-sweep"

var (
	// ErrLockHeld is returned by Locker.Lock when another instance is sweeping.
	ErrLockHeld = errors.New("sweep lock is held by another instance")

	// ErrObtainingLockFailed is returned when the lock backend fails.
	ErrObtainingLockFailed = errors.New("obtaining sweep lock failed")
)

// Unlock releases a lock obtained by Locker.Lock.
type Unlock func(ctx context.Context) error

// Locker serializes sweeps across instances.
type Locker interface {
	Lock(ctx context.Context) (Unlock, error)
}

// RedisLocker is a Locker on a single Redis key with a TTL, so a crashed instance cannot keep it.
type RedisLocker struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
}

// NewRedisLocker creates a RedisLocker. An empty key means DefaultLockKey.
func NewRedisLocker(client redislock.RedisClient, key string, ttl time.Duration) *RedisLocker {
	if key == "" {
		key = DefaultLockKey
	}

	return &RedisLocker{client: redislock.New(client), key: key, ttl: ttl}
}

// Lock obtains the key without retrying.
func (l *RedisLocker) Lock(ctx context.Context) (Unlock, error) {
	lock, err := l.client.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockHeld
	}

	if err != nil {
		return nil, errors.Join(ErrObtainingLockFailed, err)
	}

	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return err
		}

		return nil
	}, nil
}

// Key returns the Redis key.
func (l *RedisLocker) Key() string {
	return l.key
}
