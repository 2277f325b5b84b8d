package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLocked is returned when another process holds the run lock
var ErrLocked = errors.New("another run is in progress")

// DefaultLockKey guards scheduled runs across hosts
const DefaultLockKey = "stocksignals:run-lock"

// releaseScript deletes the key only if it still holds our token
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// Lock is a Redis SET NX lock that expires after TTL
type Lock struct {
	rdb   redis.Cmdable
	Key   string
	Token string
	TTL   time.Duration
}

// NewLock creates a lock with a random token
func NewLock(rdb redis.Cmdable, key string, ttl time.Duration) *Lock {
	return &Lock{rdb: rdb, Key: key, Token: uuid.NewString(), TTL: ttl}
}

// Acquire takes the lock or returns ErrLocked
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.rdb.SetNX(ctx, l.Key, l.Token, l.TTL).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release frees the lock if it is still ours
func (l *Lock) Release(ctx context.Context) error {
	if err := l.rdb.Eval(ctx, releaseScript, []string{l.Key}, l.Token).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
