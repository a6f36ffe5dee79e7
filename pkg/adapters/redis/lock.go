package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

// DefaultRetryInterval is how often a contended lock is retried.
const DefaultRetryInterval = 100 * time.Millisecond

// releaseScript deletes the lock only if this holder still owns it.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// refreshScript extends the lock only if this holder still owns it.
const refreshScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

// Locker implements ports.DistributedLocker using Redis.
type Locker struct {
	client *backend.Client
	prefix string
	retry  time.Duration
}

// NewLocker creates a new Redis locker.
func NewLocker(client *backend.Client, prefix string) *Locker {
	return &Locker{
		client: client,
		prefix: prefix,
		retry:  DefaultRetryInterval,
	}
}

// Lock acquires a distributed lock for the given key using SET NX PX,
// polling until it is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis error acquiring lock: %w", err)
		}
		if ok {
			return &lease{client: l.client, key: lockKey, token: token}, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// lease is one held lock, identified by its random token.
type lease struct {
	client *backend.Client
	key    string
	token  string
}

func (l *lease) Refresh(ctx context.Context, ttl time.Duration) error {
	n, err := l.client.Eval(ctx, refreshScript, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("redis error refreshing lock: %w", err)
	}
	if n == 0 {
		return domain.ErrLockLost
	}
	return nil
}

func (l *lease) Unlock(ctx context.Context) error {
	return l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err()
}
