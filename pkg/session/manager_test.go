package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/adapters/redis"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLocker records lock traffic.
type fakeLocker struct {
	mu         sync.Mutex
	locks      []string
	unlocks    int
	refreshes  int
	ttl        time.Duration
	lockErr    error
	unlockErr  error
	refreshErr error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.lockErr != nil {
		return nil, f.lockErr
	}
	f.locks = append(f.locks, key)
	f.ttl = ttl
	return fakeLease{f}, nil
}

type fakeLease struct{ f *fakeLocker }

func (l fakeLease) Refresh(ctx context.Context, ttl time.Duration) error {
	l.f.mu.Lock()
	defer l.f.mu.Unlock()
	l.f.refreshes++
	return l.f.refreshErr
}

func (l fakeLease) Unlock(ctx context.Context) error {
	l.f.mu.Lock()
	defer l.f.mu.Unlock()
	l.f.unlocks++
	return l.f.unlockErr
}

func TestManager_Serializes(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	id := "race-test"

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				n := inside.Add(1)
				if n > maxInside.Load() {
					maxInside.Store(n)
				}
				time.Sleep(2 * time.Millisecond)
				inside.Add(-1)
				return manager.Store().Append(ctx, id, domain.TrialResult{TrialIndex: index})
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load(), "critical sections overlapped")

	results, err := manager.Results(ctx, id)
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestManager_ResultsAndDelete(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	_, err := manager.Results(ctx, "nobody")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Append(ctx, "p-1", domain.TrialResult{TrialType: domain.TrialType}))
	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"p-1"}, ids)

	require.NoError(t, manager.Delete(ctx, "p-1"))
	_, err = manager.Results(ctx, "p-1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &fakeLocker{}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)

	err := manager.WithLock(context.Background(), "p-9", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	assert.Equal(t, []string{"p-9"}, locker.locks)
	assert.Equal(t, 1, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.ttl)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	boom := errors.New("redis unavailable")
	manager := session.NewManager(memory.NewStore(), session.WithLocker(&fakeLocker{lockErr: boom}))

	called := false
	err := manager.WithLock(context.Background(), "p-9", func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, called)
}

func TestManager_UnlockFailureIsNotFatal(t *testing.T) {
	locker := &fakeLocker{unlockErr: errors.New("lock expired")}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker))

	err := manager.WithLock(context.Background(), "p-9", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
	assert.Equal(t, 1, locker.unlocks)
}

func TestManager_RefreshesLockWhileRunning(t *testing.T) {
	locker := &fakeLocker{}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(30*time.Millisecond),
	)

	err := manager.WithLock(context.Background(), "p-9", func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	})
	require.NoError(t, err)

	locker.mu.Lock()
	defer locker.mu.Unlock()
	assert.GreaterOrEqual(t, locker.refreshes, 2)
	assert.Equal(t, 1, locker.unlocks)
}

func TestManager_LostLockCancelsHolder(t *testing.T) {
	locker := &fakeLocker{refreshErr: domain.ErrLockLost}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(30*time.Millisecond),
	)

	err := manager.WithLock(context.Background(), "p-9", func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
			return errors.New("holder was never cancelled")
		}
	})
	assert.ErrorIs(t, err, domain.ErrLockLost)
}

func TestManager_TransientRefreshErrorKeepsRunning(t *testing.T) {
	locker := &fakeLocker{refreshErr: errors.New("connection reset")}
	manager := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(30*time.Millisecond),
	)

	err := manager.WithLock(context.Background(), "p-9", func(ctx context.Context) error {
		time.Sleep(60 * time.Millisecond)
		return ctx.Err()
	})
	assert.NoError(t, err)
}

// Two replicas share one Redis. The first holds the session longer than the lock TTL.
func TestManager_RedisLockHeldPastTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ttl := 300 * time.Millisecond
	replicaA := session.NewManager(memory.NewStore(),
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(ttl),
	)
	replicaB := session.NewManager(memory.NewStore(),
		session.WithLocker(redis.NewLocker(client, "test:")),
		session.WithLockTTL(ttl),
	)

	err := replicaA.WithLock(context.Background(), "participant-1", func(ctx context.Context) error {
		// Redis time runs well past the TTL while A refreshes in between.
		for range 8 {
			time.Sleep(150 * time.Millisecond)
			mr.FastForward(120 * time.Millisecond)
		}
		if !mr.Exists("test:lock:participant-1") {
			return errors.New("lock expired while held")
		}

		bCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		defer cancel()
		err := replicaB.WithLock(bCtx, "participant-1", func(context.Context) error { return nil })
		if !errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("replica B entered the session while A held it: %v", err)
		}
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("test:lock:participant-1"))
}
