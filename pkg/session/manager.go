package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serializes access to participant sessions so two runs for the same
// session never interleave their records.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.ResultStore

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new session manager over the given result store.
func NewManager(store ports.ResultStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Results returns the records of a session.
func (m *Manager) Results(ctx context.Context, sessionID string) ([]domain.TrialResult, error) {
	var results []domain.TrialResult
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		results, err = m.store.List(ctx, sessionID)
		return err
	})
	return results, err
}

// Delete removes the session's records.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.Sessions(ctx)
}

// Store returns the underlying result store.
func (m *Manager) Store() ports.ResultStore {
	return m.store
}

// WithLock executes fn while holding the lock for the session.
// A distributed lock is refreshed every third of its TTL until fn returns. If it
// is lost meanwhile, fn's context is cancelled and WithLock returns domain.ErrLockLost.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker == nil {
		return fn(ctx)
	}

	lease, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	defer func() {
		// ctx may already be cancelled here; the release must still go out.
		if err := lease.Unlock(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("failed to release distributed lock (will expire via TTL)",
				"session_id", sessionID,
				"err", err,
			)
		}
	}()

	fnCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.keepAlive(fnCtx, cancel, done, sessionID, lease)
	}()

	err = fn(fnCtx)
	close(done)
	wg.Wait()

	if cause := context.Cause(fnCtx); errors.Is(cause, domain.ErrLockLost) {
		return fmt.Errorf("session %s: %w", sessionID, cause)
	}
	return err
}

// keepAlive refreshes the lease until done is closed. Transient refresh errors are
// retried on the next tick; a lost lock cancels the holder.
func (m *Manager) keepAlive(ctx context.Context, cancel context.CancelCauseFunc, done <-chan struct{}, sessionID string, lease ports.Lease) {
	interval := m.lockTTL / 3
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		err := lease.Refresh(ctx, m.lockTTL)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrLockLost):
			m.logger.Error("distributed lock lost while running", "session_id", sessionID)
			cancel(err)
			return
		default:
			m.logger.Warn("failed to refresh distributed lock", "session_id", sessionID, "err", err)
		}
	}
}
