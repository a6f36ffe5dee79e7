package ports

import (
	"context"
	"time"
)

// Lease is a held distributed lock.
type Lease interface {
	// Refresh extends the lock to ttl from now.
	// Returns domain.ErrLockLost if the lock is no longer held by this lease.
	Refresh(ctx context.Context, ttl time.Duration) error

	// Unlock releases the lock. Releasing a lock that was lost is a no-op.
	Unlock(ctx context.Context) error
}

// DistributedLocker coordinates access to a session across several server replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is cancelled.
	// The lock expires after ttl unless refreshed or released.
	// The returned Lease MUST be unlocked.
	Lock(ctx context.Context, key string, ttl time.Duration) (Lease, error)
}
