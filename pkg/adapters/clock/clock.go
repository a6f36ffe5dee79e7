// Package clock provides ports.Clock implementations.
package clock

import (
	"context"
	"sync"
	"time"
)

// System is the real wall clock.
type System struct{}

// NewSystem returns the wall clock.
func NewSystem() System { return System{} }

// Now returns the current time with monotonic clock reading.
func (System) Now() time.Time { return time.Now() }

// Sleep waits for d using a timer so that ctx cancellation interrupts the wait.
func (System) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Virtual is a simulated clock. Sleep advances the virtual time instantly,
// which makes a whole trial timeline run without waiting while keeping the
// elapsed time exact. Safe for concurrent use.
type Virtual struct {
	mu    sync.RWMutex
	start time.Time
	now   time.Time
	waits []time.Duration
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{start: start, now: start}
}

// Now returns the current virtual time.
func (v *Virtual) Now() time.Time {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.now
}

// Sleep advances the virtual time by d and records the wait.
func (v *Virtual) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
	v.waits = append(v.waits, d)
	return nil
}

// Advance moves the virtual time forward without recording a wait.
func (v *Virtual) Advance(d time.Duration) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.now = v.now.Add(d)
}

// Elapsed is the virtual time passed since the clock was created.
func (v *Virtual) Elapsed() time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.now.Sub(v.start)
}

// Waits returns every positive Sleep duration in call order.
func (v *Virtual) Waits() []time.Duration {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]time.Duration, len(v.waits))
	copy(out, v.waits)
	return out
}
