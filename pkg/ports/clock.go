package ports

import (
	"context"
	"time"
)

// Clock abstracts time so trials can run in real time or in simulated time.
type Clock interface {
	Now() time.Time

	// Sleep blocks for d. It returns ctx.Err() if ctx is cancelled first.
	// Non-positive durations return immediately.
	Sleep(ctx context.Context, d time.Duration) error
}
