package runner

import (
	"log/slog"

	"github.com/aretw0/occlusion/pkg/ports"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithStore configures the ResultStore receiving every trial record.
func WithStore(store ports.ResultStore) Option {
	return func(r *Runner) {
		r.Store = store
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithSessionID sets the session the records are stored under.
// If not set, a random UUID is used.
func WithSessionID(id string) Option {
	return func(r *Runner) {
		r.SessionID = id
	}
}

// WithHooks registers trial-level callbacks.
func WithHooks(hooks Hooks) Option {
	return func(r *Runner) {
		r.Hooks = hooks
	}
}

// WithClock sets the clock used to time trials. Defaults to the system clock.
func WithClock(c ports.Clock) Option {
	return func(r *Runner) {
		r.Clock = c
	}
}
