package runner

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// SignalManager derives a context cancelled on SIGINT or SIGTERM, so a running
// experiment stops at its next wait and the current trial writes nothing.
type SignalManager struct {
	parent context.Context
	ctx    context.Context
	cancel context.CancelFunc
}

// NewSignalManager creates a new manager and immediately starts listening for signals.
func NewSignalManager(parent context.Context) *SignalManager {
	sm := &SignalManager{parent: parent}
	sm.Reset()
	return sm
}

// Context returns the current signal context.
func (sm *SignalManager) Context() context.Context {
	return sm.ctx
}

// Interrupted reports whether a signal (or the parent) cancelled the context.
func (sm *SignalManager) Interrupted() bool {
	return sm.ctx.Err() != nil
}

// Reset re-arms the signal listener, e.g. before the next participant.
func (sm *SignalManager) Reset() {
	if sm.cancel != nil {
		sm.cancel()
	}
	sm.ctx, sm.cancel = signal.NotifyContext(sm.parent, os.Interrupt, syscall.SIGTERM)
}

// Stop permanently stops the signal listener.
func (sm *SignalManager) Stop() {
	if sm.cancel != nil {
		sm.cancel()
	}
}
