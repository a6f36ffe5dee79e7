package domain

import (
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when a session ID cannot be found in a result store.
var ErrSessionNotFound = errors.New("session not found")

// ErrPluginNotFound is returned when no plugin is registered for a trial type.
var ErrPluginNotFound = errors.New("plugin not found")

// ErrEmptyStimuli is returned when a trial is configured without any stimulus.
var ErrEmptyStimuli = errors.New("stimuli must contain at least one image")

// ErrTrialNotAdvanced is returned by the host when a plugin finished without signalling Next.
var ErrTrialNotAdvanced = errors.New("trial finished without advancing")

// ErrLockLost is returned when a session's distributed lock was taken over or expired while held.
var ErrLockLost = errors.New("distributed lock lost")

// ConfigurationError reports a malformed trial configuration.
// It is raised at construction time, never mid-animation.
type ConfigurationError struct {
	TrialType string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %v", e.TrialType, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// RenderSurfaceError reports a drawing surface that could not be initialized or drawn on.
// It is fatal to the trial.
type RenderSurfaceError struct {
	Op  string
	Err error
}

func (e *RenderSurfaceError) Error() string {
	return fmt.Sprintf("render surface %s: %v", e.Op, e.Err)
}

func (e *RenderSurfaceError) Unwrap() error { return e.Err }
