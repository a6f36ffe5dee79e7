package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseEnter EventType = "phase_enter"
	EventPhaseLeave EventType = "phase_leave"
	EventImageSwap  EventType = "image_swap"
	EventDataWrite  EventType = "data_write"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	TrialIndex int       `json:"trial_index"`
}

// PhaseEvent represents entry or exit from a timeline phase.
type PhaseEvent struct {
	EventBase
	Phase Phase `json:"phase"`
	// ImageIndex is the cursor value when the event fired.
	ImageIndex int `json:"image_index"`
	// Duration is the time spent in the phase. Set on leave events only.
	Duration time.Duration `json:"duration,omitempty"`
}

// SwapEvent is emitted when the image source is replaced by the next stimulus.
type SwapEvent struct {
	EventBase
	ImageIndex int         `json:"image_index"`
	Stimulus   string      `json:"stimulus"`
	Table      int         `json:"table"`
	Steps      MotionTable `json:"steps"`
}

// DataEvent is emitted once the result has been handed to the host.
type DataEvent struct {
	EventBase
	Result  TrialResult   `json:"result"`
	Elapsed time.Duration `json:"elapsed"`
}

// LifecycleHooks defines callbacks for trial observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnPhaseEnter func(context.Context, *PhaseEvent)
	OnPhaseLeave func(context.Context, *PhaseEvent)
	OnImageSwap  func(context.Context, *SwapEvent)
	OnDataWrite  func(context.Context, *DataEvent)
}
