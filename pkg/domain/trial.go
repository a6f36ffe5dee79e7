package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/aretw0/occlusion/pkg/schema"
)

// TrialType is the type tag of the animated-occlusion trial.
const TrialType = "vsl-animate-occlusion"

// Defaults applied to omitted parameters.
const (
	DefaultTimingCycle       = 1000 // ms
	DefaultTimingPostTrial   = 1000 // ms
	DefaultTimingPreMovement = 500  // ms
	DefaultOccludeCenter     = true
	DefaultInitialDirection  = DirectionLeft
)

// MaxTiming bounds every timing parameter (ms): one day.
const MaxTiming = 24 * 60 * 60 * 1000

var (
	DefaultCanvasSize = Size{Width: 400, Height: 400}
	DefaultImageSize  = Size{Width: 100, Height: 100}
)

// Direction is the side the first image moves towards.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// TableIndex maps a direction to its motion table: right moves first to the
// right edge (0), anything else moves first to the left edge (1).
func (d Direction) TableIndex() int {
	if d == DirectionRight {
		return 0
	}
	return 1
}

// Valid reports whether d is one of the known directions.
func (d Direction) Valid() bool {
	return d == DirectionLeft || d == DirectionRight
}

// TrialConfig is the resolved configuration of one trial.
// All timings are in milliseconds.
type TrialConfig struct {
	Type              string         `json:"type" yaml:"type"`
	Stimuli           []string       `json:"stimuli" yaml:"stimuli"`
	TimingCycle       int            `json:"timing_cycle" yaml:"timing_cycle"`
	CanvasSize        Size           `json:"canvas_size" yaml:"canvas_size"`
	ImageSize         Size           `json:"image_size" yaml:"image_size"`
	InitialDirection  Direction      `json:"initial_direction" yaml:"initial_direction"`
	OccludeCenter     bool           `json:"occlude_center" yaml:"occlude_center"`
	TimingPostTrial   int            `json:"timing_post_trial" yaml:"timing_post_trial"`
	TimingPreMovement int            `json:"timing_pre_movement" yaml:"timing_pre_movement"`
	Data              map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// DefaultTrialConfig returns a config holding every default and no stimuli.
func DefaultTrialConfig() TrialConfig {
	return TrialConfig{
		Type:              TrialType,
		TimingCycle:       DefaultTimingCycle,
		CanvasSize:        DefaultCanvasSize,
		ImageSize:         DefaultImageSize,
		InitialDirection:  DefaultInitialDirection,
		OccludeCenter:     DefaultOccludeCenter,
		TimingPostTrial:   DefaultTimingPostTrial,
		TimingPreMovement: DefaultTimingPreMovement,
		Data:              map[string]any{},
	}
}

// Cycle is the duration of one full slide-out + slide-in motion.
func (c TrialConfig) Cycle() time.Duration {
	return time.Duration(c.TimingCycle) * time.Millisecond
}

// PreMovement is the wait before the first image starts moving.
func (c TrialConfig) PreMovement() time.Duration {
	return time.Duration(c.TimingPreMovement) * time.Millisecond
}

// PostTrial is the wait between the data write and the host advancing.
func (c TrialConfig) PostTrial() time.Duration {
	return time.Duration(c.TimingPostTrial) * time.Millisecond
}

// CenterX is the horizontal offset that centers an image on the canvas.
func (c TrialConfig) CenterX() float64 {
	return float64(c.CanvasSize.Width)/2 - float64(c.ImageSize.Width)/2
}

// ImageRect is where the stimulus is first drawn: centered on the canvas.
func (c TrialConfig) ImageRect() Rect {
	return Rect{
		X: c.CenterX(),
		Y: float64(c.CanvasSize.Height)/2 - float64(c.ImageSize.Height)/2,
		W: float64(c.ImageSize.Width),
		H: float64(c.ImageSize.Height),
	}
}

// OccluderRect is the opaque bar hiding the swap point: image wide, full canvas height.
func (c TrialConfig) OccluderRect() Rect {
	return Rect{
		X: c.CenterX(),
		Y: 0,
		W: float64(c.ImageSize.Width),
		H: float64(c.CanvasSize.Height),
	}
}

// ExpectedDuration is the nominal wall time of the trial.
// Delays that are not positive are skipped, as the runtime does.
func (c TrialConfig) ExpectedDuration() time.Duration {
	d := time.Duration(len(c.Stimuli)) * 2 * (c.Cycle() / 2)
	if c.TimingPreMovement > 0 {
		d += c.PreMovement()
	}
	if c.TimingPostTrial > 0 {
		d += c.PostTrial()
	}
	return d
}

// maxTotalMS is the longest trial, in ms, a time.Duration can hold.
const maxTotalMS = math.MaxInt64 / int64(time.Millisecond)

func appendDelayErrors(errs []error, key string, ms int) []error {
	switch {
	case ms < 0:
		return append(errs, &schema.ValidationError{Key: key, Reason: "must not be negative", Value: ms})
	case ms > MaxTiming:
		return append(errs, &schema.ValidationError{Key: key, Reason: fmt.Sprintf("must not exceed %d", MaxTiming), Value: ms})
	}
	return errs
}

// Validate checks the config for values that would produce a degenerate trial.
// All failures are collected and returned as a single ConfigurationError.
func (c TrialConfig) Validate() error {
	var errs []error

	if len(c.Stimuli) == 0 {
		errs = append(errs, &schema.ValidationError{Key: "stimuli", Reason: ErrEmptyStimuli.Error()})
	}
	for i, s := range c.Stimuli {
		if s == "" {
			errs = append(errs, &schema.ValidationError{Key: fmt.Sprintf("stimuli[%d]", i), Reason: "must not be empty"})
		}
	}
	switch {
	case c.TimingCycle <= 0:
		errs = append(errs, &schema.ValidationError{Key: "timing_cycle", Reason: "must be positive", Value: c.TimingCycle})
	case c.TimingCycle > MaxTiming:
		errs = append(errs, &schema.ValidationError{Key: "timing_cycle", Reason: fmt.Sprintf("must not exceed %d", MaxTiming), Value: c.TimingCycle})
	case len(c.Stimuli) > 0 && int64(c.TimingCycle) > (maxTotalMS-2*MaxTiming)/int64(len(c.Stimuli)):
		errs = append(errs, &schema.ValidationError{Key: "timing_cycle", Reason: "total trial duration is out of range", Value: c.TimingCycle})
	}
	if c.CanvasSize.Width <= 0 || c.CanvasSize.Height <= 0 {
		errs = append(errs, &schema.ValidationError{Key: "canvas_size", Reason: "dimensions must be positive", Value: c.CanvasSize})
	}
	if c.ImageSize.Width <= 0 || c.ImageSize.Height <= 0 {
		errs = append(errs, &schema.ValidationError{Key: "image_size", Reason: "dimensions must be positive", Value: c.ImageSize})
	}
	if !c.InitialDirection.Valid() {
		errs = append(errs, &schema.ValidationError{Key: "initial_direction", Reason: `must be "left" or "right"`, Value: string(c.InitialDirection)})
	}
	errs = appendDelayErrors(errs, "timing_pre_movement", c.TimingPreMovement)
	errs = appendDelayErrors(errs, "timing_post_trial", c.TimingPostTrial)

	if len(errs) > 0 {
		return &ConfigurationError{TrialType: c.Type, Err: &schema.AggregateError{Errors: errs}}
	}
	return nil
}
