package dsl

import "github.com/aretw0/occlusion/pkg/domain"

// TrialBuilder provides a fluent API for configuring one trial.
type TrialBuilder struct {
	params map[string]any
	data   map[string]any
}

// Stimuli sets the images shown, in order.
func (t *TrialBuilder) Stimuli(srcs ...string) *TrialBuilder {
	t.params["stimuli"] = append([]string(nil), srcs...)
	return t
}

// Cycle sets the time in ms for one image to slide out and back.
func (t *TrialBuilder) Cycle(ms int) *TrialBuilder {
	t.params["timing_cycle"] = ms
	return t
}

// Canvas sets the canvas size in pixels.
func (t *TrialBuilder) Canvas(width, height int) *TrialBuilder {
	t.params["canvas_size"] = []int{width, height}
	return t
}

// Image sets the image size in pixels.
func (t *TrialBuilder) Image(width, height int) *TrialBuilder {
	t.params["image_size"] = []int{width, height}
	return t
}

// Left makes the first image move left first.
func (t *TrialBuilder) Left() *TrialBuilder {
	t.params["initial_direction"] = string(domain.DirectionLeft)
	return t
}

// Right makes the first image move right first.
func (t *TrialBuilder) Right() *TrialBuilder {
	t.params["initial_direction"] = string(domain.DirectionRight)
	return t
}

// NoOccluder leaves the center of the canvas uncovered.
func (t *TrialBuilder) NoOccluder() *TrialBuilder {
	t.params["occlude_center"] = false
	return t
}

// PreMovement sets the delay in ms before the first movement.
func (t *TrialBuilder) PreMovement(ms int) *TrialBuilder {
	t.params["timing_pre_movement"] = ms
	return t
}

// PostTrial sets the delay in ms after the result is written.
func (t *TrialBuilder) PostTrial(ms int) *TrialBuilder {
	t.params["timing_post_trial"] = ms
	return t
}

// Data adds a key to the trial's result record.
func (t *TrialBuilder) Data(key string, value any) *TrialBuilder {
	if t.data == nil {
		t.data = make(map[string]any)
	}
	t.data[key] = value
	return t
}

// Set writes a raw parameter, for keys the builder has no method for.
func (t *TrialBuilder) Set(key string, value any) *TrialBuilder {
	t.params[key] = value
	return t
}
