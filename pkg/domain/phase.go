package domain

// Phase is a state of the trial timeline.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhasePreDelay  Phase = "pre_delay"
	PhaseSlideOut  Phase = "slide_out"
	PhaseSlideIn   Phase = "slide_in"
	PhasePostDelay Phase = "post_delay"
	PhaseDone      Phase = "done"
)

// Terminal reports whether no further transition can happen.
func (p Phase) Terminal() bool { return p == PhaseDone }
