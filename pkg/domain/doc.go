/*
Package domain contains the core models of the occlusion trial runtime.

It defines the trial configuration, the animation steps derived from it, the
phases of the trial state machine and the result record handed to the host.
This package is kept pure and free of I/O, rendering or persistence concerns.

# Key Entities

  - TrialConfig: The resolved, immutable parameters of one trial.
  - AnimationStep: One half of a motion cycle (outward or inward) with a target offset.
  - Phase: A state of the trial timeline (Idle, PreDelay, SlideOut, SlideIn, PostDelay, Done).
  - TrialResult: The completion record written to the host's data sink.
*/
package domain
