/*
Package occlusion implements the animated-occlusion trial used in visual statistical learning experiments.

A sequence of images is presented one at a time. Each image slides from the center of the canvas to one
edge and back, alternating direction image by image, while an optional opaque bar hides the center. The
image is swapped while it is behind the bar, so the participant perceives it as changing during occlusion.

# Architecture

The package is the plugin. The host supplies the rest through ports:

  - ports.Surface draws the canvas (memory recorder, tcell terminal).
  - ports.Block is the host side of one trial: its index, the data sink and the signal to advance.
  - ports.Clock times the delays (system clock, or a virtual clock for simulation).

The trial itself runs as an explicit state machine (Idle, PreDelay, SlideOut, SlideIn, PostDelay, Done)
where every wait is awaited in place, so one animation step never starts before the previous one completes.

# Usage

	p := occlusion.New()

	trials, err := p.Create(map[string]any{
		"stimuli":           []string{"img/a.png", "img/b.png"},
		"initial_direction": "right",
	})
	if err != nil {
		log.Fatal(err) // *domain.ConfigurationError
	}

	// surface and block come from the host (see pkg/runner)
	if err := p.Run(ctx, surface, block, trials[0]); err != nil {
		log.Fatal(err)
	}

The record handed to the block has the shape:

	{"trial_type": "vsl-animate-occlusion", "trial_index": 3, "stimuli": "[\"img/a.png\",\"img/b.png\"]"}

merged with the trial's data object, whose keys win over the base keys.
*/
package occlusion
