/*
Package dsl provides a fluent Go builder for occlusion experiments.

It produces the same loosely typed parameter maps an experiment file holds, so
trials built in code go through the exact validation and defaulting of the
plugin. This is useful for generated designs, unit tests and IDE completion.

Example usage:

	b := dsl.New()

	b.Trial().
		Stimuli("a.png", "b.png", "c.png").
		Cycle(800).
		Right()

	b.Trial().
		Stimuli("c.png", "a.png").
		NoOccluder().
		Data("condition", "visible")

	params := b.Build()
	trials, err := runner.NewRunner(reg).Expand(params)
*/
package dsl
