package dsl

import "maps"

// Builder collects trials in presentation order.
type Builder struct {
	defaults       map[string]any
	trials         []*TrialBuilder
	counterbalance bool
}

// New creates a new experiment builder.
func New() *Builder {
	return &Builder{defaults: make(map[string]any)}
}

// Default sets a parameter for every trial that does not set it itself.
func (b *Builder) Default(key string, value any) *Builder {
	b.defaults[key] = value
	return b
}

// Counterbalance alternates the first movement between consecutive trials,
// starting from the left. Trials with an explicit direction keep it.
func (b *Builder) Counterbalance() *Builder {
	b.counterbalance = true
	return b
}

// Trial appends a new trial.
func (b *Builder) Trial() *TrialBuilder {
	tb := &TrialBuilder{params: make(map[string]any)}
	b.trials = append(b.trials, tb)
	return tb
}

// Len is the number of trials added so far.
func (b *Builder) Len() int { return len(b.trials) }

// Build returns one parameter map per trial. The maps are fresh copies.
func (b *Builder) Build() []map[string]any {
	out := make([]map[string]any, 0, len(b.trials))
	for i, tb := range b.trials {
		params := maps.Clone(b.defaults)
		maps.Copy(params, tb.params)
		if tb.data != nil {
			params["data"] = maps.Clone(tb.data)
		}
		if _, ok := params["initial_direction"]; !ok && b.counterbalance {
			params["initial_direction"] = "left"
			if i%2 == 1 {
				params["initial_direction"] = "right"
			}
		}
		out = append(out, params)
	}
	return out
}
