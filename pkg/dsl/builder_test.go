package dsl_test

import (
	"testing"

	"github.com/aretw0/occlusion"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/dsl"
	"github.com/aretw0/occlusion/pkg/registry"
	"github.com/aretw0/occlusion/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SimpleExperiment(t *testing.T) {
	// 1. Build the experiment using DSL
	b := dsl.New().Default("timing_cycle", 800)

	b.Trial().
		Stimuli("a.png", "b.png").
		Right().
		Canvas(600, 300).
		Image(80, 80).
		PreMovement(0).
		Data("block", 1)

	b.Trial().
		Stimuli("c.png").
		Cycle(1200).
		NoOccluder().
		PostTrial(250)

	// 2. Resolve through the plugin
	r := runner.NewRunner(registry.NewRegistry(occlusion.New()))
	trials, err := r.Expand(b.Build())
	require.NoError(t, err)
	require.Len(t, trials, 2)

	first := trials[0]
	assert.Equal(t, []string{"a.png", "b.png"}, first.Stimuli)
	assert.Equal(t, domain.DirectionRight, first.InitialDirection)
	assert.Equal(t, 800, first.TimingCycle)
	assert.Equal(t, domain.Size{Width: 600, Height: 300}, first.CanvasSize)
	assert.Equal(t, domain.Size{Width: 80, Height: 80}, first.ImageSize)
	assert.Equal(t, 0, first.TimingPreMovement)
	assert.Equal(t, map[string]any{"block": 1}, first.Data)

	second := trials[1]
	assert.Equal(t, 1200, second.TimingCycle, "trial value wins over the default")
	assert.False(t, second.OccludeCenter)
	assert.Equal(t, 250, second.TimingPostTrial)
	assert.Equal(t, domain.DirectionLeft, second.InitialDirection)
}

func TestBuilder_Counterbalance(t *testing.T) {
	b := dsl.New().Counterbalance()
	b.Trial().Stimuli("a.png")
	b.Trial().Stimuli("b.png")
	b.Trial().Stimuli("c.png").Right()
	b.Trial().Stimuli("d.png")

	var got []any
	for _, p := range b.Build() {
		got = append(got, p["initial_direction"])
	}
	assert.Equal(t, []any{"left", "right", "right", "right"}, got)
	assert.Equal(t, 4, b.Len())
}

func TestBuilder_BuildCopies(t *testing.T) {
	b := dsl.New()
	b.Trial().Stimuli("a.png").Data("k", "v")

	first := b.Build()
	first[0]["data"].(map[string]any)["k"] = "changed"
	first[0]["timing_cycle"] = 1

	second := b.Build()
	assert.Equal(t, "v", second[0]["data"].(map[string]any)["k"])
	assert.NotContains(t, second[0], "timing_cycle")
}

func TestBuilder_InvalidTrialRejected(t *testing.T) {
	b := dsl.New()
	b.Trial().Stimuli().Cycle(-1)

	r := runner.NewRunner(registry.NewRegistry(occlusion.New()))
	_, err := r.Expand(b.Build())

	var cfgErr *domain.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
