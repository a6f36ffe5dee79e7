package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurface_Contract(t *testing.T) {
	tests.SurfaceContractTest(t, memory.NewSurface())
}

func TestSurface_RecordsOperations(t *testing.T) {
	clk := clock.NewVirtual(time.Unix(0, 0))
	s := memory.NewSurface(memory.WithClock(clk))
	ctx := context.Background()

	require.NoError(t, s.Init(ctx, domain.Size{Width: 400, Height: 400}))
	sp, err := s.Image("a.png", domain.Rect{X: 150, Y: 150, W: 100, H: 100})
	require.NoError(t, err)
	require.NoError(t, s.Rect(domain.Rect{X: 150, W: 100, H: 400}, "#000"))
	require.NoError(t, sp.Animate(ctx, 0, 500*time.Millisecond))

	kinds := []memory.OpKind{}
	for _, op := range s.Ops() {
		kinds = append(kinds, op.Kind)
	}
	assert.Equal(t, []memory.OpKind{memory.OpInit, memory.OpImage, memory.OpRect, memory.OpAnimate}, kinds)

	// The animation waited on the clock and landed on its target.
	assert.Equal(t, 500*time.Millisecond, clk.Elapsed())
	assert.Equal(t, 0.0, s.Sprites()[0].Bounds().X)
	assert.Len(t, s.Rects(), 1)

	require.NoError(t, s.Clear())
	assert.Empty(t, s.Sprites())
	assert.Empty(t, s.Rects())
}

func TestSurface_DrawBeforeInit(t *testing.T) {
	s := memory.NewSurface()
	_, err := s.Image("a.png", domain.Rect{})
	assert.ErrorIs(t, err, memory.ErrNotInitialized)
	assert.ErrorIs(t, s.Rect(domain.Rect{}, "#000"), memory.ErrNotInitialized)
}

func TestSurface_InjectedFailure(t *testing.T) {
	boom := errors.New("no display")
	s := memory.NewSurface(memory.WithFailure(memory.OpInit, boom))

	err := s.Init(context.Background(), domain.Size{Width: 10, Height: 10})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, s.Ops())
}

func TestSurface_InvalidSize(t *testing.T) {
	s := memory.NewSurface()
	assert.Error(t, s.Init(context.Background(), domain.Size{Width: 0, Height: 10}))
}
