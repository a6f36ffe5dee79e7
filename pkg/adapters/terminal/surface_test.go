package terminal_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/terminal"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports/tests"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 25)
	t.Cleanup(screen.Fini)
	return screen
}

func cell(screen tcell.SimulationScreen, x, y int) (rune, tcell.Style) {
	cells, w, _ := screen.GetContents()
	c := cells[y*w+x]
	if len(c.Runes) == 0 {
		return ' ', c.Style
	}
	return c.Runes[0], c.Style
}

func row(screen tcell.SimulationScreen, y int) string {
	_, w, _ := screen.GetContents()
	var b strings.Builder
	for x := 0; x < w; x++ {
		r, _ := cell(screen, x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func TestSurface_Contract(t *testing.T) {
	tests.SurfaceContractTest(t, terminal.NewSurface(newScreen(t), terminal.WithClock(clock.NewVirtual(time.Time{}))))
}

func TestSurface_Layout(t *testing.T) {
	screen := newScreen(t)
	s := terminal.NewSurface(screen)
	require.NoError(t, s.Init(context.Background(), domain.Size{Width: 400, Height: 400}))

	// 8px per column and 16px per row, centered horizontally.
	col, r := s.CellAt(0, 0)
	assert.Equal(t, 15, col)
	assert.Equal(t, 0, r)
	col, r = s.CellAt(399, 399)
	assert.Equal(t, 64, col)
	assert.Equal(t, 24, r)

	_, style := cell(screen, 40, 12)
	_, bg, _ := style.Decompose()
	assert.Equal(t, tcell.ColorWhite, bg)

	_, style = cell(screen, 5, 12)
	_, bg, _ = style.Decompose()
	assert.NotEqual(t, tcell.ColorWhite, bg, "outside the canvas stays blank")
}

func TestSurface_ImageAndAnimate(t *testing.T) {
	screen := newScreen(t)
	clk := clock.NewVirtual(time.Time{})
	s := terminal.NewSurface(screen, terminal.WithClock(clk))
	ctx := context.Background()
	require.NoError(t, s.Init(ctx, domain.Size{Width: 400, Height: 400}))

	sp, err := s.Image("stimuli/a.png", domain.Rect{X: 150, Y: 150, W: 100, H: 100})
	require.NoError(t, err)
	assert.Equal(t, 37, strings.Index(row(screen, 12), "a.png"))

	require.NoError(t, sp.SetSource("stimuli/b.png"))
	assert.Contains(t, row(screen, 12), "b.png")
	assert.NotContains(t, row(screen, 12), "a.png")

	require.NoError(t, sp.Animate(ctx, 0, 500*time.Millisecond))
	assert.Equal(t, 18, strings.Index(row(screen, 12), "b.png"))
	assert.Equal(t, 500*time.Millisecond, clk.Elapsed())
	assert.Len(t, clk.Waits(), 32, "31 full frames and a 4ms remainder")
}

func TestSurface_AnimateCancelledMidway(t *testing.T) {
	screen := newScreen(t)
	s := terminal.NewSurface(screen, terminal.WithClock(clock.NewSystem()), terminal.WithFrameInterval(time.Millisecond))
	require.NoError(t, s.Init(context.Background(), domain.Size{Width: 400, Height: 400}))

	sp, err := s.Image("a.png", domain.Rect{X: 150, Y: 150, W: 100, H: 100})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, sp.Animate(ctx, 0, time.Hour), context.DeadlineExceeded)
}

func TestSurface_OccluderCoversImage(t *testing.T) {
	screen := newScreen(t)
	s := terminal.NewSurface(screen)
	require.NoError(t, s.Init(context.Background(), domain.Size{Width: 400, Height: 400}))

	_, err := s.Image("a.png", domain.Rect{X: 150, Y: 150, W: 100, H: 100})
	require.NoError(t, err)
	require.NoError(t, s.Rect(domain.Rect{X: 150, Y: 0, W: 100, H: 400}, "#000"))

	ch, style := cell(screen, 40, 12)
	fg, _, _ := style.Decompose()
	assert.Equal(t, '█', ch)
	assert.Equal(t, tcell.NewHexColor(0x000000), fg)
	assert.NotContains(t, row(screen, 12), "a.png")

	require.NoError(t, s.Clear())
	ch, _ = cell(screen, 40, 12)
	assert.Equal(t, ' ', ch)
}

func TestSurface_Errors(t *testing.T) {
	s := terminal.NewSurface(newScreen(t))

	_, err := s.Image("a.png", domain.Rect{})
	assert.ErrorIs(t, err, terminal.ErrNotInitialized)
	assert.ErrorIs(t, s.Rect(domain.Rect{}, "#000"), terminal.ErrNotInitialized)

	assert.Error(t, s.Init(context.Background(), domain.Size{Width: 0, Height: 400}))

	require.NoError(t, s.Init(context.Background(), domain.Size{Width: 400, Height: 400}))
	assert.Error(t, s.Rect(domain.Rect{W: 10, H: 10}, "not-a-color"))
}
