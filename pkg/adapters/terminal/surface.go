// Package terminal renders trials on a character terminal with tcell.
//
// Canvas pixels are scaled down to cells. A terminal cell is about twice as
// tall as it is wide, so one row covers twice the pixels of one column.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/gdamore/tcell/v2"
)

// DefaultFrameInterval paces animation redraws at roughly 60 frames per second.
const DefaultFrameInterval = 16 * time.Millisecond

// ErrNotInitialized is returned when drawing on a surface before Init.
var ErrNotInitialized = errors.New("surface not initialized")

var (
	canvasStyle = tcell.StyleDefault.Background(tcell.ColorWhite).Foreground(tcell.ColorBlack)
	spriteStyle = tcell.StyleDefault.Background(tcell.ColorSteelBlue).Foreground(tcell.ColorWhite)
)

// Surface implements ports.Surface on a tcell.Screen.
// The caller owns the screen: Init and Fini are not called here.
type Surface struct {
	mu      sync.Mutex
	screen  tcell.Screen
	clock   ports.Clock
	frame   time.Duration
	size    domain.Size
	ready   bool
	scale   float64
	offX    int
	offY    int
	sprites []*sprite
	rects   []fillRect
}

type fillRect struct {
	bounds domain.Rect
	style  tcell.Style
}

// Option configures a Surface.
type Option func(*Surface)

// WithClock sets the clock animations are paced on. Defaults to the system clock.
func WithClock(c ports.Clock) Option {
	return func(s *Surface) {
		s.clock = c
	}
}

// WithFrameInterval sets the delay between animation frames.
func WithFrameInterval(d time.Duration) Option {
	return func(s *Surface) {
		if d > 0 {
			s.frame = d
		}
	}
}

// NewSurface creates a surface drawing on screen.
func NewSurface(screen tcell.Screen, opts ...Option) *Surface {
	s := &Surface{
		screen: screen,
		clock:  clock.NewSystem(),
		frame:  DefaultFrameInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Init fits a canvas of the given pixel size into the screen and clears it.
func (s *Surface) Init(ctx context.Context, size domain.Size) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid canvas size %s", size)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cols, rows := s.screen.Size()
	if cols <= 0 || rows <= 0 {
		return fmt.Errorf("terminal has no drawable area (%dx%d)", cols, rows)
	}

	s.scale = math.Max(float64(size.Width)/float64(cols), float64(size.Height)/float64(2*rows))
	s.offX = (cols - int(float64(size.Width)/s.scale)) / 2
	s.offY = (rows - int(float64(size.Height)/(2*s.scale))) / 2
	s.size = size
	s.ready = true
	s.sprites = nil
	s.rects = nil
	s.redraw()
	return nil
}

// Image draws src as a labelled block at bounds.
func (s *Surface) Image(src string, bounds domain.Rect) (ports.Sprite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, ErrNotInitialized
	}
	sp := &sprite{surface: s, src: src, bounds: bounds}
	s.sprites = append(s.sprites, sp)
	s.redraw()
	return sp, nil
}

// Rect draws a filled block. Rects are layered above every image.
func (s *Surface) Rect(bounds domain.Rect, fill string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotInitialized
	}
	color, err := parseFill(fill)
	if err != nil {
		return err
	}
	s.rects = append(s.rects, fillRect{bounds: bounds, style: tcell.StyleDefault.Foreground(color).Background(color)})
	s.redraw()
	return nil
}

// Clear removes every image and rect, leaving an empty canvas.
func (s *Surface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sprites = nil
	s.rects = nil
	if s.ready {
		s.redraw()
	}
	return nil
}

// CellAt maps a canvas pixel to its screen cell.
func (s *Surface) CellAt(x, y float64) (col, row int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.col(x), s.row(y)
}

func (s *Surface) col(x float64) int { return s.offX + int(math.Floor(x/s.scale)) }
func (s *Surface) row(y float64) int { return s.offY + int(math.Floor(y/(2*s.scale))) }

// redraw paints the whole canvas. Caller holds mu.
func (s *Surface) redraw() {
	s.screen.Clear()
	s.fill(domain.Rect{W: float64(s.size.Width), H: float64(s.size.Height)}, ' ', canvasStyle)

	for _, sp := range s.sprites {
		s.fill(sp.bounds, ' ', spriteStyle)
		s.label(sp.bounds, filepath.Base(sp.src))
	}
	for _, r := range s.rects {
		s.fill(r.bounds, '█', r.style)
	}
	s.screen.Show()
}

// fill paints r clipped to the canvas. Caller holds mu.
func (s *Surface) fill(r domain.Rect, ch rune, style tcell.Style) {
	x0, y0, x1, y1 := s.clip(r)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			s.screen.SetContent(x, y, ch, nil, style)
		}
	}
}

// label centers text inside r, truncated to its width.
func (s *Surface) label(r domain.Rect, text string) {
	x0, y0, x1, y1 := s.clip(r)
	width := x1 - x0
	if width <= 0 || y1 <= y0 {
		return
	}
	runes := []rune(text)
	if len(runes) > width {
		runes = runes[:width]
	}
	x := x0 + (width-len(runes))/2
	y := y0 + (y1-y0)/2
	for i, ch := range runes {
		s.screen.SetContent(x+i, y, ch, nil, spriteStyle)
	}
}

// clip converts r to a half-open cell range inside the canvas.
func (s *Surface) clip(r domain.Rect) (x0, y0, x1, y1 int) {
	cw := float64(s.size.Width)
	ch := float64(s.size.Height)
	left, top := math.Max(r.X, 0), math.Max(r.Y, 0)
	right, bottom := math.Min(r.X+r.W, cw), math.Min(r.Y+r.H, ch)
	if right <= left || bottom <= top {
		return 0, 0, 0, 0
	}
	return s.col(left), s.row(top), s.col(right), s.row(bottom)
}

// parseFill accepts "#rgb", "#rrggbb" and color names known to tcell.
func parseFill(fill string) (tcell.Color, error) {
	if strings.HasPrefix(fill, "#") && len(fill) == 4 {
		fill = "#" + strings.Repeat(fill[1:2], 2) + strings.Repeat(fill[2:3], 2) + strings.Repeat(fill[3:4], 2)
	}
	color := tcell.GetColor(fill)
	if color == tcell.ColorDefault {
		return color, fmt.Errorf("unknown fill color %q", fill)
	}
	return color, nil
}

type sprite struct {
	surface *Surface
	src     string
	bounds  domain.Rect
}

func (sp *sprite) SetSource(src string) error {
	s := sp.surface
	s.mu.Lock()
	defer s.mu.Unlock()
	sp.src = src
	s.redraw()
	return nil
}

// Animate tweens the sprite linearly, redrawing once per frame.
func (sp *sprite) Animate(ctx context.Context, x float64, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := sp.surface

	s.mu.Lock()
	from := sp.bounds.X
	s.mu.Unlock()

	start := s.clock.Now()
	for {
		elapsed := s.clock.Now().Sub(start)
		progress := 1.0
		if d > 0 && elapsed < d {
			progress = float64(elapsed) / float64(d)
		}

		s.mu.Lock()
		sp.bounds.X = from + (x-from)*progress
		s.redraw()
		s.mu.Unlock()

		if progress >= 1 {
			return nil
		}
		if err := s.clock.Sleep(ctx, min(s.frame, d-elapsed)); err != nil {
			return err
		}
	}
}
