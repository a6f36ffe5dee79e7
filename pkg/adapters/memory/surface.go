package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// OpKind names a drawing operation.
type OpKind string

const (
	OpInit      OpKind = "init"
	OpImage     OpKind = "image"
	OpSetSource OpKind = "set_source"
	OpAnimate   OpKind = "animate"
	OpRect      OpKind = "rect"
	OpClear     OpKind = "clear"
)

// Op is one recorded drawing operation.
type Op struct {
	Kind     OpKind        `json:"kind"`
	At       time.Time     `json:"at"`
	Size     domain.Size   `json:"size,omitzero"`
	Src      string        `json:"src,omitempty"`
	Bounds   domain.Rect   `json:"bounds,omitzero"`
	Fill     string        `json:"fill,omitempty"`
	X        float64       `json:"x,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// ErrNotInitialized is returned when drawing on a surface before Init.
var ErrNotInitialized = errors.New("surface not initialized")

// Surface implements ports.Surface by recording every operation.
// Animations wait on the configured clock, so with a virtual clock a whole
// trial replays instantly. Safe for concurrent use.
type Surface struct {
	mu      sync.Mutex
	clock   ports.Clock
	failOn  map[OpKind]error
	ops     []Op
	size    domain.Size
	ready   bool
	sprites []*Sprite
	rects   []domain.Rect
}

// SurfaceOption configures a Surface.
type SurfaceOption func(*Surface)

// WithClock sets the clock animations wait on. Defaults to a virtual clock.
func WithClock(c ports.Clock) SurfaceOption {
	return func(s *Surface) {
		s.clock = c
	}
}

// WithFailure makes every operation of the given kind fail with err.
func WithFailure(kind OpKind, err error) SurfaceOption {
	return func(s *Surface) {
		s.failOn[kind] = err
	}
}

// NewSurface creates a recording surface.
func NewSurface(opts ...SurfaceOption) *Surface {
	s := &Surface{failOn: make(map[OpKind]error)}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = clock.NewVirtual(time.Time{})
	}
	return s
}

// record appends op unless a failure is configured for its kind. Caller holds mu.
func (s *Surface) record(op Op) error {
	if err := s.failOn[op.Kind]; err != nil {
		return err
	}
	op.At = s.clock.Now()
	s.ops = append(s.ops, op)
	return nil
}

// Init resets the canvas.
func (s *Surface) Init(ctx context.Context, size domain.Size) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("invalid canvas size %s", size)
	}
	if err := s.record(Op{Kind: OpInit, Size: size}); err != nil {
		return err
	}
	s.size = size
	s.ready = true
	s.sprites = nil
	s.rects = nil
	return nil
}

// Image draws an image and returns its sprite.
func (s *Surface) Image(src string, bounds domain.Rect) (ports.Sprite, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return nil, ErrNotInitialized
	}
	if err := s.record(Op{Kind: OpImage, Src: src, Bounds: bounds}); err != nil {
		return nil, err
	}
	sp := &Sprite{surface: s, src: src, bounds: bounds}
	s.sprites = append(s.sprites, sp)
	return sp, nil
}

// Rect draws a filled rectangle.
func (s *Surface) Rect(bounds domain.Rect, fill string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return ErrNotInitialized
	}
	if err := s.record(Op{Kind: OpRect, Bounds: bounds, Fill: fill}); err != nil {
		return err
	}
	s.rects = append(s.rects, bounds)
	return nil
}

// Clear removes all drawn content. The canvas stays initialized.
func (s *Surface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(Op{Kind: OpClear}); err != nil {
		return err
	}
	s.sprites = nil
	s.rects = nil
	return nil
}

// Ops returns a copy of all recorded operations.
func (s *Surface) Ops() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Op, len(s.ops))
	copy(out, s.ops)
	return out
}

// OpsOf returns the recorded operations of one kind.
func (s *Surface) OpsOf(kind OpKind) []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Op
	for _, op := range s.ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Reset forgets recorded operations and drawn content.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops = nil
	s.sprites = nil
	s.rects = nil
	s.ready = false
}

// Size is the current canvas size.
func (s *Surface) Size() domain.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Rects returns the rectangles currently on the canvas.
func (s *Surface) Rects() []domain.Rect {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Rect, len(s.rects))
	copy(out, s.rects)
	return out
}

// Sprites returns the sprites currently on the canvas.
func (s *Surface) Sprites() []*Sprite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Sprite, len(s.sprites))
	copy(out, s.sprites)
	return out
}

// Sprite is an image recorded on a memory Surface.
type Sprite struct {
	surface *Surface
	src     string
	bounds  domain.Rect
}

// SetSource swaps the image reference.
func (sp *Sprite) SetSource(src string) error {
	s := sp.surface
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.record(Op{Kind: OpSetSource, Src: src}); err != nil {
		return err
	}
	sp.src = src
	return nil
}

// Animate records the motion, waits d on the surface clock and lands on x.
func (sp *Sprite) Animate(ctx context.Context, x float64, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := sp.surface
	s.mu.Lock()
	err := s.record(Op{Kind: OpAnimate, Src: sp.src, X: x, Duration: d})
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if err := s.clock.Sleep(ctx, d); err != nil {
		return err
	}

	s.mu.Lock()
	sp.bounds.X = x
	s.mu.Unlock()
	return nil
}

// Source is the current image reference.
func (sp *Sprite) Source() string {
	sp.surface.mu.Lock()
	defer sp.surface.mu.Unlock()
	return sp.src
}

// Bounds is the current position and size.
func (sp *Sprite) Bounds() domain.Rect {
	sp.surface.mu.Lock()
	defer sp.surface.mu.Unlock()
	return sp.bounds
}
