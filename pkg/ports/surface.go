package ports

import (
	"context"
	"time"

	"github.com/aretw0/occlusion/pkg/domain"
)

// Surface is a 2D drawing surface a trial renders onto.
type Surface interface {
	// Init (re)creates the canvas with the given pixel size, discarding previous content.
	Init(ctx context.Context, size domain.Size) error

	// Image draws the image src at bounds and returns a handle to move it or swap its source.
	Image(src string, bounds domain.Rect) (Sprite, error)

	// Rect draws a filled opaque rectangle. Fill is a CSS-style color such as "#000".
	Rect(bounds domain.Rect, fill string) error

	// Clear removes everything drawn on the canvas.
	Clear() error
}

// Sprite is an image drawn on a Surface.
type Sprite interface {
	// SetSource replaces the image reference without moving the sprite.
	SetSource(src string) error

	// Animate moves the sprite horizontally from its current offset to x over d.
	// It returns once the animation has completed, or with ctx.Err() if ctx is cancelled first.
	Animate(ctx context.Context, x float64, d time.Duration) error
}
