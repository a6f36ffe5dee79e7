package tests

import (
	"context"
	"testing"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// SurfaceContractTest is a reusable test suite that verifies if an adapter complies with ports.Surface.
// Animations use zero durations so the suite runs without waiting.
func SurfaceContractTest(t *testing.T, surface ports.Surface) {
	t.Helper()
	ctx := context.Background()

	t.Run("Init", func(t *testing.T) {
		if err := surface.Init(ctx, domain.Size{Width: 400, Height: 400}); err != nil {
			t.Fatalf("unexpected error initializing surface: %v", err)
		}
	})

	t.Run("Image_Animate_SetSource", func(t *testing.T) {
		if err := surface.Init(ctx, domain.Size{Width: 400, Height: 400}); err != nil {
			t.Fatalf("init: %v", err)
		}
		sprite, err := surface.Image("a.png", domain.Rect{X: 150, Y: 150, W: 100, H: 100})
		if err != nil {
			t.Fatalf("unexpected error drawing image: %v", err)
		}
		if sprite == nil {
			t.Fatal("expected a sprite, got nil")
		}
		if err := sprite.SetSource("b.png"); err != nil {
			t.Errorf("unexpected error swapping source: %v", err)
		}
		if err := sprite.Animate(ctx, 0, 0); err != nil {
			t.Errorf("unexpected error animating: %v", err)
		}
		if err := sprite.Animate(ctx, 300, 0); err != nil {
			t.Errorf("unexpected error animating: %v", err)
		}
	})

	t.Run("Animate_Cancelled", func(t *testing.T) {
		if err := surface.Init(ctx, domain.Size{Width: 400, Height: 400}); err != nil {
			t.Fatalf("init: %v", err)
		}
		sprite, err := surface.Image("a.png", domain.Rect{X: 150, Y: 150, W: 100, H: 100})
		if err != nil {
			t.Fatalf("image: %v", err)
		}
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		if err := sprite.Animate(cancelled, 0, 1); err == nil {
			t.Error("expected error animating with a cancelled context, got nil")
		}
	})

	t.Run("Rect_Clear", func(t *testing.T) {
		if err := surface.Init(ctx, domain.Size{Width: 400, Height: 400}); err != nil {
			t.Fatalf("init: %v", err)
		}
		if err := surface.Rect(domain.Rect{X: 150, Y: 0, W: 100, H: 400}, "#000"); err != nil {
			t.Errorf("unexpected error drawing rect: %v", err)
		}
		if err := surface.Clear(); err != nil {
			t.Errorf("unexpected error clearing: %v", err)
		}
	})
}
