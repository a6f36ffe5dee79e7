package ports

import (
	"context"

	"github.com/aretw0/occlusion/pkg/domain"
)

// Plugin is a trial type that can be instantiated from parameters and run.
type Plugin interface {
	// Type is the trial type tag handled by this plugin.
	Type() string

	// Create resolves a parameter object into one or more trial configs, applying defaults.
	Create(params map[string]any) ([]domain.TrialConfig, error)

	// Run executes one trial on the surface. It returns after the host has been told to advance.
	Run(ctx context.Context, surface Surface, block Block, trial domain.TrialConfig) error
}
