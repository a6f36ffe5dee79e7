package ports

import (
	"context"

	"github.com/aretw0/occlusion/pkg/domain"
)

// Block is the host-side context of one running trial.
type Block interface {
	// TrialIndex is the host-assigned position of the trial in the experiment.
	TrialIndex() int

	// WriteData hands the trial's result record to the host. Ownership passes to the host.
	WriteData(ctx context.Context, result domain.TrialResult) error

	// Next tells the host the trial is complete and the experiment may advance.
	Next(ctx context.Context) error
}
