package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/registry"
	"github.com/aretw0/occlusion/pkg/schema"
	"github.com/google/uuid"
)

// TrialInfo describes a trial as it starts or finishes.
type TrialInfo struct {
	SessionID string
	Index     int
	Trial     domain.TrialConfig
	// Results and Elapsed are set on finish only.
	Results []domain.TrialResult
	Elapsed time.Duration
}

// Hooks are trial-level callbacks. Nil fields are skipped.
type Hooks struct {
	OnTrialStart  func(ctx context.Context, info TrialInfo)
	OnTrialFinish func(ctx context.Context, info TrialInfo)
}

// Report summarizes an experiment run.
type Report struct {
	SessionID string
	Results   []domain.TrialResult
	Elapsed   time.Duration
}

// Runner presents an ordered list of trials on one surface, one after the other.
// Trial i runs with host index i; it must write its data and signal Next before trial i+1 starts.
type Runner struct {
	Registry  *registry.Registry
	Store     ports.ResultStore
	Logger    *slog.Logger
	SessionID string
	Hooks     Hooks
	Clock     ports.Clock
}

// NewRunner creates a Runner resolving plugins from reg.
func NewRunner(reg *registry.Registry, opts ...Option) *Runner {
	r := &Runner{Registry: reg}
	for _, opt := range opts {
		opt(r)
	}
	if r.Store == nil {
		r.Store = memory.NewStore()
	}
	if r.Logger == nil {
		r.Logger = logging.NewNop()
	}
	if r.SessionID == "" {
		r.SessionID = uuid.NewString()
	}
	if r.Clock == nil {
		r.Clock = clock.NewSystem()
	}
	return r
}

// Expand resolves raw parameter objects into trial configs through the registry.
// A factory may produce several trials from one parameter object.
// All failures are reported together, each prefixed with its position.
func (r *Runner) Expand(params []map[string]any) ([]domain.TrialConfig, error) {
	var trials []domain.TrialConfig
	var errs []error
	for i, p := range params {
		created, err := r.Registry.Create(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("trials[%d]: %w", i, err))
			continue
		}
		trials = append(trials, created...)
	}
	if len(errs) > 0 {
		return nil, &schema.AggregateError{Errors: errs}
	}
	return trials, nil
}

// Run executes the trials in order. It stops at the first failing trial and
// returns the records collected so far along with the error.
func (r *Runner) Run(ctx context.Context, surface ports.Surface, trials []domain.TrialConfig) (report Report, err error) {
	report.SessionID = r.SessionID
	logger := r.Logger.With("session_id", r.SessionID)
	started := r.Clock.Now()

	defer func() {
		report.Elapsed = r.Clock.Now().Sub(started)
	}()

	for i, trial := range trials {
		if err = ctx.Err(); err != nil {
			return report, err
		}

		var results []domain.TrialResult
		results, err = r.runTrial(ctx, logger, surface, i, trial)
		report.Results = append(report.Results, results...)
		if err != nil {
			return report, err
		}
	}

	logger.Info("experiment finished", "trials", len(trials), "records", len(report.Results))
	return report, nil
}

func (r *Runner) runTrial(ctx context.Context, logger *slog.Logger, surface ports.Surface, index int, trial domain.TrialConfig) ([]domain.TrialResult, error) {
	trialType := trial.Type
	if trialType == "" {
		trialType = domain.TrialType
	}
	plugin, err := r.Registry.Lookup(trialType)
	if err != nil {
		return nil, fmt.Errorf("trial %d: %w", index, err)
	}

	b := &block{index: index, sessionID: r.SessionID, store: r.Store}
	info := TrialInfo{SessionID: r.SessionID, Index: index, Trial: trial}

	logger.Info("trial started", "trial_index", index, "trial_type", trialType, "stimuli", len(trial.Stimuli))
	if r.Hooks.OnTrialStart != nil {
		r.Hooks.OnTrialStart(ctx, info)
	}
	start := r.Clock.Now()

	runErr := plugin.Run(ctx, surface, b, trial)
	results, advanced := b.snapshot()
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			logger.Warn("trial interrupted", "trial_index", index)
		}
		return results, fmt.Errorf("trial %d: %w", index, runErr)
	}
	if !advanced {
		return results, fmt.Errorf("trial %d: %w", index, domain.ErrTrialNotAdvanced)
	}

	info.Results = results
	info.Elapsed = r.Clock.Now().Sub(start)
	logger.Info("trial finished", "trial_index", index, "elapsed", info.Elapsed)
	if r.Hooks.OnTrialFinish != nil {
		r.Hooks.OnTrialFinish(ctx, info)
	}
	return results, nil
}
