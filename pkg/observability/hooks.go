package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/occlusion/pkg/domain"
)

// LogHooks logs every lifecycle event at Debug, and the data write at Info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.DebugContext(ctx, "phase_enter",
				"trial_index", e.TrialIndex,
				"phase", e.Phase,
				"image_index", e.ImageIndex,
			)
		},
		OnPhaseLeave: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.DebugContext(ctx, "phase_leave",
				"trial_index", e.TrialIndex,
				"phase", e.Phase,
				"duration", e.Duration,
			)
		},
		OnImageSwap: func(ctx context.Context, e *domain.SwapEvent) {
			logger.DebugContext(ctx, "image_swap",
				"trial_index", e.TrialIndex,
				"image_index", e.ImageIndex,
				"stimulus", e.Stimulus,
				"table", e.Table,
			)
		},
		OnDataWrite: func(ctx context.Context, e *domain.DataEvent) {
			logger.InfoContext(ctx, "data_write",
				"trial_index", e.TrialIndex,
				"stimuli", e.Result.Stimuli,
				"elapsed", e.Elapsed,
			)
		},
	}
}

// CombineHooks returns hooks calling each of the given hooks in order.
func CombineHooks(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var enter, leave []func(context.Context, *domain.PhaseEvent)
	var swap []func(context.Context, *domain.SwapEvent)
	var write []func(context.Context, *domain.DataEvent)

	for _, h := range hooks {
		if h.OnPhaseEnter != nil {
			enter = append(enter, h.OnPhaseEnter)
		}
		if h.OnPhaseLeave != nil {
			leave = append(leave, h.OnPhaseLeave)
		}
		if h.OnImageSwap != nil {
			swap = append(swap, h.OnImageSwap)
		}
		if h.OnDataWrite != nil {
			write = append(write, h.OnDataWrite)
		}
	}

	var out domain.LifecycleHooks
	if len(enter) > 0 {
		out.OnPhaseEnter = fanOut(enter)
	}
	if len(leave) > 0 {
		out.OnPhaseLeave = fanOut(leave)
	}
	if len(swap) > 0 {
		out.OnImageSwap = fanOut(swap)
	}
	if len(write) > 0 {
		out.OnDataWrite = fanOut(write)
	}
	return out
}

func fanOut[E any](fns []func(context.Context, E)) func(context.Context, E) {
	return func(ctx context.Context, e E) {
		for _, fn := range fns {
			fn(ctx, e)
		}
	}
}
