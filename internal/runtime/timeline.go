package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// OccluderFill is the color of the bar hiding the swap point.
const OccluderFill = "#000"

// ErrAlreadyStarted is returned when Run is called twice on one timeline.
var ErrAlreadyStarted = errors.New("timeline already started")

// Timeline is the state machine of one animated-occlusion trial.
//
//	Idle → PreDelay → (SlideOut → SlideIn)×len(stimuli) → PostDelay → Done
//
// Every suspension point (delays and animation steps) is awaited in place, so
// step N+1 never starts before step N completes. A Timeline is single-use and
// owned by the goroutine calling Run.
type Timeline struct {
	trial   domain.TrialConfig
	surface ports.Surface
	block   ports.Block
	clock   ports.Clock
	hooks   domain.LifecycleHooks
	logger  *slog.Logger

	tables        [2]domain.MotionTable
	phase         domain.Phase
	whichImage    int
	nextDirection int
	sprite        ports.Sprite
	current       domain.MotionTable
	startedAt     time.Time
	enteredAt     time.Time
	result        *domain.TrialResult
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithClock sets the time source for the pre/post delays. Defaults to the system clock.
func WithClock(c ports.Clock) Option {
	return func(t *Timeline) {
		t.clock = c
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Timeline) {
		t.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(t *Timeline) {
		t.hooks = hooks
	}
}

// NewTimeline prepares a trial for execution. The config is used as given;
// validation is the caller's job.
func NewTimeline(trial domain.TrialConfig, surface ports.Surface, block ports.Block, opts ...Option) *Timeline {
	t := &Timeline{
		trial:         trial,
		surface:       surface,
		block:         block,
		phase:         domain.PhaseIdle,
		tables:        domain.MotionTables(trial),
		nextDirection: trial.InitialDirection.TableIndex(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.clock == nil {
		t.clock = clock.NewSystem()
	}
	if t.logger == nil {
		t.logger = logging.NewNop()
	}
	t.logger = t.logger.With("trial_index", block.TrialIndex())
	return t
}

// Phase is the current state.
func (t *Timeline) Phase() domain.Phase { return t.phase }

// Cursor is the number of stimuli shown so far.
func (t *Timeline) Cursor() int { return t.whichImage }

// Result is the record written to the host, or nil before the trial ended.
func (t *Timeline) Result() *domain.TrialResult { return t.result }

// Run drives the timeline until Done. It returns after the host has been told to advance.
func (t *Timeline) Run(ctx context.Context) error {
	if t.phase != domain.PhaseIdle {
		return ErrAlreadyStarted
	}
	t.startedAt = t.clock.Now()
	t.emitEnter(ctx)

	for !t.phase.Terminal() {
		next, err := t.step(ctx)
		if err != nil {
			t.logger.Debug("trial aborted", "phase", t.phase, "err", err)
			return err
		}
		t.transition(ctx, next)
	}
	return nil
}

// step performs the work of the current phase and returns the phase to move to.
func (t *Timeline) step(ctx context.Context) (domain.Phase, error) {
	switch t.phase {
	case domain.PhaseIdle:
		if err := t.render(ctx); err != nil {
			return t.phase, err
		}
		if len(t.trial.Stimuli) == 0 {
			return t.finish(ctx)
		}
		return domain.PhasePreDelay, nil

	case domain.PhasePreDelay:
		if t.trial.TimingPreMovement > 0 {
			if err := t.clock.Sleep(ctx, t.trial.PreMovement()); err != nil {
				return t.phase, err
			}
		}
		return t.advance(ctx)

	case domain.PhaseSlideOut:
		if err := t.animate(ctx, t.current[0]); err != nil {
			return t.phase, err
		}
		return domain.PhaseSlideIn, nil

	case domain.PhaseSlideIn:
		if err := t.animate(ctx, t.current[1]); err != nil {
			return t.phase, err
		}
		return t.advance(ctx)

	case domain.PhasePostDelay:
		if t.trial.TimingPostTrial > 0 {
			if err := t.clock.Sleep(ctx, t.trial.PostTrial()); err != nil {
				return t.phase, err
			}
		}
		if err := t.block.Next(ctx); err != nil {
			return t.phase, fmt.Errorf("failed to advance host: %w", err)
		}
		return domain.PhaseDone, nil

	default:
		return t.phase, fmt.Errorf("no transition from phase %q", t.phase)
	}
}

// render creates the canvas, the centered first stimulus and the occluder.
func (t *Timeline) render(ctx context.Context) error {
	if err := t.surface.Init(ctx, t.trial.CanvasSize); err != nil {
		return &domain.RenderSurfaceError{Op: "init", Err: err}
	}

	if len(t.trial.Stimuli) > 0 {
		sprite, err := t.surface.Image(t.trial.Stimuli[0], t.trial.ImageRect())
		if err != nil {
			return &domain.RenderSurfaceError{Op: "image", Err: err}
		}
		t.sprite = sprite
	}

	if t.trial.OccludeCenter {
		if err := t.surface.Rect(t.trial.OccluderRect(), OccluderFill); err != nil {
			return &domain.RenderSurfaceError{Op: "rect", Err: err}
		}
	}
	return nil
}

// advance loads the next stimulus, or ends the trial once every stimulus was shown.
func (t *Timeline) advance(ctx context.Context) (domain.Phase, error) {
	if t.whichImage == len(t.trial.Stimuli) {
		return t.finish(ctx)
	}

	table := t.nextDirection
	t.current = t.tables[table]
	t.nextDirection = 1 - t.nextDirection

	src := t.trial.Stimuli[t.whichImage]
	if err := t.sprite.SetSource(src); err != nil {
		return t.phase, &domain.RenderSurfaceError{Op: "set_source", Err: err}
	}
	index := t.whichImage
	t.whichImage++

	t.logger.Debug("image swap", "image_index", index, "stimulus", src, "table", table)
	if t.hooks.OnImageSwap != nil {
		t.hooks.OnImageSwap(ctx, &domain.SwapEvent{
			EventBase:  t.eventBase(domain.EventImageSwap),
			ImageIndex: index,
			Stimulus:   src,
			Table:      table,
			Steps:      t.current,
		})
	}
	return domain.PhaseSlideOut, nil
}

func (t *Timeline) animate(ctx context.Context, s domain.AnimationStep) error {
	if err := t.sprite.Animate(ctx, s.X, s.Duration); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.RenderSurfaceError{Op: "animate", Err: err}
	}
	return nil
}

// finish clears the canvas and hands the result record to the host.
func (t *Timeline) finish(ctx context.Context) (domain.Phase, error) {
	if err := t.surface.Clear(); err != nil {
		return t.phase, &domain.RenderSurfaceError{Op: "clear", Err: err}
	}

	result, err := domain.NewTrialResult(domain.TrialType, t.block.TrialIndex(), t.trial.Stimuli, t.trial.Data)
	if err != nil {
		return t.phase, err
	}
	if err := t.block.WriteData(ctx, result); err != nil {
		return t.phase, fmt.Errorf("failed to write trial data: %w", err)
	}
	t.result = &result

	elapsed := t.clock.Now().Sub(t.startedAt)
	t.logger.Info("trial finished", "stimuli", len(t.trial.Stimuli), "elapsed", elapsed)
	if t.hooks.OnDataWrite != nil {
		t.hooks.OnDataWrite(ctx, &domain.DataEvent{
			EventBase: t.eventBase(domain.EventDataWrite),
			Result:    result,
			Elapsed:   elapsed,
		})
	}
	return domain.PhasePostDelay, nil
}

func (t *Timeline) transition(ctx context.Context, next domain.Phase) {
	if t.hooks.OnPhaseLeave != nil {
		e := t.phaseEvent(domain.EventPhaseLeave)
		e.Duration = e.Timestamp.Sub(t.enteredAt)
		t.hooks.OnPhaseLeave(ctx, e)
	}
	t.logger.Debug("phase transition", "from", t.phase, "to", next, "image_index", t.whichImage)
	t.phase = next
	t.emitEnter(ctx)
}

func (t *Timeline) emitEnter(ctx context.Context) {
	t.enteredAt = t.clock.Now()
	if t.hooks.OnPhaseEnter != nil {
		t.hooks.OnPhaseEnter(ctx, t.phaseEvent(domain.EventPhaseEnter))
	}
}

func (t *Timeline) phaseEvent(typ domain.EventType) *domain.PhaseEvent {
	return &domain.PhaseEvent{
		EventBase:  t.eventBase(typ),
		Phase:      t.phase,
		ImageIndex: t.whichImage,
	}
}

func (t *Timeline) eventBase(typ domain.EventType) domain.EventBase {
	return domain.EventBase{
		Timestamp:  t.clock.Now(),
		Type:       typ,
		TrialIndex: t.block.TrialIndex(),
	}
}
