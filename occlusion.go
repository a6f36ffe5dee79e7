package occlusion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/occlusion/internal/logging"
	"github.com/aretw0/occlusion/internal/runtime"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/aretw0/occlusion/pkg/schema"
	"github.com/mitchellh/mapstructure"
)

// Version is the release of the plugin.
const Version = "0.3.0"

// Plugin is the animated-occlusion trial type.
// It is stateless between trials and safe for concurrent use; every Run owns its own timeline.
type Plugin struct {
	clock  ports.Clock
	hooks  domain.LifecycleHooks
	logger *slog.Logger
}

var _ ports.Plugin = (*Plugin)(nil)

// Option defines a functional option for configuring the Plugin.
type Option func(*Plugin)

// WithLifecycleHooks registers observability hooks for every trial run.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(p *Plugin) {
		p.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Plugin) {
		p.logger = logger
	}
}

// WithClock sets the clock timing the pre-movement and post-trial delays.
// Animation steps are timed by the surface.
func WithClock(c ports.Clock) Option {
	return func(p *Plugin) {
		p.clock = c
	}
}

// New creates the plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	p.logger = p.logger.With("trial_type", domain.TrialType)
	return p
}

// Type returns the trial type tag.
func (p *Plugin) Type() string { return domain.TrialType }

// paramSchema type-checks the loosely typed parameters before decoding.
var paramSchema = schema.Schema{
	"type":                schema.Optional(schema.String()),
	"stimuli":             schema.Optional(schema.Slice(schema.String())),
	"timing_cycle":        schema.Optional(schema.Int()),
	"canvas_size":         schema.Optional(schema.Pair(schema.Int())),
	"image_size":          schema.Optional(schema.Pair(schema.Int())),
	"initial_direction":   schema.Optional(schema.String()),
	"occlude_center":      schema.Optional(schema.Bool()),
	"timing_post_trial":   schema.Optional(schema.Int()),
	"timing_pre_movement": schema.Optional(schema.Int()),
	"data":                schema.Optional(schema.Map()),
}

// params mirrors the parameter object. Pointers tell an absent field from a zero one.
type params struct {
	Type              *string        `mapstructure:"type"`
	Stimuli           []string       `mapstructure:"stimuli"`
	TimingCycle       *int           `mapstructure:"timing_cycle"`
	CanvasSize        []int          `mapstructure:"canvas_size"`
	ImageSize         []int          `mapstructure:"image_size"`
	InitialDirection  *string        `mapstructure:"initial_direction"`
	OccludeCenter     *bool          `mapstructure:"occlude_center"`
	TimingPostTrial   *int           `mapstructure:"timing_post_trial"`
	TimingPreMovement *int           `mapstructure:"timing_pre_movement"`
	Data              map[string]any `mapstructure:"data"`
}

// Create resolves a parameter object into a single trial, merging the given
// fields over the defaults.
//
// timing_cycle, canvas_size, image_size and initial_direction fall back to
// their default when absent or zero. occlude_center, timing_post_trial,
// timing_pre_movement and data fall back only when absent, so an explicit
// false or 0 is kept. A null value counts as absent.
func (p *Plugin) Create(raw map[string]any) ([]domain.TrialConfig, error) {
	if err := schema.Validate(paramSchema, raw); err != nil {
		return nil, &domain.ConfigurationError{TrialType: domain.TrialType, Err: err}
	}

	var in params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &in,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, &domain.ConfigurationError{TrialType: domain.TrialType, Err: err}
	}

	if in.Type != nil && *in.Type != "" && *in.Type != domain.TrialType {
		return nil, &domain.ConfigurationError{
			TrialType: domain.TrialType,
			Err: &schema.AggregateError{Errors: []error{
				&schema.ValidationError{Key: "type", Reason: "unexpected trial type", Value: *in.Type},
			}},
		}
	}

	trial := domain.DefaultTrialConfig()
	trial.Stimuli = in.Stimuli

	if in.TimingCycle != nil && *in.TimingCycle != 0 {
		trial.TimingCycle = *in.TimingCycle
	}
	if size, ok := pair(in.CanvasSize); ok {
		trial.CanvasSize = size
	}
	if size, ok := pair(in.ImageSize); ok {
		trial.ImageSize = size
	}
	if in.InitialDirection != nil && *in.InitialDirection != "" {
		trial.InitialDirection = domain.Direction(*in.InitialDirection)
	}

	if in.OccludeCenter != nil {
		trial.OccludeCenter = *in.OccludeCenter
	}
	if in.TimingPostTrial != nil {
		trial.TimingPostTrial = *in.TimingPostTrial
	}
	if in.TimingPreMovement != nil {
		trial.TimingPreMovement = *in.TimingPreMovement
	}
	if in.Data != nil {
		trial.Data = in.Data
	}

	if err := trial.Validate(); err != nil {
		return nil, err
	}
	p.logger.Debug("trial created", "stimuli", len(trial.Stimuli), "expected", trial.ExpectedDuration())
	return []domain.TrialConfig{trial}, nil
}

func pair(v []int) (domain.Size, bool) {
	if len(v) != 2 {
		return domain.Size{}, false
	}
	return domain.Size{Width: v[0], Height: v[1]}, true
}

// Run presents the trial on the surface, hands the result record to the block
// and then tells the block to advance.
func (p *Plugin) Run(ctx context.Context, surface ports.Surface, block ports.Block, trial domain.TrialConfig) error {
	opts := []runtime.Option{
		runtime.WithLogger(p.logger),
		runtime.WithLifecycleHooks(p.hooks),
	}
	if p.clock != nil {
		opts = append(opts, runtime.WithClock(p.clock))
	}
	return runtime.NewTimeline(trial, surface, block, opts...).Run(ctx)
}
