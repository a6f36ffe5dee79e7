package observability

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "occlusion"

// Metrics holds the Prometheus collectors fed by trial hooks.
type Metrics struct {
	TrialsCompleted prometheus.Counter
	ImageSwaps      *prometheus.CounterVec
	PhaseDuration   *prometheus.HistogramVec
	DataWrites      prometheus.Counter
	TrialStimuli    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		TrialsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trials_completed_total",
			Help:      "Total number of trials that reached the done phase.",
		}),
		ImageSwaps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_swaps_total",
			Help:      "Total number of image swaps, by motion table.",
		}, []string{"table"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Time spent in each timeline phase.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 0.75, 1, 1.5, 2, 5},
		}, []string{"phase"}),
		DataWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "data_writes_total",
			Help:      "Total number of result records handed to the host.",
		}),
		TrialStimuli: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "trial_stimuli",
			Help:      "Number of stimuli in each recorded trial.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}),
	}

	for _, c := range []prometheus.Collector{m.TrialsCompleted, m.ImageSwaps, m.PhaseDuration, m.DataWrites, m.TrialStimuli} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseEnter: func(ctx context.Context, e *domain.PhaseEvent) {
			if e.Phase == domain.PhaseDone {
				m.TrialsCompleted.Inc()
			}
		},
		OnPhaseLeave: func(ctx context.Context, e *domain.PhaseEvent) {
			m.PhaseDuration.WithLabelValues(string(e.Phase)).Observe(e.Duration.Seconds())
		},
		OnImageSwap: func(ctx context.Context, e *domain.SwapEvent) {
			m.ImageSwaps.WithLabelValues(strconv.Itoa(e.Table)).Inc()
		},
		OnDataWrite: func(ctx context.Context, e *domain.DataEvent) {
			m.DataWrites.Inc()
			if stimuli, err := e.Result.StimulusList(); err == nil {
				m.TrialStimuli.Observe(float64(len(stimuli)))
			}
		},
	}
}
