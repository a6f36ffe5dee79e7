package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/occlusion/pkg/adapters/clock"
	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/domain"
)

// Block is a ports.Block that records what the trial hands to the host.
type Block struct {
	Index int

	// WriteErr and NextErr, when set, are returned by WriteData and Next.
	WriteErr error
	NextErr  error

	// Clock, when set, stamps the moment Next was called.
	Clock interface{ Now() time.Time }

	mu      sync.Mutex
	results []domain.TrialResult
	nexts   int
	nextAt  time.Time
	order   []string
}

func (b *Block) TrialIndex() int { return b.Index }

func (b *Block) WriteData(ctx context.Context, result domain.TrialResult) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = append(b.order, "write")
	if b.WriteErr != nil {
		return b.WriteErr
	}
	b.results = append(b.results, result)
	return nil
}

func (b *Block) Next(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = append(b.order, "next")
	if b.NextErr != nil {
		return b.NextErr
	}
	b.nexts++
	if b.Clock != nil {
		b.nextAt = b.Clock.Now()
	}
	return nil
}

// Results returns every record written.
func (b *Block) Results() []domain.TrialResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.TrialResult, len(b.results))
	copy(out, b.results)
	return out
}

// Nexts is how many times Next succeeded.
func (b *Block) Nexts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nexts
}

// NextAt is the clock reading when Next was last called.
func (b *Block) NextAt() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nextAt
}

// Order lists the host calls ("write", "next") in call order.
func (b *Block) Order() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Simulation bundles a virtual clock with a recording surface waiting on it.
type Simulation struct {
	Clock   *clock.Virtual
	Surface *memory.Surface
}

// NewSimulation creates a surface and clock sharing the same virtual time.
func NewSimulation(t *testing.T) Simulation {
	t.Helper()
	clk := clock.NewVirtual(time.Date(2014, 2, 1, 0, 0, 0, 0, time.UTC))
	return Simulation{
		Clock:   clk,
		Surface: memory.NewSurface(memory.WithClock(clk)),
	}
}

// TrialConfig returns a valid config with the given stimuli and no delays.
func TrialConfig(stimuli ...string) domain.TrialConfig {
	cfg := domain.DefaultTrialConfig()
	cfg.Stimuli = stimuli
	cfg.TimingPreMovement = 0
	cfg.TimingPostTrial = 0
	return cfg
}
