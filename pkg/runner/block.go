package runner

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
)

// block is the host side of one trial. Records go to the session's store.
type block struct {
	index     int
	sessionID string
	store     ports.ResultStore

	mu       sync.Mutex
	results  []domain.TrialResult
	advanced bool
}

func (b *block) TrialIndex() int { return b.index }

func (b *block) WriteData(ctx context.Context, result domain.TrialResult) error {
	if err := b.store.Append(ctx, b.sessionID, result); err != nil {
		return fmt.Errorf("failed to store result of trial %d: %w", b.index, err)
	}
	b.mu.Lock()
	b.results = append(b.results, result)
	b.mu.Unlock()
	return nil
}

func (b *block) Next(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.advanced = true
	return nil
}

func (b *block) snapshot() ([]domain.TrialResult, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.results, b.advanced
}
