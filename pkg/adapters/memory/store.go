package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"github.com/aretw0/occlusion/pkg/domain"
)

// Store implements ports.ResultStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string][]domain.TrialResult
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]domain.TrialResult),
	}
}

// Append stores a copy of the result so later caller mutations of Data do not leak in.
func (s *Store) Append(ctx context.Context, sessionID string, result domain.TrialResult) error {
	result.Data = maps.Clone(result.Data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = append(s.data[sessionID], result)
	return nil
}

// List returns copies of the session's results.
func (s *Store) List(ctx context.Context, sessionID string) ([]domain.TrialResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	out := make([]domain.TrialResult, len(results))
	for i, r := range results {
		r.Data = maps.Clone(r.Data)
		out[i] = r
	}
	return out, nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// Sessions returns the known session IDs, sorted.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
