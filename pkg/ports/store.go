package ports

import (
	"context"

	"github.com/aretw0/occlusion/pkg/domain"
)

// ResultStore persists trial result records, grouped by session (one participant run).
type ResultStore interface {
	// Append adds a record at the end of the session's results.
	Append(ctx context.Context, sessionID string, result domain.TrialResult) error

	// List returns the session's records in append order.
	// Returns domain.ErrSessionNotFound if the session has no records.
	List(ctx context.Context, sessionID string) ([]domain.TrialResult, error)

	// Delete removes all records of a session.
	Delete(ctx context.Context, sessionID string) error

	// Sessions returns the IDs of all sessions with records.
	Sessions(ctx context.Context) ([]string, error)
}
