package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunResultStoreContract runs a suite of tests to verify that a ResultStore implementation
// adheres to the defined interface contract.
func RunResultStoreContract(t *testing.T, store ResultStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	newResult := func(index int, stimuli ...string) domain.TrialResult {
		res, err := domain.NewTrialResult(domain.TrialType, index, stimuli, map[string]any{"subject": "s01"})
		require.NoError(t, err)
		return res
	}

	t.Run("Append and List", func(t *testing.T) {
		id := sessionID + "-append"
		defer func() { _ = store.Delete(ctx, id) }()

		require.NoError(t, store.Append(ctx, id, newResult(0, "a.png", "b.png")))
		require.NoError(t, store.Append(ctx, id, newResult(1, "c.png")))

		results, err := store.List(ctx, id)
		require.NoError(t, err, "List should not return error")
		require.Len(t, results, 2)

		// Append order is preserved
		assert.Equal(t, 0, results[0].TrialIndex)
		assert.Equal(t, 1, results[1].TrialIndex)
		assert.Equal(t, domain.TrialType, results[0].TrialType)
		assert.Equal(t, `["a.png","b.png"]`, results[0].Stimuli)
		assert.Equal(t, "s01", results[1].Data["subject"])
	})

	t.Run("List Non-Existent", func(t *testing.T) {
		_, err := store.List(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		id := sessionID + "-delete"
		require.NoError(t, store.Append(ctx, id, newResult(0, "a.png")))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.List(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "List after Delete should return ErrSessionNotFound")
	})

	t.Run("Sessions", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Append(ctx, id1, newResult(0, "a.png")))
		require.NoError(t, store.Append(ctx, id2, newResult(0, "b.png")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.Sessions(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
