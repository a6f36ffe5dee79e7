package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/occlusion/pkg/adapters/memory"
	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/aretw0/occlusion/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunResultStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	data := map[string]any{"subject": "s01"}
	res, err := domain.NewTrialResult(domain.TrialType, 0, []string{"a.png"}, data)
	require.NoError(t, err)
	require.NoError(t, store.Append(ctx, "s", res))

	res.Data["subject"] = "mutated"

	listed, err := store.List(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "s01", listed[0].Data["subject"])

	listed[0].Data["subject"] = "mutated again"
	again, err := store.List(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "s01", again[0].Data["subject"])
}
