package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrialResult_Record(t *testing.T) {
	res, err := domain.NewTrialResult(domain.TrialType, 3, []string{"a.png", "b.png"}, map[string]any{"block": "learning"})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{
		"trial_type":  "vsl-animate-occlusion",
		"trial_index": 3,
		"stimuli":     `["a.png","b.png"]`,
		"block":       "learning",
	}, res.Record())
}

func TestNewTrialResult_StimuliRoundTrip(t *testing.T) {
	stimuli := []string{"img/<1>.png", "b & c.png", "ü.png"}
	res, err := domain.NewTrialResult(domain.TrialType, 0, stimuli, nil)
	require.NoError(t, err)

	assert.Equal(t, `["img/<1>.png","b & c.png","ü.png"]`, res.Stimuli)

	parsed, err := res.StimulusList()
	require.NoError(t, err)
	assert.Equal(t, stimuli, parsed)
}

func TestNewTrialResult_EmptyStimuli(t *testing.T) {
	res, err := domain.NewTrialResult(domain.TrialType, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", res.Stimuli)
}

func TestTrialResult_MetadataOverridesBaseKeys(t *testing.T) {
	res, err := domain.NewTrialResult(domain.TrialType, 1, []string{"a.png"}, map[string]any{"trial_type": "custom"})
	require.NoError(t, err)

	assert.Equal(t, "custom", res.Record()["trial_type"])
}

func TestTrialResult_DataIsCopied(t *testing.T) {
	data := map[string]any{"k": "v"}
	res, err := domain.NewTrialResult(domain.TrialType, 0, []string{"a.png"}, data)
	require.NoError(t, err)

	data["k"] = "changed"
	assert.Equal(t, "v", res.Data["k"])
}

func TestTrialResult_JSON(t *testing.T) {
	res, err := domain.NewTrialResult(domain.TrialType, 7, []string{"a.png"}, map[string]any{"subject": "s01"})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"trial_type":"vsl-animate-occlusion","trial_index":7,"stimuli":"[\"a.png\"]","subject":"s01"}`, string(raw))

	var back domain.TrialResult
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, res, back)
}

func TestTrialResult_UnmarshalKeepsShadowedKeysAsData(t *testing.T) {
	var res domain.TrialResult
	require.NoError(t, json.Unmarshal([]byte(`{"trial_type":5,"trial_index":2,"stimuli":"[]"}`), &res))

	assert.Equal(t, "", res.TrialType)
	assert.Equal(t, 2, res.TrialIndex)
	assert.Equal(t, float64(5), res.Data["trial_type"])
}
