package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/occlusion/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlExperiment = `
name: pilot
defaults:
  timing_cycle: 800
trials:
  - stimuli: [a.png, b.png]
    initial_direction: right
  - stimuli: [c.png]
    timing_cycle: 1200
`

const tomlExperiment = `
name = "pilot"

[defaults]
timing_cycle = 800

[[trials]]
stimuli = ["a.png", "b.png"]
initial_direction = "right"

[[trials]]
stimuli = ["c.png"]
timing_cycle = 1200
`

const jsonExperiment = `{
  "name": "pilot",
  "defaults": {"timing_cycle": 800},
  "trials": [
    {"stimuli": ["a.png", "b.png"], "initial_direction": "right"},
    {"stimuli": ["c.png"], "timing_cycle": 1200}
  ]
}`

func TestParse_Formats(t *testing.T) {
	cases := []struct {
		format Format
		data   string
	}{
		{FormatYAML, yamlExperiment},
		{FormatTOML, tomlExperiment},
		{FormatJSON, jsonExperiment},
	}

	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			exp, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)

			assert.Equal(t, "pilot", exp.Name)
			require.Len(t, exp.Trials, 2)

			first := exp.Trials[0]
			assert.Equal(t, domain.TrialType, first["type"])
			assert.Equal(t, "right", first["initial_direction"])
			assert.Len(t, first["stimuli"], 2)
			assert.EqualValues(t, 800, first["timing_cycle"])

			assert.EqualValues(t, 1200, exp.Trials[1]["timing_cycle"], "trial keys win over defaults")
		})
	}
}

func TestParse_KeepsExplicitType(t *testing.T) {
	exp, err := Parse([]byte("trials:\n  - type: other\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "other", exp.Trials[0]["type"])
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("name: empty\n"), FormatYAML)
	assert.ErrorIs(t, err, ErrNoTrials)

	_, err = Parse([]byte("{"), FormatJSON)
	assert.ErrorContains(t, err, "failed to parse json experiment")

	_, err = Parse([]byte("trials = ["), FormatTOML)
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatOf("exp.yaml"))
	assert.Equal(t, FormatYAML, FormatOf("exp.yml"))
	assert.Equal(t, FormatTOML, FormatOf("EXP.TOML"))
	assert.Equal(t, FormatJSON, FormatOf("exp.json"))
	assert.Equal(t, FormatYAML, FormatOf("exp"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session-a.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[trials]]\nstimuli = [\"a.png\"]\n"), 0o644))

	exp, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "session-a", exp.Name, "name falls back to the file name")
	assert.Len(t, exp.Trials, 1)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
