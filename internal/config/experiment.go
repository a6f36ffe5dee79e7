// Package config loads experiment files: an ordered list of trial parameters.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/aretw0/occlusion/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Format is an experiment file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrNoTrials is returned by Load when the file declares no trials.
var ErrNoTrials = errors.New("experiment has no trials")

// Experiment is the content of an experiment file.
type Experiment struct {
	Name        string           `yaml:"name" toml:"name" json:"name"`
	Description string           `yaml:"description,omitempty" toml:"description,omitempty" json:"description,omitempty"`
	Defaults    map[string]any   `yaml:"defaults,omitempty" toml:"defaults,omitempty" json:"defaults,omitempty"`
	Trials      []map[string]any `yaml:"trials" toml:"trials" json:"trials"`
}

// FormatOf picks the format from the file extension. Unknown extensions read as YAML.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Load reads and parses an experiment file.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read experiment: %w", err)
	}
	exp, err := Parse(data, FormatOf(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if exp.Name == "" {
		exp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return exp, nil
}

// Parse decodes an experiment and resolves each trial's parameters:
// keys from Defaults fill in what a trial leaves out, and type falls back to
// the occlusion trial type.
func Parse(data []byte, format Format) (*Experiment, error) {
	var exp Experiment
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &exp)
	case FormatJSON:
		err = json.Unmarshal(data, &exp)
	default:
		err = yaml.Unmarshal(data, &exp)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s experiment: %w", format, err)
	}
	if len(exp.Trials) == 0 {
		return nil, ErrNoTrials
	}

	for i, trial := range exp.Trials {
		if trial == nil {
			trial = map[string]any{}
		}
		for k, v := range exp.Defaults {
			if _, ok := trial[k]; !ok {
				trial[k] = v
			}
		}
		if _, ok := trial["type"]; !ok {
			trial["type"] = domain.TrialType
		}
		exp.Trials[i] = trial
	}
	return &exp, nil
}
