package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
)

// Reserved keys of a result record.
const (
	KeyTrialType  = "trial_type"
	KeyTrialIndex = "trial_index"
	KeyStimuli    = "stimuli"
)

// TrialResult is the completion record of one trial.
// It is built once at the end of the sequence and never mutated afterwards.
type TrialResult struct {
	TrialType  string
	TrialIndex int
	// Stimuli is the stimulus list serialized as a JSON array string.
	Stimuli string
	// Data is the user metadata merged over the base keys.
	Data map[string]any
}

// NewTrialResult builds the record for a finished trial. Data is copied.
func NewTrialResult(trialType string, index int, stimuli []string, data map[string]any) (TrialResult, error) {
	if stimuli == nil {
		stimuli = []string{}
	}
	// The stimulus list is stored verbatim; paths are not HTML-escaped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stimuli); err != nil {
		return TrialResult{}, fmt.Errorf("failed to serialize stimuli: %w", err)
	}
	return TrialResult{
		TrialType:  trialType,
		TrialIndex: index,
		Stimuli:    string(bytes.TrimRight(buf.Bytes(), "\n")),
		Data:       maps.Clone(data),
	}, nil
}

// Record flattens the result into the shape written to the host.
// Metadata keys win over the base keys.
func (r TrialResult) Record() map[string]any {
	rec := map[string]any{
		KeyTrialType:  r.TrialType,
		KeyTrialIndex: r.TrialIndex,
		KeyStimuli:    r.Stimuli,
	}
	maps.Copy(rec, r.Data)
	return rec
}

// StimulusList parses the serialized stimulus list back.
func (r TrialResult) StimulusList() ([]string, error) {
	var out []string
	if err := json.Unmarshal([]byte(r.Stimuli), &out); err != nil {
		return nil, fmt.Errorf("failed to parse stimuli: %w", err)
	}
	return out, nil
}

func (r TrialResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Record())
}

func (r *TrialResult) UnmarshalJSON(data []byte) error {
	var rec map[string]any
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}

	// Metadata may shadow a reserved key with a value of another type; such
	// values are kept as metadata.
	out := TrialResult{Data: map[string]any{}}
	for k, v := range rec {
		switch val := v.(type) {
		case string:
			switch k {
			case KeyTrialType:
				out.TrialType = val
				continue
			case KeyStimuli:
				out.Stimuli = val
				continue
			}
		case float64:
			if k == KeyTrialIndex {
				out.TrialIndex = int(val)
				continue
			}
		}
		out.Data[k] = v
	}
	*r = out
	return nil
}
