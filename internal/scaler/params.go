package scaler

import (
	"encoding/json"
	"fmt"
)

// Params is the on-disk scaler record. Field names follow the scikit-learn
// MinMaxScaler attributes so artifacts from either side load unchanged.
type Params struct {
	Scale        []float64 `json:"scale_"`
	MinOffset    []float64 `json:"min_"`
	DataMin      []float64 `json:"data_min_"`
	DataMax      []float64 `json:"data_max_"`
	DataRange    []float64 `json:"data_range_"`
	SamplesSeen  int       `json:"n_samples_seen_"`
	FeatureCount int       `json:"n_features_in_,omitempty"`
}

// Params exports the state. Scale and MinOffset use 1 for zero ranges, as
// scikit-learn does.
func (s *State) Params() Params {
	p := Params{
		Scale:        make([]float64, s.FeatureCount),
		MinOffset:    make([]float64, s.FeatureCount),
		DataMin:      append([]float64(nil), s.Min...),
		DataMax:      s.Max(),
		DataRange:    append([]float64(nil), s.Range...),
		SamplesSeen:  s.SamplesSeen,
		FeatureCount: s.FeatureCount,
	}
	for i, r := range s.Range {
		if r == 0 {
			r = 1
		}
		p.Scale[i] = 1 / r
		p.MinOffset[i] = -s.Min[i] / r
	}
	return p
}

// FromParams validates persisted params and builds a State.
func FromParams(p Params) (*State, error) {
	if p.FeatureCount != 0 && p.FeatureCount != len(p.DataMin) {
		return nil, fmt.Errorf("%w: n_features_in_=%d but %d minimums", ErrInvalidParams, p.FeatureCount, len(p.DataMin))
	}
	return New(p.DataMin, p.DataRange, p.SamplesSeen)
}

// Unmarshal decodes a scaler params JSON document.
func Unmarshal(data []byte) (*State, error) {
	var p Params
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode scaler params: %w", err)
	}
	return FromParams(p)
}

// Marshal encodes the state as a scaler params JSON document.
func (s *State) Marshal() ([]byte, error) {
	return json.MarshalIndent(s.Params(), "", "  ")
}
