// Package scaler implements min-max feature scaling fitted once on training data.
package scaler

import (
	"errors"
	"fmt"
	"math"

	"github.com/Dan9191/umkm-health/internal/models"
)

var (
	ErrNoSamples     = errors.New("no samples to fit")
	ErrFeatureCount  = errors.New("feature count mismatch")
	ErrNonFinite     = errors.New("non-finite feature value")
	ErrInvalidParams = errors.New("invalid scaler parameters")
)

// State holds fitted per-feature minimums and ranges. It is read-only after Fit or New.
//
// A feature with zero range (constant in training) always transforms to 0.
type State struct {
	Min          []float64
	Range        []float64
	SamplesSeen  int
	FeatureCount int
}

// Fit computes the min and range of every feature across vectors.
func Fit(vectors []models.FeatureVector) (*State, error) {
	if len(vectors) == 0 {
		return nil, ErrNoSamples
	}
	lo := make([]float64, models.NumFeatures)
	hi := make([]float64, models.NumFeatures)
	for i := range lo {
		lo[i] = math.Inf(1)
		hi[i] = math.Inf(-1)
	}
	for n, v := range vectors {
		for i, x := range v.Array() {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return nil, fmt.Errorf("%w: sample %d feature %s", ErrNonFinite, n, models.FeatureNames[i])
			}
			lo[i] = math.Min(lo[i], x)
			hi[i] = math.Max(hi[i], x)
		}
	}
	rng := make([]float64, models.NumFeatures)
	for i := range rng {
		rng[i] = hi[i] - lo[i]
	}
	return &State{Min: lo, Range: rng, SamplesSeen: len(vectors), FeatureCount: models.NumFeatures}, nil
}

// New builds a State from persisted min and range arrays.
func New(lo, rng []float64, samplesSeen int) (*State, error) {
	if len(lo) != len(rng) {
		return nil, fmt.Errorf("%w: %d minimums, %d ranges", ErrInvalidParams, len(lo), len(rng))
	}
	if len(lo) != models.NumFeatures {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrFeatureCount, len(lo), models.NumFeatures)
	}
	for i := range lo {
		if math.IsNaN(lo[i]) || math.IsInf(lo[i], 0) || math.IsNaN(rng[i]) || math.IsInf(rng[i], 0) || rng[i] < 0 {
			return nil, fmt.Errorf("%w: feature %s min=%v range=%v", ErrInvalidParams, models.FeatureNames[i], lo[i], rng[i])
		}
	}
	return &State{
		Min:          append([]float64(nil), lo...),
		Range:        append([]float64(nil), rng...),
		SamplesSeen:  samplesSeen,
		FeatureCount: len(lo),
	}, nil
}

// Transform scales raw as (raw[i] - min[i]) / range[i].
func (s *State) Transform(raw []float64) ([]float64, error) {
	if len(raw) != s.FeatureCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(raw), s.FeatureCount)
	}
	out := make([]float64, len(raw))
	for i, x := range raw {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%w: feature %d = %v", ErrNonFinite, i, x)
		}
		if s.Range[i] == 0 {
			continue
		}
		out[i] = (x - s.Min[i]) / s.Range[i]
	}
	return out, nil
}

// TransformVector scales a feature vector in its fixed order.
func (s *State) TransformVector(v models.FeatureVector) ([]float64, error) {
	arr := v.Array()
	return s.Transform(arr[:])
}

// Inverse maps scaled values back as scaled[i]*range[i] + min[i].
func (s *State) Inverse(scaled []float64) ([]float64, error) {
	if len(scaled) != s.FeatureCount {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrFeatureCount, len(scaled), s.FeatureCount)
	}
	out := make([]float64, len(scaled))
	for i, x := range scaled {
		out[i] = x*s.Range[i] + s.Min[i]
	}
	return out, nil
}

// Max returns the fitted per-feature maximums.
func (s *State) Max() []float64 {
	out := make([]float64, s.FeatureCount)
	for i := range out {
		out[i] = s.Min[i] + s.Range[i]
	}
	return out
}
