package scaler

import (
	"errors"
	"math"
	"testing"

	"github.com/Dan9191/umkm-health/internal/features"
	"github.com/Dan9191/umkm-health/internal/models"
)

func trainingVectors() []models.FeatureVector {
	return []models.FeatureVector{
		features.Derive(4000000, 3950000, 10, 6),
		features.Derive(1200000, 300000, 25, 0),
		features.Derive(0, 850000, 4, 3),
		features.Derive(9000000, 7000000, 60, 2),
	}
}

func TestFitTransformRoundTrip(t *testing.T) {
	vectors := trainingVectors()
	s, err := Fit(vectors)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if s.FeatureCount != models.NumFeatures || s.SamplesSeen != len(vectors) {
		t.Fatalf("Fit() state = %+v", s)
	}
	if s.Min[0] != 0 || s.Range[0] != 9000000 {
		t.Errorf("income min/range = %v/%v, want 0/9000000", s.Min[0], s.Range[0])
	}

	for _, v := range vectors {
		scaled, err := s.TransformVector(v)
		if err != nil {
			t.Fatalf("TransformVector() error = %v", err)
		}
		for i, x := range scaled {
			if x < -1e-12 || x > 1+1e-12 {
				t.Errorf("scaled feature %d = %v, want within [0,1]", i, x)
			}
		}
		back, err := s.Inverse(scaled)
		if err != nil {
			t.Fatalf("Inverse() error = %v", err)
		}
		raw := v.Array()
		for i := range back {
			if tol := 1e-9 * math.Max(1, math.Abs(raw[i])); math.Abs(back[i]-raw[i]) > tol {
				t.Errorf("round trip feature %d = %v, want %v", i, back[i], raw[i])
			}
		}
	}
}

func TestTransformNeverRefits(t *testing.T) {
	s, err := Fit(trainingVectors())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	scaled, err := s.TransformVector(features.Derive(18000000, 0, 0, 7))
	if err != nil {
		t.Fatalf("TransformVector() error = %v", err)
	}
	if scaled[0] != 2 {
		t.Errorf("out-of-range income scaled = %v, want 2", scaled[0])
	}
	if s.Range[0] != 9000000 {
		t.Errorf("Transform mutated range to %v", s.Range[0])
	}
}

func TestZeroRangeClampsToZero(t *testing.T) {
	vectors := []models.FeatureVector{
		features.Derive(100, 50, 5, 0),
		features.Derive(200, 50, 5, 0),
	}
	s, err := Fit(vectors)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	scaled, err := s.TransformVector(features.Derive(300, 75, 9, 3))
	if err != nil {
		t.Fatalf("TransformVector() error = %v", err)
	}
	for _, i := range []int{1, 2, 3} {
		if scaled[i] != 0 {
			t.Errorf("constant feature %s scaled = %v, want 0", models.FeatureNames[i], scaled[i])
		}
	}
	for i, x := range scaled {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			t.Errorf("feature %d = %v", i, x)
		}
	}

	p := s.Params()
	if p.Scale[1] != 1 || p.DataRange[1] != 0 {
		t.Errorf("zero-range params scale=%v range=%v, want 1 and 0", p.Scale[1], p.DataRange[1])
	}
}

func TestTransformErrors(t *testing.T) {
	s, err := Fit(trainingVectors())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if _, err := s.Transform([]float64{1, 2, 3}); !errors.Is(err, ErrFeatureCount) {
		t.Errorf("Transform(short) error = %v, want ErrFeatureCount", err)
	}
	if _, err := s.Transform([]float64{1, 2, 3, 4, math.NaN(), 6}); !errors.Is(err, ErrNonFinite) {
		t.Errorf("Transform(NaN) error = %v, want ErrNonFinite", err)
	}
	if _, err := Fit(nil); !errors.Is(err, ErrNoSamples) {
		t.Errorf("Fit(nil) error = %v, want ErrNoSamples", err)
	}
}

func TestMarshalUnmarshal(t *testing.T) {
	s, err := Fit(trainingVectors())
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	loaded, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	v := features.Derive(4000000, 3950000, 10, 6)
	a, _ := s.TransformVector(v)
	b, _ := loaded.TransformVector(v)
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("feature %d: fitted %v, loaded %v", i, a[i], b[i])
		}
	}
}

func TestUnmarshalSklearnParams(t *testing.T) {
	doc := `{
		"scale_": [1e-7, 1e-7, 0.02, 0.142857, 0.5, 1.0],
		"min_": [0, 0, -0.02, 0, 0, 0],
		"data_min_": [0, 0, 1, 0, 0, 0],
		"data_max_": [1e7, 1e7, 51, 7, 2, 1],
		"data_range_": [1e7, 1e7, 50, 7, 2, 1],
		"n_samples_seen_": 812
	}`
	s, err := Unmarshal([]byte(doc))
	if err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.SamplesSeen != 812 {
		t.Errorf("SamplesSeen = %d, want 812", s.SamplesSeen)
	}
	scaled, err := s.Transform([]float64{5e6, 2.5e6, 26, 7, 1, 0.25})
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	want := []float64{0.5, 0.25, 0.5, 1, 0.5, 0.25}
	for i := range want {
		if math.Abs(scaled[i]-want[i]) > 1e-12 {
			t.Errorf("feature %d = %v, want %v", i, scaled[i], want[i])
		}
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	tests := map[string]string{
		"not json":       `{`,
		"short":          `{"data_min_": [0, 0], "data_range_": [1, 1]}`,
		"mismatched":     `{"data_min_": [0, 0, 0, 0, 0, 0], "data_range_": [1, 1, 1]}`,
		"negative range": `{"data_min_": [0, 0, 0, 0, 0, 0], "data_range_": [1, 1, -1, 1, 1, 1]}`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Unmarshal([]byte(doc)); err == nil {
				t.Error("Unmarshal() error = nil, want error")
			}
		})
	}
}
