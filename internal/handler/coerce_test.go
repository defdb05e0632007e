package handler

import (
	"encoding/json"
	"testing"
)

func TestToFloat(t *testing.T) {
	valid := []struct {
		in   any
		want float64
	}{
		{json.Number("4000000"), 4000000},
		{json.Number("1e3"), 1000},
		{12.5, 12.5},
		{"  42 ", 42},
		{"-0.5", -0.5},
		{true, 1},
		{false, 0},
	}
	for _, tt := range valid {
		got, err := toFloat(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("toFloat(%#v) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}

	invalid := []any{nil, "sepuluh", "", "NaN", "Inf", []any{1}, map[string]any{}}
	for _, in := range invalid {
		if _, err := toFloat(in); err == nil {
			t.Errorf("toFloat(%#v) error = nil, want error", in)
		}
	}
}

func TestMissingFieldError(t *testing.T) {
	err := &MissingFieldError{Field: FieldLossDays}
	if err.Error() != "Missing required field: jumlah_hari_rugi" {
		t.Errorf("Error() = %q", err.Error())
	}
}
