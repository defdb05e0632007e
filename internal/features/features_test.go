package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/umkm-health/internal/models"
)

func TestDeriveExample(t *testing.T) {
	f := Derive(4000000, 3950000, 10, 6)

	if want := 10.0 / 3950001.0; f.TransactionRatio != want {
		t.Errorf("TransactionRatio = %v, want %v", f.TransactionRatio, want)
	}
	if math.Abs(f.TransactionRatio-2.5316e-6) > 1e-9 {
		t.Errorf("TransactionRatio = %v, want ~2.5316e-6", f.TransactionRatio)
	}
	if want := 3950000.0 / (4000000.0 + 3950000.0 + 1e-9); f.ExpenseShare != want {
		t.Errorf("ExpenseShare = %v, want %v", f.ExpenseShare, want)
	}
	if math.Abs(f.ExpenseShare-0.49686) > 1e-5 {
		t.Errorf("ExpenseShare = %v, want ~0.49686", f.ExpenseShare)
	}

	want := [models.NumFeatures]float64{4000000, 3950000, 10, 6, f.TransactionRatio, f.ExpenseShare}
	if f.Array() != want {
		t.Errorf("Array() = %v, want %v", f.Array(), want)
	}

	ratio := 4000000.0 / 3950001.0
	if got := Label(ratio); got != models.LabelAdequatelyHealthy {
		t.Errorf("Label(%v) = %q, want %q", ratio, got, models.LabelAdequatelyHealthy)
	}
}

func TestDerivePureAndFinite(t *testing.T) {
	inputs := [][4]float64{
		{0, 0, 0, 0},
		{0, 0, 5, 0},
		{1e12, 0, 1, 0},
		{0, 1e12, 1000, 7},
		{123.45, 678.9, 12, 3},
	}
	for _, in := range inputs {
		a := Derive(in[0], in[1], in[2], in[3])
		b := Derive(in[0], in[1], in[2], in[3])
		if a != b {
			t.Errorf("Derive(%v) not deterministic: %v vs %v", in, a, b)
		}
		for i, v := range a.Array() {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("Derive(%v) feature %d = %v", in, i, v)
			}
		}
	}
}

func TestLabelBands(t *testing.T) {
	tests := []struct {
		ratio float64
		want  models.HealthLabel
	}{
		{math.Inf(1), models.LabelHealthy},
		{5, models.LabelHealthy},
		{1.2, models.LabelHealthy},
		{math.Nextafter(1.2, 0), models.LabelAdequatelyHealthy},
		{1.0, models.LabelAdequatelyHealthy},
		{math.Nextafter(1.0, 0), models.LabelNeedsAttention},
		{0.8, models.LabelNeedsAttention},
		{math.Nextafter(0.8, 0), models.LabelNeedsSpecialHandling},
		{0, models.LabelNeedsSpecialHandling},
		{-3, models.LabelNeedsSpecialHandling},
		{math.Inf(-1), models.LabelNeedsSpecialHandling},
	}
	for _, tt := range tests {
		if got := Label(tt.ratio); got != tt.want {
			t.Errorf("Label(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
}

func TestLabelWeeks(t *testing.T) {
	weeks := []models.WeeklyAggregate{
		{StoreName: "A", Income: decimal.NewFromInt(600), Expense: decimal.NewFromInt(400), TransactionCount: 9, LossDays: 1, FinancialRatio: 600.0 / 401.0},
		{StoreName: "B", Income: decimal.NewFromInt(100), Expense: decimal.NewFromInt(400), TransactionCount: 3, LossDays: 4, FinancialRatio: 100.0 / 401.0},
	}
	labelled := LabelWeeks(weeks)
	if labelled[0].Label != models.LabelHealthy || labelled[1].Label != models.LabelNeedsSpecialHandling {
		t.Errorf("labels = %q, %q", labelled[0].Label, labelled[1].Label)
	}
	if labelled[0].Features != Derive(600, 400, 9, 1) {
		t.Errorf("features = %+v", labelled[0].Features)
	}

	dist := Distribution(labelled)
	if dist[models.LabelHealthy] != 1 || dist[models.LabelNeedsSpecialHandling] != 1 || len(dist) != 2 {
		t.Errorf("Distribution() = %v", dist)
	}
}

func TestClasses(t *testing.T) {
	want := []string{"Cukup Sehat", "Perlu Penanganan Khusus", "Perlu Perhatian", "Sehat"}
	if got := Classes(); !reflect.DeepEqual(got, want) {
		t.Errorf("Classes() = %v, want %v", got, want)
	}
}
