// Package features holds the feature formula shared by training and serving,
// and the threshold rule that labels training weeks.
package features

import (
	"sort"

	"github.com/Dan9191/umkm-health/internal/models"
)

// Derive builds a feature vector from the four raw inputs.
// The +1 and +1e-9 terms keep both ratios finite for non-negative inputs.
func Derive(income, expense, transactionCount, lossDays float64) models.FeatureVector {
	return models.FeatureVector{
		Income:           income,
		Expense:          expense,
		TransactionCount: transactionCount,
		LossDays:         lossDays,
		TransactionRatio: transactionCount / (expense + 1),
		ExpenseShare:     expense / (income + expense + 1e-9),
	}
}

// FromWeekly derives the feature vector of a weekly aggregate.
func FromWeekly(w models.WeeklyAggregate) models.FeatureVector {
	return Derive(
		w.Income.InexactFloat64(),
		w.Expense.InexactFloat64(),
		float64(w.TransactionCount),
		float64(w.LossDays),
	)
}

// Label assigns the health category for a financial ratio.
// Bands are inclusive on their lower bound and checked top-down.
func Label(financialRatio float64) models.HealthLabel {
	switch {
	case financialRatio >= 1.2:
		return models.LabelHealthy
	case financialRatio >= 1.0:
		return models.LabelAdequatelyHealthy
	case financialRatio >= 0.8:
		return models.LabelNeedsAttention
	default:
		return models.LabelNeedsSpecialHandling
	}
}

// LabelWeeks derives features and labels for every weekly aggregate, preserving order.
func LabelWeeks(weeks []models.WeeklyAggregate) []models.LabelledWeek {
	out := make([]models.LabelledWeek, len(weeks))
	for i, w := range weeks {
		out[i] = models.LabelledWeek{
			WeeklyAggregate: w,
			Features:        FromWeekly(w),
			Label:           Label(w.FinancialRatio),
		}
	}
	return out
}

// Classes returns the label set sorted lexicographically; a label's index in this
// slice is its class index for the classifier.
func Classes() []string {
	classes := []string{
		string(models.LabelHealthy),
		string(models.LabelAdequatelyHealthy),
		string(models.LabelNeedsAttention),
		string(models.LabelNeedsSpecialHandling),
	}
	sort.Strings(classes)
	return classes
}

// Distribution counts labels, as logged after a labeling run.
func Distribution(weeks []models.LabelledWeek) map[models.HealthLabel]int {
	counts := make(map[models.HealthLabel]int)
	for _, w := range weeks {
		counts[w.Label]++
	}
	return counts
}
