// Package aggregator groups transaction records into daily and weekly summaries.
package aggregator

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/umkm-health/internal/models"
)

var one = decimal.NewFromInt(1)

type storeDay struct {
	store string
	date  time.Time
}

type storeWeek struct {
	store string
	week  time.Time
}

// Daily groups records by (store, date). Output is ordered by store then date.
func Daily(records []models.TransactionRecord) []models.DailySummary {
	byDay := make(map[storeDay]*models.DailySummary)
	for _, rec := range records {
		key := storeDay{store: rec.StoreName, date: rec.Date}
		d, ok := byDay[key]
		if !ok {
			d = &models.DailySummary{StoreName: rec.StoreName, Date: rec.Date}
			byDay[key] = d
		}
		d.Income = d.Income.Add(rec.Income())
		d.Expense = d.Expense.Add(rec.Expense())
	}

	days := make([]models.DailySummary, 0, len(byDay))
	for _, d := range byDay {
		d.LossFlag = d.Expense.GreaterThan(d.Income)
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool {
		if days[i].StoreName != days[j].StoreName {
			return days[i].StoreName < days[j].StoreName
		}
		return days[i].Date.Before(days[j].Date)
	})
	return days
}

func lossDaysByWeek(days []models.DailySummary) map[storeWeek]int {
	counts := make(map[storeWeek]int)
	for _, d := range days {
		if d.LossFlag {
			counts[storeWeek{store: d.StoreName, week: models.WeekStart(d.Date)}]++
		}
	}
	return counts
}

// Weekly groups records by (store, week start) and joins in the loss-day count of
// each store-week. Weeks without a loss day keep LossDays = 0.
// Output is ordered by store then week.
func Weekly(records []models.TransactionRecord) []models.WeeklyAggregate {
	lossDays := lossDaysByWeek(Daily(records))

	byWeek := make(map[storeWeek]*models.WeeklyAggregate)
	for _, rec := range records {
		key := storeWeek{store: rec.StoreName, week: rec.WeekStart()}
		w, ok := byWeek[key]
		if !ok {
			w = &models.WeeklyAggregate{StoreName: rec.StoreName, WeekStart: key.week}
			byWeek[key] = w
		}
		w.Income = w.Income.Add(rec.Income())
		w.Expense = w.Expense.Add(rec.Expense())
		w.TransactionCount++
	}

	weeks := make([]models.WeeklyAggregate, 0, len(byWeek))
	for key, w := range byWeek {
		w.LossDays = lossDays[key]
		w.NetProfit = w.Income.Sub(w.Expense)
		w.FinancialRatio = FinancialRatio(w.Income, w.Expense)
		weeks = append(weeks, *w)
	}
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].StoreName != weeks[j].StoreName {
			return weeks[i].StoreName < weeks[j].StoreName
		}
		return weeks[i].WeekStart.Before(weeks[j].WeekStart)
	})
	return weeks
}

// FinancialRatio returns income / (expense + 1).
func FinancialRatio(income, expense decimal.Decimal) float64 {
	return income.InexactFloat64() / expense.Add(one).InexactFloat64()
}
