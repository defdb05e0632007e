package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySummary represents the income and expense of one store on one day
type DailySummary struct {
	StoreName string          `json:"store_name"`
	Date      time.Time       `json:"date"`
	Income    decimal.Decimal `json:"income"`
	Expense   decimal.Decimal `json:"expense"`
	LossFlag  bool            `json:"loss_flag"` // Expense > Income
}

// WeeklyAggregate represents one store's activity within a Monday-anchored week
type WeeklyAggregate struct {
	StoreName        string          `json:"store_name"`
	WeekStart        time.Time       `json:"week_start"`
	Income           decimal.Decimal `json:"income"`
	Expense          decimal.Decimal `json:"expense"`
	TransactionCount int             `json:"transaction_count"`
	LossDays         int             `json:"loss_days"`
	NetProfit        decimal.Decimal `json:"net_profit"`      // Income - Expense
	FinancialRatio   float64         `json:"financial_ratio"` // Income / (Expense + 1)
}

// NumFeatures is the length of every feature vector fed to the scaler and classifier.
const NumFeatures = 6

// FeatureNames lists the feature columns in vector order.
var FeatureNames = [NumFeatures]string{
	"pemasukan",
	"pengeluaran",
	"jumlah_transaksi",
	"jumlah_hari_rugi",
	"rasio_transaksi",
	"persen_pengeluaran",
}

// FeatureVector holds the model inputs derived from a weekly aggregate or a request
type FeatureVector struct {
	Income           float64 `json:"pemasukan"`
	Expense          float64 `json:"pengeluaran"`
	TransactionCount float64 `json:"jumlah_transaksi"`
	LossDays         float64 `json:"jumlah_hari_rugi"`
	TransactionRatio float64 `json:"rasio_transaksi"`
	ExpenseShare     float64 `json:"persen_pengeluaran"`
}

// Array returns the features in the order the scaler and classifier were fitted on.
func (f FeatureVector) Array() [NumFeatures]float64 {
	return [NumFeatures]float64{
		f.Income,
		f.Expense,
		f.TransactionCount,
		f.LossDays,
		f.TransactionRatio,
		f.ExpenseShare,
	}
}

// HealthLabel is the financial condition category of a business week
type HealthLabel string

const (
	LabelHealthy              HealthLabel = "Sehat"
	LabelAdequatelyHealthy    HealthLabel = "Cukup Sehat"
	LabelNeedsAttention       HealthLabel = "Perlu Perhatian"
	LabelNeedsSpecialHandling HealthLabel = "Perlu Penanganan Khusus"
)

// LabelledWeek pairs a weekly aggregate with its derived features and training label
type LabelledWeek struct {
	WeeklyAggregate
	Features FeatureVector `json:"features"`
	Label    HealthLabel   `json:"label"`
}

// HealthAnalysis is the response of the health classifier
type HealthAnalysis struct {
	HealthStatus string  `json:"health_status"`
	Confidence   float64 `json:"confidence"`
}
