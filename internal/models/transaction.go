package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind is the transaction direction as written in the merchant logs.
type Kind string

const (
	KindIncome  Kind = "pemasukan"
	KindExpense Kind = "pengeluaran"
)

// TransactionRecord represents a single normalized row of a transaction log
type TransactionRecord struct {
	StoreName string          `json:"store_name"`
	Date      time.Time       `json:"date"` // midnight UTC
	Kind      Kind            `json:"kind"`
	Amount    decimal.Decimal `json:"amount"` // always >= 0
}

// Income returns the amount if the record is income, zero otherwise
func (t TransactionRecord) Income() decimal.Decimal {
	if t.Kind == KindIncome {
		return t.Amount
	}
	return decimal.Zero
}

// Expense returns the amount if the record is an expense, zero otherwise
func (t TransactionRecord) Expense() decimal.Decimal {
	if t.Kind == KindExpense {
		return t.Amount
	}
	return decimal.Zero
}

// WeekStart returns the Monday on or before the record date
func (t TransactionRecord) WeekStart() time.Time {
	return WeekStart(t.Date)
}

// WeekStart returns the Monday on or before d, truncated to midnight UTC.
func WeekStart(d time.Time) time.Time {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}
