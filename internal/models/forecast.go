package models

import "time"

// SalesPoint is one day of historical sales submitted for forecasting
type SalesPoint struct {
	Date       time.Time `json:"date"`
	TotalSales float64   `json:"total_sales"`
}
