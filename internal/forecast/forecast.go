// Package forecast projects daily sales from a submitted history.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Dan9191/umkm-health/internal/models"
)

const (
	DefaultDays = 7
	MinDays     = 1
	MaxDays     = 30

	trendPerDay   = 0.001
	seasonalAmp   = 0.1
	seasonalCycle = 7
	noiseStdDev   = 0.05
)

var (
	ErrEmptyHistory = errors.New("sales history is empty")
	ErrDaysRange    = fmt.Errorf("number of days must be between %d and %d", MinDays, MaxDays)
	ErrNonFinite    = errors.New("sales projection is out of numeric range")
)

// Forecaster projects n days of sales from a history
type Forecaster interface {
	Forecast(history []models.SalesPoint, nDays int) ([]float64, error)
}

// Seasonal scales the historical mean by a linear trend, a weekly sine and
// multiplicative gaussian noise. Results are not reproducible between calls.
type Seasonal struct {
	normal func() float64
}

// NewSeasonal returns a forecaster drawing noise from the process-wide random source.
func NewSeasonal() *Seasonal {
	return &Seasonal{normal: rand.NormFloat64}
}

// Forecast returns nDays non-negative projections.
func (s *Seasonal) Forecast(history []models.SalesPoint, nDays int) ([]float64, error) {
	if len(history) == 0 {
		return nil, ErrEmptyHistory
	}
	if nDays < MinDays || nDays > MaxDays {
		return nil, ErrDaysRange
	}

	// running mean so very large sales do not overflow the sum
	var mean float64
	for i, p := range history {
		mean += (p.TotalSales - mean) / float64(i+1)
	}

	out := make([]float64, nDays)
	for i := range out {
		trend := 1 + float64(i)*trendPerDay
		seasonal := 1 + seasonalAmp*math.Sin(2*math.Pi*float64(i)/seasonalCycle)
		noise := 1 + noiseStdDev*s.normal()
		v := mean * trend * seasonal * noise
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return nil, ErrNonFinite
		}
		out[i] = math.Max(0, v)
	}
	return out, nil
}

// Horizon returns the calendar days a forecast covers, starting the day after
// the latest date in history.
func Horizon(history []models.SalesPoint, nDays int) []time.Time {
	if len(history) == 0 {
		return nil
	}
	last := history[0].Date
	for _, p := range history[1:] {
		if p.Date.After(last) {
			last = p.Date
		}
	}
	days := make([]time.Time, nDays)
	for i := range days {
		days[i] = last.AddDate(0, 0, i+1)
	}
	return days
}
