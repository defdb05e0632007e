package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/umkm-health/internal/classifier"
	"github.com/Dan9191/umkm-health/internal/features"
	"github.com/Dan9191/umkm-health/internal/forecast"
	"github.com/Dan9191/umkm-health/internal/models"
	"github.com/Dan9191/umkm-health/internal/scaler"
)

var ErrInferenceTimeout = errors.New("inference timed out")

// HealthInput holds the raw request fields of a health analysis
type HealthInput struct {
	Income           float64
	Expense          float64
	TransactionCount float64
	LossDays         float64
}

// Service handles health analysis and sales forecasting. All collaborators are
// loaded once at startup and only read afterwards.
type Service struct {
	classifier classifier.Classifier
	scaler     *scaler.State
	labels     []string
	forecaster forecast.Forecaster
	timeout    time.Duration
	log        *logrus.Logger
}

// NewService initializes a new service
func NewService(clf classifier.Classifier, sc *scaler.State, labels []string, fc forecast.Forecaster, timeout time.Duration, log *logrus.Logger) *Service {
	return &Service{
		classifier: clf,
		scaler:     sc,
		labels:     labels,
		forecaster: fc,
		timeout:    timeout,
		log:        log,
	}
}

// AnalyzeHealth derives and scales the feature vector, runs the classifier and
// returns the top class with its probability.
func (s *Service) AnalyzeHealth(ctx context.Context, in HealthInput) (*models.HealthAnalysis, error) {
	vec := features.Derive(in.Income, in.Expense, in.TransactionCount, in.LossDays)
	scaled, err := s.scaler.TransformVector(vec)
	if err != nil {
		return nil, fmt.Errorf("failed to scale features: %w", err)
	}

	probs, err := s.predict(ctx, scaled)
	if err != nil {
		return nil, err
	}
	if len(probs) != len(s.labels) {
		return nil, fmt.Errorf("classifier returned %d probabilities for %d labels", len(probs), len(s.labels))
	}

	idx, confidence := classifier.ArgMax(probs)
	if idx < 0 {
		return nil, fmt.Errorf("classifier returned no valid probability")
	}
	result := &models.HealthAnalysis{
		HealthStatus: s.labels[idx],
		Confidence:   confidence,
	}
	s.log.WithFields(logrus.Fields{
		"health_status":      result.HealthStatus,
		"confidence":         result.Confidence,
		"rasio_transaksi":    vec.TransactionRatio,
		"persen_pengeluaran": vec.ExpenseShare,
	}).Debug("Health analysed")
	return result, nil
}

type prediction struct {
	probs []float64
	err   error
}

// predict bounds the classifier call by the configured timeout.
func (s *Service) predict(ctx context.Context, x []float64) ([]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan prediction, 1)
	go func() {
		probs, err := s.classifier.Predict(ctx, x)
		done <- prediction{probs: probs, err: err}
	}()

	select {
	case p := <-done:
		if errors.Is(p.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrInferenceTimeout, s.timeout)
		}
		if p.err != nil {
			return nil, fmt.Errorf("classifier failed: %w", p.err)
		}
		return p.probs, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s", ErrInferenceTimeout, s.timeout)
		}
		return nil, ctx.Err()
	}
}

// Forecast projects nDays of sales from the history
func (s *Service) Forecast(history []models.SalesPoint, nDays int) ([]float64, error) {
	preds, err := s.forecaster.Forecast(history, nDays)
	if err != nil {
		return nil, err
	}
	if s.log.IsLevelEnabled(logrus.DebugLevel) {
		horizon := forecast.Horizon(history, nDays)
		s.log.WithFields(logrus.Fields{
			"n_days": nDays,
			"from":   horizon[0].Format("2006-01-02"),
			"to":     horizon[len(horizon)-1].Format("2006-01-02"),
		}).Debug("Sales forecast generated")
	}
	return preds, nil
}
