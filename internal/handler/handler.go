package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/umkm-health/internal/forecast"
	"github.com/Dan9191/umkm-health/internal/models"
	"github.com/Dan9191/umkm-health/internal/normalizer"
	"github.com/Dan9191/umkm-health/internal/service"
)

const maxBodyBytes = 1 << 20

// Request field names of the health analysis endpoint, in feature order.
const (
	FieldIncome           = "pemasukan"
	FieldExpense          = "pengeluaran"
	FieldTransactionCount = "jumlah_transaksi"
	FieldLossDays         = "jumlah_hari_rugi"
)

var requiredFields = []string{FieldIncome, FieldExpense, FieldTransactionCount, FieldLossDays}

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Home is a disabled root route
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusForbidden)
}

// Analyze handles business health classification
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := decodeJSON(w, r, &body); err != nil || body == nil {
		writeError(w, http.StatusBadRequest, "Invalid input. Please provide a JSON object.")
		return
	}

	for _, field := range requiredFields {
		if _, ok := body[field]; !ok {
			writeError(w, http.StatusBadRequest, (&MissingFieldError{Field: field}).Error())
			return
		}
	}

	values := make(map[string]float64, len(requiredFields))
	for _, field := range requiredFields {
		v, err := toFloat(body[field])
		if err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", field, err))
			return
		}
		values[field] = v
	}

	result, err := h.svc.AnalyzeHealth(r.Context(), service.HealthInput{
		Income:           values[FieldIncome],
		Expense:          values[FieldExpense],
		TransactionCount: values[FieldTransactionCount],
		LossDays:         values[FieldLossDays],
	})
	if err != nil {
		h.log.WithError(err).Error("Health analysis failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Predict handles the daily sales forecast
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var body any
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input. Please provide a list of daily sales data.")
		return
	}
	items, ok := body.([]any)
	if !ok || len(items) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid input. Please provide a list of daily sales data.")
		return
	}
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok || obj["date"] == nil || obj["total_sales"] == nil {
			writeError(w, http.StatusBadRequest, "Each item must contain 'date' and 'total_sales' fields.")
			return
		}
	}

	nDays := parseDays(r.URL.Query().Get("n_days"))
	if nDays < forecast.MinDays || nDays > forecast.MaxDays {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid input. Please enter a number between %d and %d for the number of days.", forecast.MinDays, forecast.MaxDays))
		return
	}

	history, err := toSalesPoints(items)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	preds, err := h.svc.Forecast(history, nDays)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, forecast.ErrDaysRange) || errors.Is(err, forecast.ErrEmptyHistory) || errors.Is(err, forecast.ErrNonFinite) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preds)
}

// parseDays reads n_days; a missing or non-integer value means the default.
func parseDays(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return forecast.DefaultDays
	}
	return n
}

func toSalesPoints(items []any) ([]models.SalesPoint, error) {
	points := make([]models.SalesPoint, len(items))
	for i, item := range items {
		obj := item.(map[string]any)
		rawDate, ok := obj["date"].(string)
		if !ok {
			return nil, fmt.Errorf("item %d: date must be a string", i)
		}
		date, err := normalizer.ParseDate(rawDate)
		if err != nil {
			return nil, fmt.Errorf("item %d: %v", i, err)
		}
		sales, err := toFloat(obj["total_sales"])
		if err != nil {
			return nil, fmt.Errorf("item %d: total_sales: %v", i, err)
		}
		points[i] = models.SalesPoint{Date: date, TotalSales: sales}
	}
	return points, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.UseNumber()
	return dec.Decode(v)
}

// writeJSON encodes before committing the status so a failed encode still
// reaches the client as an error object.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		data, _ = json.Marshal(map[string]string{"error": "failed to encode response"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
