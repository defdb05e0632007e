// Package normalizer turns raw merchant transaction log rows into typed records.
package normalizer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"

	"github.com/Dan9191/umkm-health/internal/models"
)

// Column names after case normalization.
const (
	ColStoreName = "nama toko"
	ColDate      = "tanggal"
	ColKind      = "jenis"
	ColAmount    = "nominal"
)

var requiredColumns = []string{ColStoreName, ColDate, ColKind, ColAmount}

var (
	ErrMissingColumn   = errors.New("missing required column")
	ErrDuplicateColumn = errors.New("duplicate column")
	ErrInvalidDate     = errors.New("invalid date")
	ErrUnknownKind     = errors.New("unknown transaction kind")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrMissingStore    = errors.New("missing store name")
)

// NormalizeHeader lowercases and trims a column name.
func NormalizeHeader(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// Row is a raw log row keyed by normalized column name
type Row map[string]string

// ParseDate parses a date string in any common layout and truncates it to a UTC date.
func ParseDate(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}

// ParseKind accepts exactly the two domain literals.
func ParseKind(s string) (models.Kind, error) {
	switch k := models.Kind(strings.TrimSpace(s)); k {
	case models.KindIncome, models.KindExpense:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
}

// NormalizeRow converts one raw row into a TransactionRecord.
// A signed amount keeps only its magnitude; the kind decides the direction.
func NormalizeRow(row Row) (models.TransactionRecord, error) {
	store := strings.TrimSpace(row[ColStoreName])
	if store == "" {
		return models.TransactionRecord{}, ErrMissingStore
	}
	date, err := ParseDate(row[ColDate])
	if err != nil {
		return models.TransactionRecord{}, err
	}
	kind, err := ParseKind(row[ColKind])
	if err != nil {
		return models.TransactionRecord{}, err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(row[ColAmount]))
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("%w %q: %v", ErrInvalidAmount, row[ColAmount], err)
	}
	return models.TransactionRecord{
		StoreName: store,
		Date:      date,
		Kind:      kind,
		Amount:    amount.Abs(),
	}, nil
}

// Normalize maps rows to records in order. The first bad row aborts the batch.
func Normalize(rows []Row) ([]models.TransactionRecord, error) {
	records := make([]models.TransactionRecord, 0, len(rows))
	for i, row := range rows {
		rec, err := NormalizeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// ReadRows reads a CSV transaction log, skipping a UTF-8/UTF-16 BOM if present.
func ReadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty transaction log")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		key := NormalizeHeader(name)
		if _, ok := colIndex[key]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, key)
		}
		colIndex[key] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIndex[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}

	var rows []Row
	line := 1
	for {
		line++
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row := make(Row, len(colIndex))
		for name, idx := range colIndex {
			if idx < len(rec) {
				row[name] = strings.TrimSpace(rec[idx])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Parse reads and normalizes a CSV transaction log.
func Parse(r io.Reader) ([]models.TransactionRecord, error) {
	rows, err := ReadRows(r)
	if err != nil {
		return nil, err
	}
	return Normalize(rows)
}
