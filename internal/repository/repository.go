package repository

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Dan9191/umkm-health/internal/classifier"
	"github.com/Dan9191/umkm-health/internal/models"
	"github.com/Dan9191/umkm-health/internal/normalizer"
	"github.com/Dan9191/umkm-health/internal/scaler"
)

// Repository provides flat-file access to transaction logs and model artifacts
type Repository struct {
	log *logrus.Logger
}

// NewRepository initializes a new repository
func NewRepository(log *logrus.Logger) *Repository {
	return &Repository{log: log}
}

// ExpandInputs resolves files and directories into an ordered list of CSV files.
// Directories contribute their *.csv entries in lexical order.
func (r *Repository) ExpandInputs(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("failed to stat input %s: %w", in, err)
		}
		if !info.IsDir() {
			files = append(files, in)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(in, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", in, err)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no transaction logs found")
	}
	return files, nil
}

// LoadTransactions reads and concatenates every log in order.
// Any malformed row aborts the whole load.
func (r *Repository) LoadTransactions(inputs []string) ([]models.TransactionRecord, error) {
	files, err := r.ExpandInputs(inputs)
	if err != nil {
		return nil, err
	}
	var all []models.TransactionRecord
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		records, err := normalizer.Parse(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		r.log.WithFields(logrus.Fields{"file": path, "records": len(records)}).Debug("Transaction log loaded")
		all = append(all, records...)
	}
	return all, nil
}

// LoadScaler reads persisted scaler parameters
func (r *Repository) LoadScaler(path string) (*scaler.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scaler params: %w", err)
	}
	s, err := scaler.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load scaler params %s: %w", path, err)
	}
	for i, rng := range s.Range {
		if rng == 0 {
			r.log.Warnf("Scaler feature %s has zero range; it will always scale to 0", models.FeatureNames[i])
		}
	}
	return s, nil
}

// LoadLabels reads the ordered class names of the classifier
func (r *Repository) LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read label classes: %w", err)
	}
	var labels []string
	if err := json.Unmarshal(data, &labels); err != nil {
		return nil, fmt.Errorf("failed to decode label classes: %w", err)
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("label classes file %s is empty", path)
	}
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		if seen[l] {
			return nil, fmt.Errorf("duplicate label class %q", l)
		}
		seen[l] = true
	}
	return labels, nil
}

// LoadClassifier reads the classifier network artifact
func (r *Repository) LoadClassifier(path string) (*classifier.Network, error) {
	net, err := classifier.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if net.InputDim != models.NumFeatures {
		return nil, fmt.Errorf("classifier expects %d inputs, want %d", net.InputDim, models.NumFeatures)
	}
	return net, nil
}

// SaveScaler writes scaler parameters as JSON
func (r *Repository) SaveScaler(path string, s *scaler.State) error {
	data, err := s.Marshal()
	if err != nil {
		return fmt.Errorf("failed to encode scaler params: %w", err)
	}
	return writeFile(path, data)
}

// SaveLabels writes the ordered class names as JSON
func (r *Repository) SaveLabels(path string, labels []string) error {
	data, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to encode label classes: %w", err)
	}
	return writeFile(path, data)
}

var datasetHeader = []string{
	"nama toko", "periode_minggu",
	"pemasukan", "pengeluaran", "jumlah_transaksi", "jumlah_hari_rugi",
	"laba_bersih", "rasio_keuangan",
	"rasio_transaksi", "persen_pengeluaran",
	"label_kelas",
}

// SaveDataset writes the labelled weekly dataset as CSV
func (r *Repository) SaveDataset(path string, weeks []models.LabelledWeek) error {
	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.Write(datasetHeader); err != nil {
		return err
	}
	for _, wk := range weeks {
		row := []string{
			wk.StoreName,
			wk.WeekStart.Format("2006-01-02"),
			wk.Income.String(),
			wk.Expense.String(),
			strconv.Itoa(wk.TransactionCount),
			strconv.Itoa(wk.LossDays),
			wk.NetProfit.String(),
			formatFloat(wk.FinancialRatio),
			formatFloat(wk.Features.TransactionRatio),
			formatFloat(wk.Features.ExpenseShare),
			string(wk.Label),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return writeFile(path, []byte(b.String()))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// writeFile replaces path atomically via a temp file in the same directory.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
