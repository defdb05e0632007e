package normalizer

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Dan9191/umkm-health/internal/models"
)

func TestParse(t *testing.T) {
	log := "\ufeffNama Toko,Tanggal,Jenis,Nominal\n" +
		"Warung Bu Sri,2024-01-15,pemasukan,150000\n" +
		"Warung Bu Sri,2024-01-15 18:30:00,pengeluaran,-50000\n" +
		"Nasi Padang,2024/01/21,pemasukan,75000.50\n"

	records, err := Parse(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("Parse() returned %d records, want 3", len(records))
	}

	first := records[0]
	if first.StoreName != "Warung Bu Sri" || first.Kind != models.KindIncome {
		t.Errorf("first record = %+v", first)
	}
	if !first.Income().Equal(first.Amount) || !first.Expense().IsZero() {
		t.Errorf("income/expense split wrong: income=%s expense=%s", first.Income(), first.Expense())
	}

	second := records[1]
	if second.Amount.String() != "50000" {
		t.Errorf("signed amount = %s, want 50000", second.Amount)
	}
	if !second.Date.Equal(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("timestamp not truncated to date: %v", second.Date)
	}
	if !second.Income().IsZero() || !second.Expense().Equal(second.Amount) {
		t.Errorf("expense split wrong: income=%s expense=%s", second.Income(), second.Expense())
	}

	if records[2].Amount.String() != "75000.5" {
		t.Errorf("decimal amount = %s, want 75000.5", records[2].Amount)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want error
	}{
		{
			name: "missing column",
			log:  "nama toko,tanggal,jenis\nA,2024-01-01,pemasukan\n",
			want: ErrMissingColumn,
		},
		{
			name: "duplicate column after case folding",
			log:  "nama toko,Tanggal,tanggal,jenis,nominal\nA,2024-01-01,2024-02-01,pemasukan,10\n",
			want: ErrDuplicateColumn,
		},
		{
			name: "bad date",
			log:  "nama toko,tanggal,jenis,nominal\nA,kemarin,pemasukan,10\n",
			want: ErrInvalidDate,
		},
		{
			name: "unknown kind",
			log:  "nama toko,tanggal,jenis,nominal\nA,2024-01-01,income,10\n",
			want: ErrUnknownKind,
		},
		{
			name: "kind is case sensitive",
			log:  "nama toko,tanggal,jenis,nominal\nA,2024-01-01,Pemasukan,10\n",
			want: ErrUnknownKind,
		},
		{
			name: "bad amount",
			log:  "nama toko,tanggal,jenis,nominal\nA,2024-01-01,pemasukan,sepuluh\n",
			want: ErrInvalidAmount,
		},
		{
			name: "missing store",
			log:  "nama toko,tanggal,jenis,nominal\n,2024-01-01,pemasukan,10\n",
			want: ErrMissingStore,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Parse(strings.NewReader(tt.log))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse() error = %v, want %v", err, tt.want)
			}
			if records != nil {
				t.Errorf("Parse() returned %d records on error, want none", len(records))
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	if _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("Parse(empty) error = nil, want error")
	}
}

func TestNormalizeHeader(t *testing.T) {
	for in, want := range map[string]string{
		"Nama Toko": "nama toko",
		" TANGGAL ": "tanggal",
		"nominal":   "nominal",
		"JeNiS\t":   "jenis",
	} {
		if got := NormalizeHeader(in); got != want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2024-01-15", "2024-01-15"}, // Monday
		{"2024-01-16", "2024-01-15"},
		{"2024-01-21", "2024-01-15"}, // Sunday
		{"2024-01-22", "2024-01-22"},
		{"2024-01-01", "2024-01-01"},
		{"2023-12-31", "2023-12-25"},
	}
	for _, tt := range tests {
		d, err := ParseDate(tt.date)
		if err != nil {
			t.Fatalf("ParseDate(%q) error = %v", tt.date, err)
		}
		got := models.WeekStart(d).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("WeekStart(%s) = %s, want %s", tt.date, got, tt.want)
		}
	}
}
