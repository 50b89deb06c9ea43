package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/source"
)

const testHeader = "Nama Penerima;KTP/SIM;Kota;Kat. Subprogram;Sumber Anggaran;Jumlah Bantuan;Durasi Total;Tahun;Cluster"

// writeProgram writes a program extract with the standard header into dir.
func writeProgram(t testing.TB, dir string, p model.Program, rows ...string) string {
	t.Helper()
	path := filepath.Join(dir, source.DefaultFileName(p))
	content := strings.Join(append([]string{testHeader}, rows...), "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func dec(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func rec(p model.Program, city, sub, fund, amount, duration string, year int) model.Record {
	r := model.Record{Program: p, City: city, Subprogram: sub, FundingSource: fund, Year: year}
	if amount != "" {
		r.Amount = dec(amount)
	}
	if duration != "" {
		r.Duration = dec(duration)
	}
	return r
}
