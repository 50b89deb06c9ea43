package source

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/ydsf-surabaya/aidboard/internal/model"
)

const testHeader = "Nama Penerima;KTP/SIM;Kota;Kat. Subprogram;Sumber Anggaran;Jumlah Bantuan;Durasi Total;Tahun;Cluster"

// writeExtract creates a temp CSV file and returns a ProgramFile for it.
func writeExtract(t *testing.T, lines ...string) ProgramFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "program_zakat.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return ProgramFile{Program: model.Zakat, Path: path, Exists: true}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestParseFile_Fields(t *testing.T) {
	pf := writeExtract(t,
		testHeader,
		"Ahmad;0012345;Surabaya;Sembako;Zakat Mal;1500000;45;2023;1",
	)

	result := ParseFile(pf, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if got := result.Dataset.Len(); got != 1 {
		t.Fatalf("records = %d, want 1", got)
	}

	r := result.Dataset.Records[0]
	if r.Program != model.Zakat {
		t.Errorf("Program = %q, want Zakat", r.Program)
	}
	if r.IDNumber != "0012345" {
		t.Errorf("IDNumber = %q, want leading zeros kept", r.IDNumber)
	}
	if r.City != "Surabaya" || r.Subprogram != "Sembako" || r.FundingSource != "Zakat Mal" {
		t.Errorf("categorical fields = %q/%q/%q", r.City, r.Subprogram, r.FundingSource)
	}
	if !r.Amount.Valid || !r.Amount.Decimal.Equal(mustDecimal(t, "1500000")) {
		t.Errorf("Amount = %v, want 1500000", r.Amount)
	}
	if !r.Duration.Valid || !r.Duration.Decimal.Equal(mustDecimal(t, "45")) {
		t.Errorf("Duration = %v, want 45", r.Duration)
	}
	if r.Year != 2023 {
		t.Errorf("Year = %d, want 2023", r.Year)
	}
	if !r.HasCluster || r.Cluster != 1 {
		t.Errorf("Cluster = %d (has=%v), want 1", r.Cluster, r.HasCluster)
	}
}

func TestParseFile_Latin1(t *testing.T) {
	pf := writeExtract(t,
		testHeader,
		"Jos\xe9;1;Gresik;Beasiswa;Infaq;100;3;2022;",
	)

	result := ParseFile(pf, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if got := result.Dataset.Records[0].Recipient; got != "José" {
		t.Errorf("Recipient = %q, want José", got)
	}
	if result.Dataset.Records[0].HasCluster {
		t.Error("blank Cluster cell should leave HasCluster false")
	}
}

func TestParseFile_NumericCoercion(t *testing.T) {
	pf := writeExtract(t,
		testHeader,
		"A;1;X;S;F;;10;2021;0",
		"B;2;X;S;F;1,500;10;2021;0",
		"C;3;X;S;F;banyak;10;2021;0",
		"D;4;X;S;F; 42 ;  ;2021;0",
		"E;5;X;S;F;12.50;7.5;2021;0",
	)

	result := ParseFile(pf, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	recs := result.Dataset.Records

	for i := 0; i < 3; i++ {
		if recs[i].Amount.Valid {
			t.Errorf("row %d: Amount = %v, want null", i+1, recs[i].Amount.Decimal)
		}
	}
	if !recs[3].Amount.Valid || !recs[3].Amount.Decimal.Equal(mustDecimal(t, "42")) {
		t.Errorf("row 4: Amount = %v, want 42", recs[3].Amount)
	}
	if recs[3].Duration.Valid {
		t.Error("row 4: whitespace duration should be null")
	}
	if !recs[4].Amount.Decimal.Equal(mustDecimal(t, "12.5")) || !recs[4].Duration.Decimal.Equal(mustDecimal(t, "7.5")) {
		t.Errorf("row 5: Amount/Duration = %v/%v", recs[4].Amount, recs[4].Duration)
	}
	// "1,500" and "banyak" are the only present-but-invalid cells.
	if result.Coerced != 2 {
		t.Errorf("Coerced = %d, want 2", result.Coerced)
	}
}

func TestParseFile_MissingValueTokens(t *testing.T) {
	pf := writeExtract(t,
		testHeader,
		"A;1;NaN;N/A;;100;1;2021;",
	)

	result := ParseFile(pf, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	r := result.Dataset.Records[0]
	if r.City != "" || r.Subprogram != "" || r.FundingSource != "" {
		t.Errorf("missing tokens should normalize to empty, got %q/%q/%q", r.City, r.Subprogram, r.FundingSource)
	}
}

func TestParseFile_MissingFile(t *testing.T) {
	pf := ProgramFile{Program: model.Yatim, Path: filepath.Join(t.TempDir(), "nope.csv")}
	result := ParseFile(pf, DefaultOptions())
	if !errors.Is(result.Err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", result.Err)
	}
}

func TestParseFile_HeaderOnly(t *testing.T) {
	pf := writeExtract(t, testHeader)
	result := ParseFile(pf, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Dataset == nil || !result.Dataset.IsEmpty() {
		t.Fatal("header-only file should load as an empty, non-nil dataset")
	}
}

func TestParseFile_MissingColumn(t *testing.T) {
	pf := writeExtract(t, "Nama Penerima;Kota;Durasi Total", "A;X;1")
	result := ParseFile(pf, DefaultOptions())
	if !errors.Is(result.Err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", result.Err)
	}
}

func TestParseFile_RaggedRows(t *testing.T) {
	short := writeExtract(t, testHeader, "A;1;Surabaya;S;F;100")
	result := ParseFile(short, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("short row should be padded, got %v", result.Err)
	}
	if r := result.Dataset.Records[0]; r.Duration.Valid || r.Year != 0 {
		t.Errorf("padded cells should be null, got duration=%v year=%d", r.Duration, r.Year)
	}

	long := writeExtract(t, testHeader, "A;1;X;S;F;100;1;2021;0", "B;2;X;S;F;100;1;2021;0;extra")
	result = ParseFile(long, DefaultOptions())
	var rowErr *RowError
	if !errors.As(result.Err, &rowErr) {
		t.Fatalf("err = %v, want *RowError", result.Err)
	}
	if rowErr.Line != 3 || rowErr.Want != 9 || rowErr.Got != 10 {
		t.Errorf("RowError = %+v, want line 3, 9 vs 10", rowErr)
	}
}

func TestParseFile_BOMHeader(t *testing.T) {
	pf := writeExtract(t, "\xef\xbb\xbf"+testHeader, "A;1;X;S;F;5;1;2021;0")
	result := ParseFile(pf, DefaultOptions())
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Dataset.Columns[0] != model.ColRecipient {
		t.Errorf("first column = %q, want BOM stripped", result.Dataset.Columns[0])
	}
}

func TestParseFile_Deterministic(t *testing.T) {
	pf := writeExtract(t,
		testHeader,
		"A;01;Surabaya;Sembako;Zakat;100;10;2021;0",
		"B;02;Sidoarjo;Modal;Infaq;;x;2022;1",
		"C;03;;Beasiswa;Zakat;2.5e3;7;2023;",
	)

	first := ParseFile(pf, DefaultOptions())
	second := ParseFile(pf, DefaultOptions())
	if first.Err != nil || second.Err != nil {
		t.Fatalf("errors: %v / %v", first.Err, second.Err)
	}
	if !reflect.DeepEqual(first.Dataset, second.Dataset) {
		t.Fatal("loading the same file twice produced different datasets")
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"latin1", "ISO-8859-1", "windows-1252", "utf-8", "Shift_JIS"} {
		if _, err := LookupEncoding(name); err != nil {
			t.Errorf("LookupEncoding(%q): %v", name, err)
		}
	}
	if _, err := LookupEncoding("klingon"); err == nil {
		t.Error("expected error for unknown encoding")
	}
}

func TestResolvePath(t *testing.T) {
	got := ResolvePath("/data", model.Masjid, nil)
	if got != filepath.Join("/data", "program_masjid.csv") {
		t.Errorf("default path = %q", got)
	}

	got = ResolvePath("/data", model.Masjid, map[string]string{"masjid": "masjid_2025.csv"})
	if got != filepath.Join("/data", "masjid_2025.csv") {
		t.Errorf("relative override = %q", got)
	}

	got = ResolvePath("/data", model.Masjid, map[string]string{"Masjid": "/elsewhere/m.csv"})
	if got != "/elsewhere/m.csv" {
		t.Errorf("absolute override = %q", got)
	}
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "program_dakwah.csv"), []byte(testHeader+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	files := ScanDir(dir, nil)
	if len(files) != len(model.Programs) {
		t.Fatalf("files = %d, want %d", len(files), len(model.Programs))
	}
	if !files[0].Exists || files[0].Program != model.Dakwah {
		t.Errorf("Dakwah should be present: %+v", files[0])
	}
	if CountPresent(files) != 1 {
		t.Errorf("CountPresent = %d, want 1", CountPresent(files))
	}
}
