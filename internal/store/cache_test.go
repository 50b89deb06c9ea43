package store

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache", "datasets.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func testDataset() *model.Dataset {
	return &model.Dataset{
		Columns: []string{model.ColRecipient, model.ColAmount, model.ColDuration, model.ColCluster},
		Records: []model.Record{
			{
				Program: model.Zakat, Recipient: "Siti", IDNumber: "0035", City: "Surabaya",
				Subprogram: "Sembako", FundingSource: "Zakat Mal",
				Amount:   decimal.NewNullDecimal(decimal.RequireFromString("1500000.25")),
				Duration: decimal.NewNullDecimal(decimal.NewFromInt(12)),
				Year:     2023, Cluster: 2, HasCluster: true,
			},
			{Program: model.Zakat, Recipient: "Budi"},
		},
	}
}

func TestCache_RoundTrip(t *testing.T) {
	c := openTestCache(t)
	ds := testDataset()

	if err := c.Put("/data/program_zakat.csv", "fp", 100, 2048, ds); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok := c.Get("/data/program_zakat.csv", "fp", 100, 2048)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Columns) != 4 || got.Columns[3] != model.ColCluster {
		t.Errorf("Columns = %v", got.Columns)
	}
	if got.Len() != 2 {
		t.Fatalf("records = %d, want 2", got.Len())
	}

	r := got.Records[0]
	if r.IDNumber != "0035" || r.City != "Surabaya" || r.Year != 2023 {
		t.Errorf("record = %+v", r)
	}
	if !r.Amount.Valid || !r.Amount.Decimal.Equal(decimal.RequireFromString("1500000.25")) {
		t.Errorf("Amount = %v", r.Amount)
	}
	if !r.HasCluster || r.Cluster != 2 {
		t.Errorf("Cluster = %d (has=%v)", r.Cluster, r.HasCluster)
	}

	nulls := got.Records[1]
	if nulls.Amount.Valid || nulls.Duration.Valid || nulls.HasCluster {
		t.Errorf("null fields did not round-trip: %+v", nulls)
	}
}

func TestCache_StaleMiss(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("/x.csv", "fp", 100, 10, testDataset()); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("/x.csv", "fp", 101, 10); ok {
		t.Error("changed mtime should miss")
	}
	if _, ok := c.Get("/x.csv", "fp", 100, 11); ok {
		t.Error("changed size should miss")
	}
	if _, ok := c.Get("/y.csv", "fp", 100, 10); ok {
		t.Error("unknown path should miss")
	}
	if _, ok := c.Get("/x.csv", "other", 100, 10); ok {
		t.Error("changed fingerprint should miss")
	}
}

func TestCache_Replace(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("/x.csv", "fp", 1, 10, testDataset()); err != nil {
		t.Fatal(err)
	}
	smaller := &model.Dataset{Records: []model.Record{{Program: model.Zakat, Recipient: "Only"}}}
	if err := c.Put("/x.csv", "fp", 2, 5, smaller); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("/x.csv", "fp", 2, 5)
	if !ok || got.Len() != 1 || got.Records[0].Recipient != "Only" {
		t.Fatalf("replacement not served: %+v, %v", got, ok)
	}
	if n, err := c.DatasetCount(); err != nil || n != 1 {
		t.Errorf("DatasetCount = %d, %v", n, err)
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if n, _ := c.DatasetCount(); n != 0 {
		t.Errorf("after Clear, DatasetCount = %d", n)
	}
}

func TestCache_EmptyDataset(t *testing.T) {
	c := openTestCache(t)
	if err := c.Put("/empty.csv", "fp", 1, 1, &model.Dataset{Columns: []string{"a"}}); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get("/empty.csv", "fp", 1, 1)
	if !ok || !got.IsEmpty() {
		t.Errorf("empty dataset round-trip = %+v, %v", got, ok)
	}
}

func TestOpen_RebuildsOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.db")
	c, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Put("/x.csv", "fp", 1, 1, testDataset()); err != nil {
		t.Fatal(err)
	}
	if _, err := c.db.Exec("PRAGMA user_version = 1"); err != nil {
		t.Fatal(err)
	}
	_ = c.Close()

	c, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = c.Close() }()
	if n, err := c.DatasetCount(); err != nil || n != 0 {
		t.Errorf("DatasetCount after rebuild = %d, %v; want 0", n, err)
	}
	if err := c.Put("/x.csv", "fp", 1, 1, testDataset()); err != nil {
		t.Errorf("Put after rebuild: %v", err)
	}
}
