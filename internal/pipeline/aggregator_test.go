package pipeline

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

func sampleRecords() []model.Record {
	return []model.Record{
		rec(model.Zakat, "Surabaya", "Sembako", "Zakat Mal", "100", "10", 2021),
		rec(model.Zakat, "Sidoarjo", "Modal", "Infaq", "300", "20", 2022),
		rec(model.Zakat, "Surabaya", "Sembako", "Zakat Mal", "200", "", 2022),
		rec(model.Yatim, "Gresik", "Beasiswa", "Infaq", "100", "30", 2022),
		rec(model.Yatim, "", "Beasiswa", "", "", "40", 0),
	}
}

func TestSummarize(t *testing.T) {
	stats := Summarize(sampleRecords())
	if stats.Records != 5 {
		t.Errorf("Records = %d, want 5", stats.Records)
	}
	if !stats.TotalAmount.Equal(decimal.NewFromInt(700)) {
		t.Errorf("TotalAmount = %s, want 700", stats.TotalAmount)
	}
	if !stats.MeanDuration.Valid || !stats.MeanDuration.Decimal.Equal(decimal.NewFromInt(25)) {
		t.Errorf("MeanDuration = %v, want 25", stats.MeanDuration)
	}
	if stats.Program != "" {
		t.Errorf("mixed programs should leave Program empty, got %q", stats.Program)
	}

	empty := Summarize(nil)
	if empty.Records != 0 || empty.MeanDuration.Valid || !empty.TotalAmount.IsZero() {
		t.Errorf("empty summary = %+v", empty)
	}
}

func TestTopValues(t *testing.T) {
	got := TopValues(sampleRecords(), model.FieldCity, 0)
	want := []model.ValueCount{{Value: "Surabaya", Count: 2}, {Value: "Sidoarjo", Count: 1}, {Value: "Gresik", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopValues = %v, want %v", got, want)
	}

	if got := TopValues(sampleRecords(), model.FieldCity, 1); len(got) != 1 || got[0].Value != "Surabaya" {
		t.Errorf("TopValues n=1 = %v", got)
	}
}

func TestTopValues_TiesKeepFirstSeen(t *testing.T) {
	records := []model.Record{
		{City: "B"}, {City: "A"}, {City: "C"}, {City: "A"}, {City: "B"},
	}
	got := TopValues(records, model.FieldCity, 0)
	want := []model.ValueCount{{Value: "B", Count: 2}, {Value: "A", Count: 2}, {Value: "C", Count: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopValues = %v, want %v", got, want)
	}
}

func TestTopSubprogramsIn(t *testing.T) {
	records := append(sampleRecords(),
		rec(model.Yatim, "Surabaya", "Beasiswa", "Infaq", "50", "5", 2023),
		rec(model.Yatim, "Surabaya", "Beasiswa", "Infaq", "50", "5", 2023),
		rec(model.Yatim, "Surabaya", "", "Infaq", "50", "5", 2023),
	)
	got := TopSubprogramsIn(records, "Surabaya", 5)
	want := []model.ValueCount{{Value: "Sembako", Count: 2}, {Value: "Beasiswa", Count: 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopSubprogramsIn = %v, want %v", got, want)
	}
	if got := TopSubprogramsIn(records, "surabaya", 5); len(got) != 0 {
		t.Errorf("city match should be exact, got %v", got)
	}
}

func TestTopAmounts(t *testing.T) {
	records := []model.Record{
		{Amount: dec("100")}, {Amount: dec("100.0")}, {Amount: dec("250")}, {},
	}
	got := TopAmounts(records, 5)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if !got[0].Value.Equal(decimal.NewFromInt(100)) || got[0].Count != 2 {
		t.Errorf("top amount = %v x%d", got[0].Value, got[0].Count)
	}

	durations := TopDurations(sampleRecords(), 0)
	if len(durations) != 4 {
		t.Errorf("TopDurations len = %d, want 4", len(durations))
	}
}

func TestMeanAmountBy(t *testing.T) {
	got := MeanAmountBy(sampleRecords(), model.FieldSubprogram, 0)
	if len(got) != 3 {
		t.Fatalf("groups = %d, want 3", len(got))
	}
	if got[0].Group != "Modal" || !got[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Errorf("first group = %+v", got[0])
	}
	if got[1].Group != "Sembako" || !got[1].Amount.Equal(decimal.NewFromInt(150)) || got[1].Count != 2 {
		t.Errorf("second group = %+v", got[1])
	}
}

func TestSumAmountBy(t *testing.T) {
	got := SumAmountBy(sampleRecords(), model.FieldFundingSource)
	if len(got) != 2 {
		t.Fatalf("groups = %d, want 2", len(got))
	}
	if got[0].Group != "Infaq" || !got[0].Amount.Equal(decimal.NewFromInt(400)) || got[1].Group != "Zakat Mal" {
		t.Errorf("groups = %+v", got)
	}
}

func TestMeanDurationByYear(t *testing.T) {
	got := MeanDurationByYear(sampleRecords())
	if len(got) != 2 {
		t.Fatalf("years = %d, want 2", len(got))
	}
	if got[0].Year != 2021 || !got[0].MeanDuration.Equal(decimal.NewFromInt(10)) {
		t.Errorf("2021 = %+v", got[0])
	}
	if got[1].Year != 2022 || !got[1].MeanDuration.Equal(decimal.NewFromInt(25)) || got[1].Count != 2 {
		t.Errorf("2022 = %+v", got[1])
	}
}

func TestProgramTotals(t *testing.T) {
	got := ProgramTotals(sampleRecords())
	if len(got) != 2 {
		t.Fatalf("programs = %d, want 2", len(got))
	}
	if got[0].Program != model.Zakat || got[0].Records != 3 || !got[0].TotalAmount.Equal(decimal.NewFromInt(600)) {
		t.Errorf("Zakat = %+v", got[0])
	}
	if got[1].Program != model.Yatim || got[1].Records != 2 {
		t.Errorf("Yatim = %+v", got[1])
	}
}

func TestYearlyTrend(t *testing.T) {
	got := YearlyTrend(sampleRecords())
	want := []struct {
		year    int
		program model.Program
		amount  int64
	}{
		{2021, model.Zakat, 100},
		{2022, model.Zakat, 500},
		{2022, model.Yatim, 100},
	}
	if len(got) != len(want) {
		t.Fatalf("trend = %+v", got)
	}
	for i, w := range want {
		if got[i].Year != w.year || got[i].Program != w.program || !got[i].Amount.Equal(decimal.NewFromInt(w.amount)) {
			t.Errorf("trend[%d] = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestFilters(t *testing.T) {
	records := sampleRecords()
	records[0].Recipient, records[0].IDNumber = "Siti Aminah", "3578001"
	records[1].Recipient, records[1].IDNumber = "Budi", "3515002"
	records[0].Cluster, records[0].HasCluster = 1, true
	records[1].Cluster, records[1].HasCluster = 0, true
	records[2].Cluster, records[2].HasCluster = 1, true

	if got := FilterByYears(records, 2022); len(got) != 3 {
		t.Errorf("FilterByYears(2022) = %d records, want 3", len(got))
	}
	if got := FilterByYears(records); len(got) != len(records) {
		t.Errorf("FilterByYears() = %d records, want all", len(got))
	}
	if got := FilterByCluster(records, 1); len(got) != 2 {
		t.Errorf("FilterByCluster(1) = %d, want 2", len(got))
	}
	if got := FilterByCluster(records, 0); len(got) != 1 || got[0].Recipient != "Budi" {
		t.Errorf("FilterByCluster(0) = %+v", got)
	}
	if got := FilterByProgram(records, model.Yatim); len(got) != 2 {
		t.Errorf("FilterByProgram = %d, want 2", len(got))
	}
	if got := FilterByValue(records, model.FieldCity, "Surabaya"); len(got) != 2 {
		t.Errorf("FilterByValue = %d, want 2", len(got))
	}
	if got := Search(records, "aminah"); len(got) != 1 {
		t.Errorf("Search(name) = %d, want 1", len(got))
	}
	if got := Search(records, "3515"); len(got) != 1 || got[0].Recipient != "Budi" {
		t.Errorf("Search(id) = %+v", got)
	}
	if got := Years(records); !reflect.DeepEqual(got, []int{2022, 2021}) {
		t.Errorf("Years = %v", got)
	}
	if got := ClusterIDs(records); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("ClusterIDs = %v", got)
	}
}

func TestFilterDoesNotAlias(t *testing.T) {
	records := sampleRecords()
	out := FilterByYears(records)
	out[0].City = "changed"
	if records[0].City != "Surabaya" {
		t.Error("filter result aliases its input")
	}
}
