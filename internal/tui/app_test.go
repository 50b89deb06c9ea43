package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/tui/components"
)

func rec(p model.Program, name, id string, amount int64, year, cluster int) model.Record {
	return model.Record{
		Program:       p,
		Recipient:     name,
		IDNumber:      id,
		City:          "Surabaya",
		Subprogram:    "Sembako",
		FundingSource: "Zakat Mal",
		Amount:        decimal.NewNullDecimal(decimal.NewFromInt(amount)),
		Duration:      decimal.NewNullDecimal(decimal.NewFromInt(10)),
		Year:          year,
		Cluster:       cluster,
		HasCluster:    true,
	}
}

func testDatasets() map[model.Program]*model.Dataset {
	return map[model.Program]*model.Dataset{
		model.Dakwah: {Records: []model.Record{
			rec(model.Dakwah, "Ani", "001", 100, 2021, 0),
			rec(model.Dakwah, "Budi", "002", 300, 2021, 0),
			rec(model.Dakwah, "Citra", "003", 50, 2022, 1),
			rec(model.Dakwah, "Anita", "004", 70, 2022, 1),
		}},
		model.Zakat: {Records: []model.Record{
			rec(model.Zakat, "Dedi", "005", 500, 2023, 2),
		}},
	}
}

// loadedApp returns an App that has received a DataLoadedMsg.
func loadedApp(t *testing.T, errs map[model.Program]error) App {
	t.Helper()
	a := NewApp(Options{Loader: pipeline.NewLoader(t.TempDir())})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 140, Height: 45})
	m, _ = m.Update(DataLoadedMsg{Datasets: testDatasets(), Errs: errs})
	return m.(App)
}

func press(t *testing.T, a App, keys ...string) App {
	t.Helper()
	var m tea.Model = a
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		m, _ = m.Update(msg)
	}
	return m.(App)
}

func TestTabAtXMatchesTabBar(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos); got != i {
				t.Errorf("active=%d: tabAtX(%d) = %d, want %d", active, pos, got, i)
			}
			if got := a.tabAtX(pos + w - 1); got != i {
				t.Errorf("active=%d: tabAtX(%d) = %d, want %d", active, pos+w-1, got, i)
			}
			if i < len(components.Tabs)-1 {
				if got := a.tabAtX(pos + w); got != -1 {
					t.Errorf("active=%d: separator at %d = %d, want -1", active, pos+w, got)
				}
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("active=%d: tabAtX past last tab = %d, want -1", active, got)
		}
	}
}

func TestMouseClickSelectsTab(t *testing.T) {
	a := loadedApp(t, nil)
	x := components.TabVisualWidth(components.Tabs[0], true) + 1 + 1
	m, _ := a.Update(tea.MouseMsg{X: x, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress})
	if got := m.(App).activeTab; got != tabClusters {
		t.Errorf("activeTab = %d, want %d", got, tabClusters)
	}
}

func TestYearCycling(t *testing.T) {
	a := loadedApp(t, nil)
	if want := []int{2023, 2022, 2021}; !equalInts(a.years, want) {
		t.Fatalf("years = %v, want %v", a.years, want)
	}

	for _, want := range []int{2023, 2022, 2021, 0} {
		a = press(t, a, "y")
		if a.year != want {
			t.Fatalf("year = %d, want %d", a.year, want)
		}
	}

	a = press(t, a, "Y")
	if a.year != 2021 {
		t.Fatalf("Y from all years = %d, want 2021", a.year)
	}
	if len(a.records) != 2 {
		t.Errorf("Dakwah records in 2021 = %d, want 2", len(a.records))
	}
	if len(a.combined) != 2 {
		t.Errorf("combined records in 2021 = %d, want 2", len(a.combined))
	}
}

func TestProgramSwitching(t *testing.T) {
	a := loadedApp(t, nil)
	if a.currentProgram() != model.Dakwah {
		t.Fatalf("initial program = %s, want Dakwah", a.currentProgram())
	}

	a = press(t, a, "[")
	if a.currentProgram() != model.Yatim {
		t.Errorf("[ from first = %s, want Yatim", a.currentProgram())
	}
	if len(a.records) != 0 || len(a.clusterIDs) != 0 {
		t.Errorf("Yatim has no data, got %d records", len(a.records))
	}

	a = press(t, a, "5")
	if a.currentProgram() != model.Zakat {
		t.Errorf("5 = %s, want Zakat", a.currentProgram())
	}
	if len(a.clusterIDs) != 1 || a.clusterIDs[0] != 2 {
		t.Errorf("Zakat clusters = %v, want [2]", a.clusterIDs)
	}
}

func TestInitialProgramAndYear(t *testing.T) {
	a := NewApp(Options{Loader: pipeline.NewLoader(t.TempDir()), Program: model.Zakat, Year: 2023})
	m, _ := a.Update(DataLoadedMsg{Datasets: testDatasets()})
	a = m.(App)
	if a.currentProgram() != model.Zakat || a.year != 2023 {
		t.Fatalf("program/year = %s/%d, want Zakat/2023", a.currentProgram(), a.year)
	}
	if len(a.records) != 1 {
		t.Errorf("records = %d, want 1", len(a.records))
	}
}

func TestClusterCursorUpdatesSummary(t *testing.T) {
	a := loadedApp(t, nil)
	a = press(t, a, "c")
	if a.activeTab != tabClusters {
		t.Fatalf("activeTab = %d, want clusters", a.activeTab)
	}
	if got := a.summary.Value(profile.LabelMedianAmount); got != "Rp 200" {
		t.Errorf("cluster 0 median = %q, want Rp 200", got)
	}

	a = press(t, a, "j")
	if id, _ := a.selectedCluster(); id != 1 {
		t.Fatalf("selected cluster = %d, want 1", id)
	}
	if got := a.summary.Value(profile.LabelMedianAmount); got != "Rp 60" {
		t.Errorf("cluster 1 median = %q, want Rp 60", got)
	}
	if a.detail.Records != 2 {
		t.Errorf("detail records = %d, want 2", a.detail.Records)
	}

	// Cursor stops at the last cluster.
	a = press(t, a, "j", "j")
	if a.clusterCursor != 1 {
		t.Errorf("clusterCursor = %d, want 1", a.clusterCursor)
	}
}

func TestClusterMissingInYearSummarizesEmpty(t *testing.T) {
	a := loadedApp(t, nil)
	a = press(t, a, "c", "y", "y") // 2022: only cluster 1
	if len(a.clusterIDs) != 1 || a.clusterIDs[0] != 1 {
		t.Fatalf("clusters in 2022 = %v, want [1]", a.clusterIDs)
	}
	if a.summary.Empty {
		t.Error("selected cluster has records, summary should not be empty")
	}

	a = press(t, a, "y") // 2021: cluster 0 only, cursor is clamped
	if id, _ := a.selectedCluster(); id != 0 {
		t.Errorf("selected cluster = %d, want 0", id)
	}
}

func TestRecordsSearch(t *testing.T) {
	a := loadedApp(t, nil)
	a = press(t, a, "r", "/")
	if !a.recState.searching {
		t.Fatal("/ should start searching")
	}

	a = press(t, a, "ani", "enter")
	if a.recState.searching || a.recState.query != "ani" {
		t.Fatalf("searching=%v query=%q", a.recState.searching, a.recState.query)
	}
	if got := len(a.searchedRecords()); got != 2 {
		t.Errorf("matches for ani = %d, want 2", got)
	}

	a = press(t, a, "esc")
	if a.recState.query != "" || len(a.searchedRecords()) != 4 {
		t.Errorf("esc should clear the search, query=%q", a.recState.query)
	}
}

func TestRecordsCursorScrolls(t *testing.T) {
	a := loadedApp(t, nil)
	a.height = 11 // two rows per page
	a = press(t, a, "r", "j", "j")
	if a.recState.cursor != 2 || a.recState.offset != 1 {
		t.Errorf("cursor/offset = %d/%d, want 2/1", a.recState.cursor, a.recState.offset)
	}
	a = press(t, a, "G")
	if a.recState.cursor != 3 {
		t.Errorf("G cursor = %d, want 3", a.recState.cursor)
	}
	a = press(t, a, "g")
	if a.recState.cursor != 0 || a.recState.offset != 0 {
		t.Errorf("g cursor/offset = %d/%d, want 0/0", a.recState.cursor, a.recState.offset)
	}
}

func TestLoadErrorDisablesCombined(t *testing.T) {
	a := loadedApp(t, map[model.Program]error{model.Masjid: pipeline.ErrNotFound})
	if len(a.combined) != 0 {
		t.Errorf("combined = %d records, want none when a program failed", len(a.combined))
	}
	if len(a.records) != 4 {
		t.Errorf("Dakwah should still load, got %d records", len(a.records))
	}
	if out := a.renderOverviewTab(120); !strings.Contains(out, "Masjid") {
		t.Error("overview should name the failed program")
	}
	if !errors.Is(a.loadErrs[model.Masjid], pipeline.ErrNotFound) {
		t.Error("load error not kept")
	}
}

func TestViewRendersEveryTab(t *testing.T) {
	a := loadedApp(t, nil)
	for _, key := range []string{"o", "c", "b", "r"} {
		a = press(t, a, key)
		view := a.View()
		if view == "" {
			t.Fatalf("tab %s rendered nothing", key)
		}
		if lines := strings.Count(view, "\n") + 1; lines != a.height {
			t.Errorf("tab %s: %d lines, want %d", key, lines, a.height)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := loadedApp(t, nil)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if !strings.Contains(m.View(), "too narrow") {
		t.Error("expected narrow-terminal notice")
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
