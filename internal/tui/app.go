// Package tui provides the interactive Bubble Tea dashboard.
package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/tui/components"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

// Tab indexes, matching components.Tabs.
const (
	tabOverview = iota
	tabClusters
	tabBreakdown
	tabRecords
)

// ProgressMsg reports extract loading progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// DataLoadedMsg is sent when every program has been attempted.
type DataLoadedMsg struct {
	Datasets map[model.Program]*model.Dataset
	Errs     map[model.Program]error
	LoadTime time.Duration
}

// Options configures a new App.
type Options struct {
	Loader  *pipeline.Loader
	Catalog *profile.Catalog
	// ConfigPath is where the first-run setup writes; empty means the default.
	ConfigPath string
	// NeedSetup shows the first-run form after loading.
	NeedSetup bool
	Program   model.Program
	Year      int // 0 = all years
}

// App is the root Bubble Tea model.
type App struct {
	loader     *pipeline.Loader
	catalog    *profile.Catalog
	configPath string

	// Data
	datasets map[model.Program]*model.Dataset
	loadErrs map[model.Program]error
	loaded   bool
	loadTime time.Duration

	// Filter state
	program int   // index into model.Programs
	years   []int // every year present, newest first
	year    int   // 0 = all years

	// Pre-computed for current filter
	combined   []model.Record // empty when any program failed to load
	records    []model.Record // current program
	clusterIDs []int
	summary    profile.Table
	detail     profile.Detail

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	clusterCursor int
	recState      recordsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool

	// Loading: channel-based progress subscription
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

type recordsState struct {
	searching   bool
	searchInput textinput.Model
	query       string
	cursor      int
	offset      int
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	catalog := opts.Catalog
	if catalog == nil {
		catalog = profile.DefaultCatalog()
	}

	a := App{
		loader:     opts.Loader,
		catalog:    catalog,
		configPath: opts.ConfigPath,
		needSetup:  opts.NeedSetup,
		year:       opts.Year,
		spinner:    sp,
		loadSub:    make(chan tea.Msg, 1),
	}
	if i := slices.Index(model.Programs, opts.Program); i >= 0 {
		a.program = i
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.loader, a.loadSub),
		a.spinner.Tick,
	)
}

func (a App) currentProgram() model.Program {
	return model.Programs[a.program]
}

// recompute refreshes every derived view after a data or filter change.
func (a *App) recompute() {
	p := a.currentProgram()

	a.combined = nil
	if len(a.loadErrs) == 0 {
		parts := make([]*model.Dataset, 0, len(model.Programs))
		for _, prog := range model.Programs {
			parts = append(parts, a.datasets[prog])
		}
		a.combined = pipeline.FilterByYears(pipeline.Combine(parts...).Records, a.yearFilter()...)
	}

	a.records = nil
	if ds, ok := a.datasets[p]; ok {
		a.records = pipeline.FilterByYears(ds.Records, a.yearFilter()...)
	}
	a.clusterIDs = pipeline.ClusterIDs(a.records)
	a.clusterCursor = min(max(a.clusterCursor, 0), max(len(a.clusterIDs)-1, 0))
	a.recomputeCluster()

	n := len(a.searchedRecords())
	a.recState.cursor = min(a.recState.cursor, max(n-1, 0))
	a.recState.offset = min(a.recState.offset, a.recState.cursor)
}

func (a *App) recomputeCluster() {
	var subset []model.Record
	if id, ok := a.selectedCluster(); ok {
		subset = pipeline.FilterByCluster(a.records, id)
	}
	a.summary = profile.SummarizeCluster(subset)
	a.detail = profile.Describe(subset)
}

func (a App) selectedCluster() (int, bool) {
	if a.clusterCursor < 0 || a.clusterCursor >= len(a.clusterIDs) {
		return 0, false
	}
	return a.clusterIDs[a.clusterCursor], true
}

func (a App) yearFilter() []int {
	if a.year == 0 {
		return nil
	}
	return []int{a.year}
}

func (a App) yearLabel() string {
	if a.year == 0 {
		return "All years"
	}
	return cli.FormatYear(a.year)
}

// cycleYear steps through all years, newest first, then back to all.
func (a *App) cycleYear(step int) {
	options := append([]int{0}, a.years...)
	i := slices.Index(options, a.year)
	if i < 0 {
		i = 0
	}
	a.year = options[(i+step+len(options))%len(options)]
}

func (a *App) cycleProgram(step int) {
	a.program = (a.program + step + len(model.Programs)) % len(model.Programs)
	a.clusterCursor = 0
	a.recState.cursor = 0
	a.recState.offset = 0
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.loaded {
			return a, nil
		}
		if a.setupForm != nil {
			return a.updateSetupForm(msg)
		}
		if a.activeTab == tabRecords && a.recState.searching {
			return a.updateRecordsSearch(msg)
		}
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.datasets = msg.Datasets
		a.loadErrs = msg.Errs
		a.loaded = true
		a.loadTime = msg.LoadTime
		a.years = allYears(msg.Datasets)
		a.recompute()

		if a.needSetup {
			a.setupVals = &setupValues{}
			a.setupForm = newSetupForm(len(msg.Datasets), a.loader.DataDir, a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	if a.recState.searching {
		var cmd tea.Cmd
		a.recState.searchInput, cmd = a.recState.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "ctrl+r":
		a.loaded = false
		a.progress, a.progressMax = 0, 0
		return a, tea.Batch(loadDataCmd(a.loader, a.loadSub), a.spinner.Tick)
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "[":
		a.cycleProgram(-1)
		a.recompute()
		return a, nil
	case "]":
		a.cycleProgram(1)
		a.recompute()
		return a, nil
	case "y":
		a.cycleYear(1)
		a.recompute()
		return a, nil
	case "Y":
		a.cycleYear(-1)
		a.recompute()
		return a, nil
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(model.Programs) {
			a.cycleProgram(i - a.program)
			a.recompute()
		}
		return a, nil
	}

	switch a.activeTab {
	case tabClusters:
		switch key {
		case "j", "down":
			if a.clusterCursor < len(a.clusterIDs)-1 {
				a.clusterCursor++
				a.recomputeCluster()
			}
			return a, nil
		case "k", "up":
			if a.clusterCursor > 0 {
				a.clusterCursor--
				a.recomputeCluster()
			}
			return a, nil
		}
	case tabRecords:
		if handled, cmd := a.recState.handleKey(key, len(a.searchedRecords()), a.recordsPageSize()); handled {
			return a, cmd
		}
	}

	if len(key) == 1 {
		if tab := components.TabIdxByKey(rune(key[0])); tab >= 0 {
			a.activeTab = tab
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return a.updateKey(tea.KeyMsg{Type: tea.KeyUp})
	case tea.MouseButtonWheelDown:
		return a.updateKey(tea.KeyMsg{Type: tea.KeyDown})
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		w := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+w {
			return i
		}
		pos += w + 1 // separator
	}
	return -1
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.setupForm != nil {
		return a.setupForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  aidboard needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	countStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ aidboard"))
	b.WriteString(subtitleStyle.Render(" · Aid Disbursement Dashboard"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := min(max(a.width-30, 20), 40)
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Reading extracts\n\n"))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
		b.WriteString("\n")
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progress))))
		b.WriteString(subtitleStyle.Render(" / "))
		b.WriteString(countStyle.Render(cli.FormatNumber(int64(a.progressMax))))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Looking for extracts in " + a.loader.DataDir))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"o c b r", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"[ ] 1-6", "Switch program"},
			{"y Y", "Next / Previous year"},
			{"j k", "Move through lists"},
		}},
		{"Actions", []struct{ key, desc string }{
			{"/", "Search records"},
			{"Esc", "Clear search"},
			{"^r", "Reload extracts"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	pillStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	filterStr := pillStyle.Render(" ") +
		accentStyle.Render(string(a.currentProgram())) +
		pillStyle.Render(" │ ") +
		accentStyle.Render(a.yearLabel())
	if a.recState.query != "" {
		filterStr += pillStyle.Render(" │ ") + accentStyle.Render("\""+a.recState.query+"\"")
	}
	header := components.RenderTabBar(a.activeTab, w) + "\n" +
		lipgloss.NewStyle().Background(t.Surface).Width(w).Render(filterStr)

	info := fmt.Sprintf("%d/%d extracts · %.1fs", len(a.datasets), len(model.Programs), a.loadTime.Seconds())
	if a.setupVals != nil && a.setupVals.saveErr != nil {
		info = "config not saved: " + a.setupVals.saveErr.Error()
	}
	statusBar := components.RenderStatusBar(w, "[?]help  [y]ear  [ ]program  [q]uit", info)

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabClusters:
		content = a.renderClustersTab(cw)
	case tabBreakdown:
		content = a.renderBreakdownTab(cw)
	case tabRecords:
		content = a.renderRecordsTab(cw, contentH)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderNotice renders a single warning card, used when a view has no data.
func renderNotice(title, msg string, cw int) string {
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	return components.ContentCard(title, style.Render(msg), cw)
}

// ─── Loading ────────────────────────────────────────────────────

// loadDataCmd loads every program in a background goroutine, streaming
// ProgressMsg updates and a final DataLoadedMsg through sub. A program that
// fails to load is recorded and the rest still load.
func loadDataCmd(loader *pipeline.Loader, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			msg := DataLoadedMsg{
				Datasets: make(map[model.Program]*model.Dataset),
				Errs:     make(map[model.Program]error),
			}
			for i, p := range model.Programs {
				ds, err := loader.LoadProgram(context.Background(), p)
				if err != nil {
					msg.Errs[p] = err
				} else {
					msg.Datasets[p] = ds
				}
				// Non-blocking: a skipped update is caught up by the next one.
				select {
				case sub <- ProgressMsg{Current: i + 1, Total: len(model.Programs)}:
				default:
				}
			}
			msg.LoadTime = time.Since(start)
			sub <- msg
		}()
		return <-sub
	}
}

// waitForLoadMsg blocks until the next message arrives from the loader goroutine.
func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func allYears(datasets map[model.Program]*model.Dataset) []int {
	var all []model.Record
	for _, p := range model.Programs {
		if ds, ok := datasets[p]; ok {
			all = append(all, ds.Records...)
		}
	}
	return pipeline.Years(all)
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
