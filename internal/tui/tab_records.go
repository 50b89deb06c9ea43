package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/tui/components"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

// recordColumn is one column of the records table.
type recordColumn struct {
	title string
	width int
	right bool
	value func(model.Record) string
}

var recordColumns = []recordColumn{
	{"Recipient", 24, false, func(r model.Record) string { return r.Recipient }},
	{"ID", 16, false, func(r model.Record) string { return r.IDNumber }},
	{"City", 14, false, func(r model.Record) string { return r.City }},
	{"Subprogram", 18, false, func(r model.Record) string { return r.Subprogram }},
	{"Funding", 14, false, func(r model.Record) string { return r.FundingSource }},
	{"Amount", 14, true, func(r model.Record) string {
		if !r.Amount.Valid {
			return "-"
		}
		return cli.FormatRupiah(r.Amount.Decimal)
	}},
	{"Duration", 9, true, func(r model.Record) string {
		if !r.Duration.Valid {
			return "-"
		}
		return cli.FormatDays(r.Duration.Decimal)
	}},
	{"Year", 5, true, func(r model.Record) string { return cli.FormatYear(r.Year) }},
	{"Cl", 3, true, func(r model.Record) string { return cli.FormatCluster(r.Cluster, r.HasCluster) }},
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name or ID number"
	ti.Prompt = "/ "
	ti.CharLimit = 64
	ti.Width = 40
	return ti
}

// searchedRecords returns the current program's records matching the query.
func (a App) searchedRecords() []model.Record {
	if a.recState.query == "" {
		return a.records
	}
	return pipeline.Search(a.records, a.recState.query)
}

// recordsPageSize is the number of table rows that fit on screen.
func (a App) recordsPageSize() int {
	// tab bar, filter line, status bar, card border and title, header, search line
	return max(a.height-9, 1)
}

// handleKey moves the records cursor. It reports whether the key was used.
func (s *recordsState) handleKey(key string, total, page int) (bool, tea.Cmd) {
	switch key {
	case "/":
		s.searching = true
		s.searchInput = newSearchInput()
		s.searchInput.SetValue(s.query)
		s.searchInput.Focus()
		return true, s.searchInput.Cursor.BlinkCmd()
	case "esc":
		s.query = ""
		s.cursor, s.offset = 0, 0
		return true, nil
	case "j", "down":
		s.cursor = min(s.cursor+1, max(total-1, 0))
	case "k", "up":
		s.cursor = max(s.cursor-1, 0)
	case "pgdown", "ctrl+d":
		s.cursor = min(s.cursor+page, max(total-1, 0))
	case "pgup", "ctrl+u":
		s.cursor = max(s.cursor-page, 0)
	case "g", "home":
		s.cursor = 0
	case "G", "end":
		s.cursor = max(total-1, 0)
	default:
		return false, nil
	}

	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+page {
		s.offset = s.cursor - page + 1
	}
	return true, nil
}

func (a App) updateRecordsSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.recState.query = strings.TrimSpace(a.recState.searchInput.Value())
		a.recState.searching = false
		a.recState.cursor, a.recState.offset = 0, 0
		return a, nil
	case "esc":
		a.recState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.recState.searchInput, cmd = a.recState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderRecordsTab(cw, h int) string {
	t := theme.Active
	p := a.currentProgram()
	if err, failed := a.loadErrs[p]; failed {
		return renderNotice(string(p), err.Error(), cw)
	}

	records := a.searchedRecords()
	page := a.recordsPageSize()
	innerW := components.CardInnerWidth(cw)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	cols := fitColumns(innerW)

	var body strings.Builder
	if a.recState.searching {
		body.WriteString(a.recState.searchInput.View())
	} else {
		info := fmt.Sprintf("%s records", cli.FormatNumber(int64(len(records))))
		if a.recState.query != "" {
			info += fmt.Sprintf(" matching %q  [esc] clear", a.recState.query)
		} else {
			info += "  [/] search"
		}
		body.WriteString(mutedStyle.Render(info))
	}
	body.WriteString("\n")
	body.WriteString(headerStyle.Render(formatRecordRow(cols, nil)))

	if len(records) == 0 {
		body.WriteString("\n")
		body.WriteString(mutedStyle.Render("No matching records."))
	}

	end := min(a.recState.offset+page, len(records))
	for i := a.recState.offset; i < end; i++ {
		body.WriteString("\n")
		line := formatRecordRow(cols, &records[i])
		if i == a.recState.cursor {
			body.WriteString(selStyle.Render(line))
		} else {
			body.WriteString(rowStyle.Render(line))
		}
	}

	title := fmt.Sprintf("%s Records", p)
	if len(records) > page {
		title += fmt.Sprintf(" (%d-%d of %d)", a.recState.offset+1, end, len(records))
	}
	return truncateHeight(components.ContentCard(title, body.String(), cw), h)
}

// fitColumns drops trailing text columns until the table fits innerW.
func fitColumns(innerW int) []recordColumn {
	cols := recordColumns
	for len(cols) > 3 && tableWidth(cols) > innerW {
		// Keep the numeric tail, drop the widest remaining text column first.
		drop := -1
		for i, c := range cols {
			if !c.right && i > 0 && (drop < 0 || c.width > cols[drop].width) {
				drop = i
			}
		}
		if drop < 0 {
			break
		}
		cols = append(append([]recordColumn(nil), cols[:drop]...), cols[drop+1:]...)
	}
	return cols
}

func tableWidth(cols []recordColumn) int {
	w := 0
	for _, c := range cols {
		w += c.width + 1
	}
	return w - 1
}

// formatRecordRow renders r across cols, or the header when r is nil.
func formatRecordRow(cols []recordColumn, r *model.Record) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		v := c.title
		if r != nil {
			v = c.value(*r)
		}
		v = components.Truncate(v, c.width)
		if c.right {
			cells[i] = fmt.Sprintf("%*s", c.width, v)
		} else {
			cells[i] = fmt.Sprintf("%-*s", c.width, v)
		}
	}
	return strings.Join(cells, " ")
}
