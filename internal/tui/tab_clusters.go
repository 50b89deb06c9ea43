package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/tui/components"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

func (a App) renderClustersTab(cw int) string {
	p := a.currentProgram()
	if err, failed := a.loadErrs[p]; failed {
		return renderNotice(string(p), err.Error(), cw)
	}
	if len(a.clusterIDs) == 0 {
		return renderNotice(string(p), "No clustered records for "+a.yearLabel()+".", cw)
	}

	var b strings.Builder

	if a.isCompactLayout() {
		b.WriteString(components.FocusCard("Clusters", a.renderClusterList(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard(a.clusterTitle(), a.renderClusterSummary(components.CardInnerWidth(cw)), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.FocusCard("Clusters", a.renderClusterList(components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard(a.clusterTitle(), a.renderClusterSummary(components.CardInnerWidth(widths[1])), widths[1]),
		}))
	}
	b.WriteString("\n")

	b.WriteString(a.renderClusterDetail(cw))
	b.WriteString("\n")

	muted := lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Background(theme.Active.Surface)
	b.WriteString(components.ContentCard("About These Names",
		muted.Width(components.CardInnerWidth(cw)).Render(a.catalog.Explanation(p)), cw))

	return b.String()
}

func (a App) clusterTitle() string {
	id, ok := a.selectedCluster()
	if !ok {
		return "Summary"
	}
	return a.catalog.DisplayName(a.currentProgram(), id)
}

func (a App) renderClusterList(innerW int) string {
	t := theme.Active
	p := a.currentProgram()

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover).Bold(true)
	countStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	counts := make(map[int]int)
	for _, r := range a.records {
		if r.HasCluster {
			counts[r.Cluster]++
		}
	}

	lines := make([]string, len(a.clusterIDs))
	for i, l := range a.catalog.Labels(p, a.clusterIDs) {
		count := cli.FormatNumber(int64(counts[l.ID]))
		nameW := max(innerW-lipgloss.Width(count)-3, 8)
		name := fmt.Sprintf("%-*s", nameW, components.Truncate(fmt.Sprintf("%d %s", l.ID, l.Name), nameW))
		if i == a.clusterCursor {
			lines[i] = selStyle.Render("▸ "+name) + countStyle.Render(" "+count)
		} else {
			lines[i] = rowStyle.Render("  "+name) + countStyle.Render(" "+count)
		}
	}
	return strings.Join(lines, "\n")
}

func (a App) renderClusterSummary(innerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)

	labelW := 0
	for _, row := range a.summary.Rows {
		labelW = max(labelW, lipgloss.Width(row.Label))
	}

	lines := make([]string, 0, len(a.summary.Rows)+2)
	for _, row := range a.summary.Rows {
		value := components.Truncate(row.Value, max(innerW-labelW-2, 8))
		lines = append(lines, labelStyle.Render(fmt.Sprintf("%-*s  ", labelW, row.Label))+valueStyle.Render(value))
	}
	if a.summary.Empty {
		lines = append(lines, "", labelStyle.Render("No records in this cluster for "+a.yearLabel()+"."))
	}
	return strings.Join(lines, "\n")
}

func (a App) renderClusterDetail(cw int) string {
	t := theme.Active
	d := a.detail
	if d.Records == 0 {
		return ""
	}

	amounts := numberBars(d.TopAmounts, cli.FormatRupiah)
	durations := numberBars(d.TopDurations, cli.FormatDays)
	cities := shareBars(d.TopCities)
	subprograms := shareBars(d.TopSubprograms)

	var b strings.Builder
	if a.isCompactLayout() {
		inner := components.CardInnerWidth(cw)
		b.WriteString(components.ContentCard("Common Amounts", components.HBarChart(amounts, t.Accent, inner), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Top Cities", components.HBarChart(cities, t.Blue, inner), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Common Amounts",
				components.HBarChart(amounts, t.Accent, components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard("Top Cities",
				components.HBarChart(cities, t.Blue, components.CardInnerWidth(widths[1])), widths[1]),
		}))
		b.WriteString("\n")
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Common Durations",
				components.HBarChart(durations, t.Cyan, components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard("Top Subprograms",
				components.HBarChart(subprograms, t.Magenta, components.CardInnerWidth(widths[1])), widths[1]),
		}))
	}
	b.WriteString("\n")

	b.WriteString(components.ContentCard("Funding Sources", renderShareBars(d.FundingShares, components.CardInnerWidth(cw)), cw))
	b.WriteString("\n")

	insightStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	bulletStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	insights := make([]string, len(d.Insights))
	for i, s := range d.Insights {
		insights[i] = bulletStyle.Render("• ") + insightStyle.Render(components.Truncate(s, components.CardInnerWidth(cw)-2))
	}
	b.WriteString(components.ContentCard("Insights", strings.Join(insights, "\n"), cw))

	return b.String()
}

func numberBars(counts []model.NumberCount, format func(decimal.Decimal) string) []components.Bar {
	bars := make([]components.Bar, len(counts))
	for i, c := range counts {
		bars[i] = components.Bar{
			Label: format(c.Value),
			Value: float64(c.Count),
			Text:  cli.FormatNumber(int64(c.Count)),
		}
	}
	return bars
}

func shareBars(shares []profile.Share) []components.Bar {
	bars := make([]components.Bar, len(shares))
	for i, s := range shares {
		bars[i] = components.Bar{
			Label: s.Value,
			Value: float64(s.Count),
			Text:  cli.FormatPercent(s.Fraction),
		}
	}
	return bars
}

func renderShareBars(shares []profile.Share, innerW int) string {
	if len(shares) == 0 {
		return ""
	}
	labelW := 0
	for _, s := range shares {
		labelW = max(labelW, lipgloss.Width(s.Value))
	}
	labelW = min(labelW, innerW/3)
	barW := max(innerW-labelW-9, 10)

	lines := make([]string, len(shares))
	for i, s := range shares {
		lines[i] = components.ShareBar(s.Value, s.Fraction.InexactFloat64(), cli.FormatPercent(s.Fraction), labelW, barW)
	}
	return strings.Join(lines, "\n")
}
