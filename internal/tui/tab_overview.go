package tui

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/tui/components"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active

	if len(a.loadErrs) > 0 {
		return a.renderLoadErrors(cw)
	}
	if len(a.combined) == 0 {
		return renderNotice("Overview", "No disbursements match the current year.", cw)
	}

	stats := pipeline.Summarize(a.combined)
	totals := pipeline.ProgramTotals(a.combined)

	var b strings.Builder

	// Row 1: headline metrics
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Records", Value: cli.FormatNumber(int64(stats.Records)), Note: a.yearLabel()},
		{Label: "Total Disbursed", Value: cli.FormatRupiahShort(stats.TotalAmount)},
		{Label: "Mean Duration", Value: cli.FormatMeanDays(stats.MeanDuration)},
		{Label: "Programs", Value: fmt.Sprintf("%d", len(totals))},
	}, cw))
	b.WriteString("\n")

	// Row 2: per-program totals, side by side with record counts when wide enough
	amountBars := make([]components.Bar, len(totals))
	countBars := make([]components.Bar, len(totals))
	for i, ps := range totals {
		amountBars[i] = components.Bar{
			Label: string(ps.Program),
			Value: ps.TotalAmount.InexactFloat64(),
			Text:  cli.FormatRupiahShort(ps.TotalAmount),
		}
		countBars[i] = components.Bar{
			Label: string(ps.Program),
			Value: float64(ps.Records),
			Text:  cli.FormatNumber(int64(ps.Records)),
		}
	}

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Disbursed by Program",
			components.HBarChart(amountBars, t.Accent, components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Records by Program",
			components.HBarChart(countBars, t.Blue, components.CardInnerWidth(cw)), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Disbursed by Program",
				components.HBarChart(amountBars, t.Accent, components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard("Records by Program",
				components.HBarChart(countBars, t.Blue, components.CardInnerWidth(widths[1])), widths[1]),
		}))
	}
	b.WriteString("\n")

	// Row 3: yearly totals across all programs
	if trend := yearlyTotals(a.combined); len(trend) > 0 {
		b.WriteString(components.ContentCard("Disbursed by Year",
			renderYearly(trend, components.CardInnerWidth(cw)), cw))
	}

	return b.String()
}

// renderLoadErrors lists the programs that failed; no combined figures are
// shown when any program is missing.
func (a App) renderLoadErrors(cw int) string {
	t := theme.Active
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var body strings.Builder
	body.WriteString(warnStyle.Render("Combined figures are unavailable until every program loads."))
	body.WriteString("\n\n")
	for _, p := range model.Programs {
		err, ok := a.loadErrs[p]
		if !ok {
			continue
		}
		reason := err.Error()
		if errors.Is(err, pipeline.ErrNotFound) {
			reason = "missing " + a.loader.Path(p)
		}
		body.WriteString(nameStyle.Render(fmt.Sprintf("%-12s", p)))
		body.WriteString(dimStyle.Render(components.Truncate(reason, components.CardInnerWidth(cw)-13)))
		body.WriteString("\n")
	}
	return components.ContentCard("Load Errors", strings.TrimRight(body.String(), "\n"), cw)
}

type yearTotal struct {
	year   int
	amount decimal.Decimal
}

func yearlyTotals(records []model.Record) []yearTotal {
	sums := make(map[int]decimal.Decimal)
	for _, yt := range pipeline.YearlyTrend(records) {
		sums[yt.Year] = sums[yt.Year].Add(yt.Amount)
	}
	out := make([]yearTotal, 0, len(sums))
	for y, amt := range sums {
		out = append(out, yearTotal{year: y, amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].year < out[j].year })
	return out
}

func renderYearly(trend []yearTotal, innerW int) string {
	t := theme.Active

	bars := make([]components.Bar, len(trend))
	values := make([]float64, len(trend))
	for i, yt := range trend {
		values[i] = yt.amount.InexactFloat64()
		bars[i] = components.Bar{
			Label: cli.FormatYear(yt.year),
			Value: values[i],
			Text:  cli.FormatRupiahShort(yt.amount),
		}
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	return components.HBarChart(bars, t.Green, innerW) + "\n\n" +
		labelStyle.Render("Trend ") + components.Sparkline(values, t.Green)
}
