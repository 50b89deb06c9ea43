package tui

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/cli"
	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
	"github.com/ydsf-surabaya/aidboard/internal/profile"
	"github.com/ydsf-surabaya/aidboard/internal/tui/components"
	"github.com/ydsf-surabaya/aidboard/internal/tui/theme"
)

const breakdownTop = 8

func (a App) renderBreakdownTab(cw int) string {
	t := theme.Active
	p := a.currentProgram()
	if err, failed := a.loadErrs[p]; failed {
		return renderNotice(string(p), err.Error(), cw)
	}
	if len(a.records) == 0 {
		return renderNotice(string(p), "No records for "+a.yearLabel()+".", cw)
	}

	stats := pipeline.Summarize(a.records)

	var b strings.Builder
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Records", Value: cli.FormatNumber(int64(stats.Records)), Note: a.yearLabel()},
		{Label: "Total Disbursed", Value: cli.FormatRupiahShort(stats.TotalAmount)},
		{Label: "Mean Duration", Value: cli.FormatMeanDays(stats.MeanDuration)},
		{Label: "Clusters", Value: cli.FormatNumber(int64(len(a.clusterIDs)))},
	}, cw))
	b.WriteString("\n")

	cities := valueBars(pipeline.TopValues(a.records, model.FieldCity, breakdownTop))
	subprograms := valueBars(pipeline.TopValues(a.records, model.FieldSubprogram, breakdownTop))

	var meanBySub []components.Bar
	for _, g := range pipeline.MeanAmountBy(a.records, model.FieldSubprogram, breakdownTop) {
		meanBySub = append(meanBySub, components.Bar{
			Label: g.Group,
			Value: g.Amount.InexactFloat64(),
			Text:  cli.FormatRupiahShort(g.Amount),
		})
	}

	var durationByYear []components.Bar
	for _, yd := range pipeline.MeanDurationByYear(a.records) {
		durationByYear = append(durationByYear, components.Bar{
			Label: cli.FormatYear(yd.Year),
			Value: yd.MeanDuration.InexactFloat64(),
			Text:  cli.FormatMeanDays(decimal.NewNullDecimal(yd.MeanDuration)),
		})
	}

	if a.isCompactLayout() {
		inner := components.CardInnerWidth(cw)
		b.WriteString(components.ContentCard("Top Cities", components.HBarChart(cities, t.Blue, inner), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Top Subprograms", components.HBarChart(subprograms, t.Magenta, inner), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Mean Amount by Subprogram", components.HBarChart(meanBySub, t.Accent, inner), cw))
	} else {
		widths := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Top Cities",
				components.HBarChart(cities, t.Blue, components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard("Top Subprograms",
				components.HBarChart(subprograms, t.Magenta, components.CardInnerWidth(widths[1])), widths[1]),
		}))
		b.WriteString("\n")
		b.WriteString(components.CardRow([]string{
			components.ContentCard("Mean Amount by Subprogram",
				components.HBarChart(meanBySub, t.Accent, components.CardInnerWidth(widths[0])), widths[0]),
			components.ContentCard("Mean Duration by Year",
				components.HBarChart(durationByYear, t.Cyan, components.CardInnerWidth(widths[1])), widths[1]),
		}))
	}
	b.WriteString("\n")

	funding := profile.Distribution(a.records, model.FieldFundingSource)
	b.WriteString(components.ContentCard("Funding Sources", renderShareBars(funding, components.CardInnerWidth(cw)), cw))

	return b.String()
}

func valueBars(counts []model.ValueCount) []components.Bar {
	bars := make([]components.Bar, len(counts))
	for i, c := range counts {
		bars[i] = components.Bar{
			Label: c.Value,
			Value: float64(c.Count),
			Text:  cli.FormatNumber(int64(c.Count)),
		}
	}
	return bars
}
