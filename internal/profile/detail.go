package profile

import (
	"fmt"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
)

const detailTop = 5

// Detail is the drill-down view of a cluster.
type Detail struct {
	Records        int                 `json:"records"`
	TopAmounts     []model.NumberCount `json:"top_amounts"`
	TopCities      []Share             `json:"top_cities"`
	TopDurations   []model.NumberCount `json:"top_durations"`
	TopSubprograms []Share             `json:"top_subprograms"`
	FundingShares  []Share             `json:"funding_shares"`
	Insights       []string            `json:"insights"`
}

// Describe computes the drill-down view of a set of records.
func Describe(records []model.Record) Detail {
	d := Detail{
		Records:        len(records),
		TopAmounts:     pipeline.TopAmounts(records, detailTop),
		TopCities:      TopShares(records, model.FieldCity, detailTop),
		TopDurations:   pipeline.TopDurations(records, detailTop),
		TopSubprograms: TopShares(records, model.FieldSubprogram, detailTop),
		FundingShares:  Distribution(records, model.FieldFundingSource),
	}

	if len(d.TopAmounts) > 0 {
		d.Insights = append(d.Insights, fmt.Sprintf(
			"%s is the amount disbursed most often in this segment.", FormatRupiah(d.TopAmounts[0].Value)))
	}
	if len(d.TopCities) > 0 {
		d.Insights = append(d.Insights, fmt.Sprintf(
			"%s is the main base of this cluster.", d.TopCities[0].Value))
	}
	if len(d.TopDurations) > 0 {
		d.Insights = append(d.Insights, fmt.Sprintf(
			"The most common processing time is %s.", FormatDays(d.TopDurations[0].Value)))
	}
	if len(d.TopSubprograms) > 0 {
		d.Insights = append(d.Insights, fmt.Sprintf(
			"The main activity is '%s'.", d.TopSubprograms[0].Value))
	}
	if len(d.FundingShares) > 0 {
		top := d.FundingShares[0]
		d.Insights = append(d.Insights, fmt.Sprintf(
			"Funding is dominated by %s (%s).", top.Value, FormatPercent(top.Fraction)))
	}
	return d
}
