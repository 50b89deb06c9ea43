// Package profile summarizes clustered aid records into profile tables.
package profile

import (
	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// Summary row labels, in display order.
const (
	LabelMedianAmount   = "Median Amount"
	LabelMedianDuration = "Median Duration"
	LabelDominantCity   = "Dominant City (Top 2)"
	LabelDominantSub    = "Dominant Subprogram (Top 2)"
	LabelDominantFund   = "Dominant Funding Source"
)

// Labels lists the summary rows in order.
var Labels = []string{
	LabelMedianAmount,
	LabelMedianDuration,
	LabelDominantCity,
	LabelDominantSub,
	LabelDominantFund,
}

// Row is one metric of a cluster summary.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Table is a rendered cluster summary. Empty marks a summary of zero records;
// its rows then all read N/A.
type Table struct {
	Empty bool  `json:"empty"`
	Rows  []Row `json:"rows"`
}

// Value returns the value for label, or "" if absent.
func (t Table) Value(label string) string {
	for _, r := range t.Rows {
		if r.Label == label {
			return r.Value
		}
	}
	return ""
}

// SummarizeCluster builds the five-row profile of a set of records, normally
// the records of one cluster. It never fails and never modifies records.
func SummarizeCluster(records []model.Record) Table {
	if len(records) == 0 {
		rows := make([]Row, len(Labels))
		for i, l := range Labels {
			rows[i] = Row{Label: l, Value: NA}
		}
		return Table{Empty: true, Rows: rows}
	}

	amounts := make([]decimal.NullDecimal, len(records))
	durations := make([]decimal.NullDecimal, len(records))
	for i, r := range records {
		amounts[i] = r.Amount
		durations[i] = r.Duration
	}

	medAmount := NA
	if m, ok := Median(amounts); ok {
		medAmount = FormatRupiah(m)
	}
	medDuration := NA
	if m, ok := Median(durations); ok {
		medDuration = FormatDays(m)
	}

	return Table{Rows: []Row{
		{Label: LabelMedianAmount, Value: medAmount},
		{Label: LabelMedianDuration, Value: medDuration},
		{Label: LabelDominantCity, Value: FormatShares(TopShares(records, model.FieldCity, 2))},
		{Label: LabelDominantSub, Value: FormatShares(TopShares(records, model.FieldSubprogram, 2))},
		{Label: LabelDominantFund, Value: FormatShares(Distribution(records, model.FieldFundingSource))},
	}}
}
