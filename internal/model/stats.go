package model

import "github.com/shopspring/decimal"

// ProgramStats holds the headline aggregate for a set of records.
type ProgramStats struct {
	Program      Program
	Records      int
	TotalAmount  decimal.Decimal
	MeanDuration decimal.NullDecimal
}

// ValueCount is one entry of a frequency table.
type ValueCount struct {
	Value string
	Count int
}

// GroupAmount is an amount aggregated over one categorical group.
type GroupAmount struct {
	Group  string
	Amount decimal.Decimal
	Count  int
}

// YearDuration holds the mean processing duration for one year.
type YearDuration struct {
	Year         int
	MeanDuration decimal.Decimal
	Count        int
}

// YearlyTotal holds the disbursed amount for one program in one year.
type YearlyTotal struct {
	Year    int
	Program Program
	Amount  decimal.Decimal
}

// NumberCount is one entry of a frequency table over a numeric column.
type NumberCount struct {
	Value decimal.Decimal `json:"value"`
	Count int             `json:"count"`
}
