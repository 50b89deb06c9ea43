package profile

import (
	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
	"github.com/ydsf-surabaya/aidboard/internal/pipeline"
)

// Share is one value's portion of a categorical distribution.
type Share struct {
	Value    string          `json:"value"`
	Count    int             `json:"count"`
	Fraction decimal.Decimal `json:"fraction"` // Count / non-null total
}

// Distribution returns each non-null value of field with its share of the
// non-null total, most frequent first. Ties keep first-seen order.
func Distribution(records []model.Record, field model.Field) []Share {
	counts := pipeline.TopValues(records, field, 0)
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil
	}

	denom := decimal.NewFromInt(int64(total))
	shares := make([]Share, len(counts))
	for i, c := range counts {
		shares[i] = Share{
			Value:    c.Value,
			Count:    c.Count,
			Fraction: decimal.NewFromInt(int64(c.Count)).Div(denom),
		}
	}
	return shares
}

// TopShares returns the first n entries of the distribution; n <= 0 keeps all.
func TopShares(records []model.Record, field model.Field, n int) []Share {
	shares := Distribution(records, field)
	if n > 0 && len(shares) > n {
		shares = shares[:n]
	}
	return shares
}
