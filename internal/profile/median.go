package profile

import (
	"sort"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Median returns the median of the valid values. The second result is false
// when there are none. For an even count the two middle values are averaged.
func Median(values []decimal.NullDecimal) (decimal.Decimal, bool) {
	var vs []decimal.Decimal
	for _, v := range values {
		if v.Valid {
			vs = append(vs, v.Decimal)
		}
	}
	if len(vs) == 0 {
		return decimal.Zero, false
	}

	sort.Slice(vs, func(i, j int) bool { return vs[i].LessThan(vs[j]) })
	mid := len(vs) / 2
	if len(vs)%2 == 1 {
		return vs[mid], true
	}
	return vs[mid-1].Add(vs[mid]).Div(two), true
}
