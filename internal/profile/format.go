package profile

import (
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// NA is shown wherever a value cannot be computed.
const NA = "N/A"

// FormatRupiah renders an amount as whole rupiah with thousands separators,
// rounding half to even: 1500000.5 -> "Rp 1,500,000".
func FormatRupiah(d decimal.Decimal) string {
	return "Rp " + humanize.Comma(d.RoundBank(0).IntPart())
}

// FormatDays renders a duration in whole days, rounding half to even.
func FormatDays(d decimal.Decimal) string {
	return d.RoundBank(0).String() + " Hari"
}

// FormatPercent renders a fraction in [0,1] as a percentage with one decimal.
// The fraction is scaled as a float64 and rounded to the nearest tenth of its
// binary value, so 1/2000 renders "0.1%" and 0.0625 renders "6.2%", the same
// as spreadsheet and pandas percent formatting.
func FormatPercent(fraction decimal.Decimal) string {
	return strconv.FormatFloat(fraction.InexactFloat64()*100, 'f', 1, 64) + "%"
}

// FormatShares renders "name (pp.p%)" entries joined by ", ".
// Returns NA when there are no shares.
func FormatShares(shares []Share) string {
	if len(shares) == 0 {
		return NA
	}
	parts := make([]string, len(shares))
	for i, s := range shares {
		parts[i] = s.Value + " (" + FormatPercent(s.Fraction) + ")"
	}
	return strings.Join(parts, ", ")
}
