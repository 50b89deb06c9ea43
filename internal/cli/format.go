// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/profile"
)

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
	trillion = decimal.NewFromInt(1_000_000_000_000)
)

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	return humanize.Comma(n)
}

// FormatRupiah formats an amount as whole rupiah, e.g. "Rp 1,500,000".
func FormatRupiah(d decimal.Decimal) string {
	return profile.FormatRupiah(d)
}

// FormatRupiahShort formats an amount with a magnitude suffix for charts.
// e.g., 1234 -> "Rp 1.2K", 2500000 -> "Rp 2.5M", 3100000000 -> "Rp 3.1B"
func FormatRupiahShort(d decimal.Decimal) string {
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(trillion):
		return "Rp " + d.Div(trillion).StringFixed(1) + "T"
	case abs.GreaterThanOrEqual(billion):
		return "Rp " + d.Div(billion).StringFixed(1) + "B"
	case abs.GreaterThanOrEqual(million):
		return "Rp " + d.Div(million).StringFixed(1) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return "Rp " + d.Div(thousand).StringFixed(1) + "K"
	default:
		return "Rp " + d.RoundBank(0).String()
	}
}

// FormatDays formats a duration in whole days, e.g. "12 Hari".
func FormatDays(d decimal.Decimal) string {
	return profile.FormatDays(d)
}

// FormatMeanDays formats an average duration with one decimal, e.g. "12.3 Hari".
// Null averages render as N/A.
func FormatMeanDays(d decimal.NullDecimal) string {
	if !d.Valid {
		return profile.NA
	}
	return d.Decimal.StringFixedBank(1) + " Hari"
}

// FormatPercent formats a 0-1 fraction as a percentage string.
func FormatPercent(fraction decimal.Decimal) string {
	return profile.FormatPercent(fraction)
}

// FormatShare formats part/total as a percentage, "0.0%" when total is zero.
func FormatShare(part, total decimal.Decimal) string {
	if total.IsZero() {
		return "0.0%"
	}
	return FormatPercent(part.Div(total))
}

// FormatBytes formats a file size, e.g. "1.2 MB".
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatYear renders a year, or "-" when unknown.
func FormatYear(y int) string {
	if y == 0 {
		return "-"
	}
	return strconv.Itoa(y)
}

// FormatCluster renders a cluster id, or "-" when the record has none.
func FormatCluster(id int, ok bool) string {
	if !ok {
		return "-"
	}
	return strconv.Itoa(id)
}
