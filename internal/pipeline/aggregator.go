// Package pipeline orchestrates program loading, caching, and aggregation.
package pipeline

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// Summarize computes the headline figures for a set of records.
// Program is set only when every record belongs to the same program.
func Summarize(records []model.Record) model.ProgramStats {
	var stats model.ProgramStats
	stats.Records = len(records)

	var durSum decimal.Decimal
	durN := 0
	for i, r := range records {
		if i == 0 {
			stats.Program = r.Program
		} else if r.Program != stats.Program {
			stats.Program = ""
		}
		if r.Amount.Valid {
			stats.TotalAmount = stats.TotalAmount.Add(r.Amount.Decimal)
		}
		if r.Duration.Valid {
			durSum = durSum.Add(r.Duration.Decimal)
			durN++
		}
	}
	if durN > 0 {
		stats.MeanDuration = decimal.NewNullDecimal(mean(durSum, durN))
	}
	return stats
}

// TopValues counts non-null values of a categorical field, most frequent
// first. Ties keep first-seen order. n <= 0 returns every value.
func TopValues(records []model.Record, field model.Field, n int) []model.ValueCount {
	index := make(map[string]int)
	var counts []model.ValueCount
	for _, r := range records {
		v := r.Value(field)
		if v == "" {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(counts)
			index[v] = i
			counts = append(counts, model.ValueCount{Value: v})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return truncate(counts, n)
}

// TopSubprogramsIn ranks the subprograms disbursed in one city.
func TopSubprogramsIn(records []model.Record, city string, n int) []model.ValueCount {
	return TopValues(FilterByValue(records, model.FieldCity, city), model.FieldSubprogram, n)
}

// TopAmounts returns the most frequent disbursement amounts.
func TopAmounts(records []model.Record, n int) []model.NumberCount {
	return topNumbers(records, func(r model.Record) decimal.NullDecimal { return r.Amount }, n)
}

// TopDurations returns the most frequent processing durations.
func TopDurations(records []model.Record, n int) []model.NumberCount {
	return topNumbers(records, func(r model.Record) decimal.NullDecimal { return r.Duration }, n)
}

func topNumbers(records []model.Record, get func(model.Record) decimal.NullDecimal, n int) []model.NumberCount {
	index := make(map[string]int)
	var counts []model.NumberCount
	for _, r := range records {
		v := get(r)
		if !v.Valid {
			continue
		}
		// String() normalizes trailing zeros, so 100 and 100.0 share a bucket.
		key := v.Decimal.String()
		i, ok := index[key]
		if !ok {
			i = len(counts)
			index[key] = i
			counts = append(counts, model.NumberCount{Value: v.Decimal})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return truncate(counts, n)
}

// MeanAmountBy groups records by a categorical field and returns the groups
// with the highest mean amount. Records without an amount are ignored.
func MeanAmountBy(records []model.Record, field model.Field, n int) []model.GroupAmount {
	groups := groupAmounts(records, field)
	for i := range groups {
		groups[i].Amount = mean(groups[i].Amount, groups[i].Count)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount.GreaterThan(groups[j].Amount)
	})
	return truncate(groups, n)
}

// SumAmountBy totals amounts per group, largest first.
func SumAmountBy(records []model.Record, field model.Field) []model.GroupAmount {
	groups := groupAmounts(records, field)
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount.GreaterThan(groups[j].Amount)
	})
	return groups
}

// groupAmounts sums amounts per non-null group value in first-seen order.
func groupAmounts(records []model.Record, field model.Field) []model.GroupAmount {
	index := make(map[string]int)
	var groups []model.GroupAmount
	for _, r := range records {
		g := r.Value(field)
		if g == "" || !r.Amount.Valid {
			continue
		}
		i, ok := index[g]
		if !ok {
			i = len(groups)
			index[g] = i
			groups = append(groups, model.GroupAmount{Group: g})
		}
		groups[i].Amount = groups[i].Amount.Add(r.Amount.Decimal)
		groups[i].Count++
	}
	return groups
}

// MeanDurationByYear returns the mean processing duration per known year,
// oldest first.
func MeanDurationByYear(records []model.Record) []model.YearDuration {
	yearMap := make(map[int]*model.YearDuration)
	for _, r := range records {
		if r.Year == 0 || !r.Duration.Valid {
			continue
		}
		yd, ok := yearMap[r.Year]
		if !ok {
			yd = &model.YearDuration{Year: r.Year}
			yearMap[r.Year] = yd
		}
		yd.MeanDuration = yd.MeanDuration.Add(r.Duration.Decimal)
		yd.Count++
	}

	years := make([]model.YearDuration, 0, len(yearMap))
	for _, yd := range yearMap {
		yd.MeanDuration = mean(yd.MeanDuration, yd.Count)
		years = append(years, *yd)
	}
	sort.Slice(years, func(i, j int) bool {
		return years[i].Year < years[j].Year
	})
	return years
}

// ProgramTotals summarizes each program present in a combined dataset, in
// program order.
func ProgramTotals(records []model.Record) []model.ProgramStats {
	byProgram := make(map[model.Program][]model.Record)
	for _, r := range records {
		byProgram[r.Program] = append(byProgram[r.Program], r)
	}

	var totals []model.ProgramStats
	for _, p := range model.Programs {
		recs, ok := byProgram[p]
		if !ok {
			continue
		}
		stats := Summarize(recs)
		stats.Program = p
		totals = append(totals, stats)
	}
	return totals
}

// YearlyTrend totals amounts per year and program, ordered by year then
// program order. Records without a year or amount are skipped.
func YearlyTrend(records []model.Record) []model.YearlyTotal {
	type key struct {
		year    int
		program model.Program
	}
	sums := make(map[key]decimal.Decimal)
	for _, r := range records {
		if r.Year == 0 || !r.Amount.Valid {
			continue
		}
		k := key{r.Year, r.Program}
		sums[k] = sums[k].Add(r.Amount.Decimal)
	}

	order := make(map[model.Program]int, len(model.Programs))
	for i, p := range model.Programs {
		order[p] = i
	}

	trend := make([]model.YearlyTotal, 0, len(sums))
	for k, amt := range sums {
		trend = append(trend, model.YearlyTotal{Year: k.year, Program: k.program, Amount: amt})
	}
	sort.Slice(trend, func(i, j int) bool {
		if trend[i].Year != trend[j].Year {
			return trend[i].Year < trend[j].Year
		}
		return order[trend[i].Program] < order[trend[j].Program]
	})
	return trend
}

func mean(sum decimal.Decimal, n int) decimal.Decimal {
	if n == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(n)))
}

func truncate[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[:n]
	}
	return s
}
