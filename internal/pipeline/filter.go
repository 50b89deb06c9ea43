package pipeline

import (
	"sort"
	"strings"

	"github.com/ydsf-surabaya/aidboard/internal/model"
)

// Every filter returns a new slice; the input is never modified.

// FilterByYears returns records whose year is one of years. No years means all.
func FilterByYears(records []model.Record, years ...int) []model.Record {
	if len(years) == 0 {
		return append([]model.Record(nil), records...)
	}
	want := make(map[int]struct{}, len(years))
	for _, y := range years {
		want[y] = struct{}{}
	}
	var result []model.Record
	for _, r := range records {
		if _, ok := want[r.Year]; ok {
			result = append(result, r)
		}
	}
	return result
}

// FilterByCluster returns records assigned to cluster id.
func FilterByCluster(records []model.Record, id int) []model.Record {
	var result []model.Record
	for _, r := range records {
		if r.HasCluster && r.Cluster == id {
			result = append(result, r)
		}
	}
	return result
}

// FilterByProgram returns records tagged with program p.
func FilterByProgram(records []model.Record, p model.Program) []model.Record {
	var result []model.Record
	for _, r := range records {
		if r.Program == p {
			result = append(result, r)
		}
	}
	return result
}

// FilterByValue returns records whose categorical field equals value exactly.
func FilterByValue(records []model.Record, field model.Field, value string) []model.Record {
	var result []model.Record
	for _, r := range records {
		if r.Value(field) == value {
			result = append(result, r)
		}
	}
	return result
}

// Search returns records whose recipient name or ID number contains query,
// ignoring case. An empty query matches everything.
func Search(records []model.Record, query string) []model.Record {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]model.Record(nil), records...)
	}
	var result []model.Record
	for _, r := range records {
		if containsIgnoreCase(r.Recipient, query) || containsIgnoreCase(r.IDNumber, query) {
			result = append(result, r)
		}
	}
	return result
}

// Years returns the distinct known years, most recent first.
func Years(records []model.Record) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, r := range records {
		if r.Year == 0 {
			continue
		}
		if _, ok := seen[r.Year]; !ok {
			seen[r.Year] = struct{}{}
			years = append(years, r.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// ClusterIDs returns the distinct cluster ids present, ascending.
func ClusterIDs(records []model.Record) []int {
	seen := make(map[int]struct{})
	var ids []int
	for _, r := range records {
		if !r.HasCluster {
			continue
		}
		if _, ok := seen[r.Cluster]; !ok {
			seen[r.Cluster] = struct{}{}
			ids = append(ids, r.Cluster)
		}
	}
	sort.Ints(ids)
	return ids
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
