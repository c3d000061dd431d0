// Package report turns classified mentions into the per-keyword summary
// consumed by the notifier and the persistence layer.
package report

import (
	"fmt"
	"sort"
	"strings"

	"coupontracker/internal/models"
)

// Aggregate groups mentions by keyword for the reporting window, producing
// one entry per keyword with activity. Counts are occurrence counts, not
// distinct-code counts; InvalidCodes is the sorted distinct set of invalid
// codes for display. Entries are ordered by total mentions descending, then
// keyword ascending, so repeated runs over the same input produce identical
// output.
//
// A mention without a keyword or code is a programming error upstream and
// aborts aggregation.
func Aggregate(mentions []models.Mention, window models.Window) ([]models.ReportEntry, error) {
	type bucket struct {
		valid   int
		invalid int
		codes   map[string]struct{}
	}

	buckets := make(map[string]*bucket)
	for i, m := range mentions {
		if m.Keyword == "" || m.Code == "" {
			return nil, fmt.Errorf("mention %d is missing keyword or code (record %s)", i, m.RecordID)
		}

		b := buckets[m.Keyword]
		if b == nil {
			b = &bucket{codes: make(map[string]struct{})}
			buckets[m.Keyword] = b
		}

		if m.IsValid {
			b.valid++
		} else {
			b.invalid++
			b.codes[strings.ToUpper(strings.TrimSpace(m.Code))] = struct{}{}
		}
	}

	entries := make([]models.ReportEntry, 0, len(buckets))
	for keyword, b := range buckets {
		codes := make([]string, 0, len(b.codes))
		for code := range b.codes {
			codes = append(codes, code)
		}
		sort.Strings(codes)

		entries = append(entries, models.ReportEntry{
			Keyword:      keyword,
			ValidCount:   b.valid,
			InvalidCount: b.invalid,
			InvalidCodes: codes,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalCount() != entries[j].TotalCount() {
			return entries[i].TotalCount() > entries[j].TotalCount()
		}
		return entries[i].Keyword < entries[j].Keyword
	})

	return entries, nil
}

// Totals sums valid and invalid mention counts across entries.
func Totals(entries []models.ReportEntry) (valid, invalid int) {
	for _, e := range entries {
		valid += e.ValidCount
		invalid += e.InvalidCount
	}
	return valid, invalid
}
