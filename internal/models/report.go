package models

import (
	"time"

	"github.com/google/uuid"
)

// Window is the reporting period records are fetched and aggregated over.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LastNDays returns a window ending now and starting n days earlier.
func LastNDays(n int) Window {
	end := time.Now().UTC()
	return Window{
		Start: end.AddDate(0, 0, -n),
		End:   end,
	}
}

// ReportEntry is the per-keyword summary for one reporting window.
// Counts are occurrence counts; InvalidCodes is the sorted distinct set of
// invalid codes seen for the keyword, kept for display rather than counting.
type ReportEntry struct {
	Keyword      string   `json:"keyword"`
	ValidCount   int      `json:"valid_count"`
	InvalidCount int      `json:"invalid_count"`
	InvalidCodes []string `json:"invalid_codes"`
}

// TotalCount returns the combined mention count for the entry.
func (e ReportEntry) TotalCount() int {
	return e.ValidCount + e.InvalidCount
}

// MentionTotal is a persisted per-keyword mention count by validity,
// read back for metrics export.
type MentionTotal struct {
	Keyword string
	IsValid bool
	Count   int64
}

// ReportRun records one completed pipeline run for persistence.
type ReportRun struct {
	ID           uuid.UUID `json:"id"`
	WindowStart  time.Time `json:"window_start"`
	WindowEnd    time.Time `json:"window_end"`
	RecordCount  int       `json:"record_count"`
	MentionCount int       `json:"mention_count"`
	CreatedAt    time.Time `json:"created_at"`
}
