package models

import "github.com/google/uuid"

// Mention is a single occurrence of a coupon-shaped token found in an
// OverviewRecord's response text. One Mention is emitted per occurrence,
// never deduplicated; frequency is part of the report signal.
//
// Code is the exact substring of the source text starting at Position.
// IsValid is fixed at classification time and never recomputed.
type Mention struct {
	RecordID uuid.UUID `json:"record_id"`
	Keyword  string    `json:"keyword"`
	Code     string    `json:"code"`
	Position int       `json:"position"`
	IsValid  bool      `json:"is_valid"`
	Context  string    `json:"context"`
}
