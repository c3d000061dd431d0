package models

import (
	"time"

	"github.com/google/uuid"
)

// OverviewRecord is one fetched AI Overview response for a tracked keyword.
// Records are read-only input to the detection pipeline.
type OverviewRecord struct {
	ID             uuid.UUID `json:"id"`
	Keyword        string    `json:"keyword"`
	Location       *string   `json:"location"`
	PrimaryProduct string    `json:"primary_product"`
	Provider       string    `json:"provider"`
	ResponseText   string    `json:"response_text"`
	FetchedAt      time.Time `json:"fetched_at"`
}
