package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"coupontracker/internal/models"
)

// overviewColumns is the standard column list for overview record queries.
const overviewColumns = `r.id, p.keyword, p.location, p.primary_product, r.provider,
	COALESCE(r.response_text, ''), r.scraped_at`

// scanOverviews scans joined prompt/result rows into OverviewRecords.
func scanOverviews(rows pgx.Rows) ([]models.OverviewRecord, error) {
	defer rows.Close()

	var records []models.OverviewRecord
	for rows.Next() {
		var record models.OverviewRecord
		if err := rows.Scan(
			&record.ID,
			&record.Keyword,
			&record.Location,
			&record.PrimaryProduct,
			&record.Provider,
			&record.ResponseText,
			&record.FetchedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetOverviewsForWindow fetches overview records scraped within the window
// for active prompts. Rows without response text are skipped at the query;
// they can contribute no mentions. Ordering is newest first, then keyword,
// so runs over the same snapshot see records in the same order.
func (d *DB) GetOverviewsForWindow(ctx context.Context, window models.Window, provider string) ([]models.OverviewRecord, error) {
	query := `
		SELECT ` + overviewColumns + `
		FROM ai_overview_results r
		JOIN ai_overview_prompts p ON p.id = r.prompt_id
		WHERE r.scraped_at >= $1 AND r.scraped_at <= $2
		  AND r.provider = $3
		  AND p.status = 'active'
		  AND r.response_text IS NOT NULL AND r.response_text <> ''
		ORDER BY r.scraped_at DESC, p.keyword
	`

	rows, err := d.Pool.Query(ctx, query, window.Start, window.End, provider)
	if err != nil {
		return nil, err
	}

	return scanOverviews(rows)
}
