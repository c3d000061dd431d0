package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"coupontracker/internal/models"
)

// SaveReport persists a completed run with its entries and mentions in one
// transaction, so a failed run never leaves a partial report behind.
// The run's ID and CreatedAt are filled in from the database.
func (d *DB) SaveReport(ctx context.Context, run *models.ReportRun, entries []models.ReportEntry, mentions []models.Mention) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO coupon_report_runs (window_start, window_end, record_count, mention_count)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, run.WindowStart, run.WindowEnd, run.RecordCount, run.MentionCount).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}

	for _, entry := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupon_report_entries (run_id, keyword, valid_count, invalid_count, invalid_codes)
			VALUES ($1, $2, $3, $4, $5)
		`, run.ID, entry.Keyword, entry.ValidCount, entry.InvalidCount, entry.InvalidCodes); err != nil {
			return fmt.Errorf("failed to insert report entry for %q: %w", entry.Keyword, err)
		}
	}

	for _, mention := range mentions {
		if _, err := tx.Exec(ctx, `
			INSERT INTO coupon_mentions (run_id, record_id, keyword, code, position, is_valid, context)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, run.ID, mention.RecordID, mention.Keyword, mention.Code, mention.Position, mention.IsValid, mention.Context); err != nil {
			return fmt.Errorf("failed to insert mention of %q: %w", mention.Code, err)
		}
	}

	return tx.Commit(ctx)
}

// GetRunByID fetches a single persisted run.
func (d *DB) GetRunByID(ctx context.Context, id uuid.UUID) (*models.ReportRun, error) {
	var run models.ReportRun
	err := d.Pool.QueryRow(ctx, `
		SELECT id, window_start, window_end, record_count, mention_count, created_at
		FROM coupon_report_runs
		WHERE id = $1
	`, id).Scan(&run.ID, &run.WindowStart, &run.WindowEnd, &run.RecordCount, &run.MentionCount, &run.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRecentRuns returns the most recent runs, newest first.
func (d *DB) GetRecentRuns(ctx context.Context, limit int) ([]models.ReportRun, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, window_start, window_end, record_count, mention_count, created_at
		FROM coupon_report_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ReportRun
	for rows.Next() {
		var run models.ReportRun
		if err := rows.Scan(&run.ID, &run.WindowStart, &run.WindowEnd, &run.RecordCount, &run.MentionCount, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetEntriesForRun returns a run's report entries in stored report order.
func (d *DB) GetEntriesForRun(ctx context.Context, runID uuid.UUID) ([]models.ReportEntry, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT keyword, valid_count, invalid_count, invalid_codes
		FROM coupon_report_entries
		WHERE run_id = $1
		ORDER BY valid_count + invalid_count DESC, keyword
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.ReportEntry
	for rows.Next() {
		var entry models.ReportEntry
		if err := rows.Scan(&entry.Keyword, &entry.ValidCount, &entry.InvalidCount, &entry.InvalidCodes); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// GetMentionTotals returns persisted per-keyword mention counts by validity
// for metrics export.
func (d *DB) GetMentionTotals(ctx context.Context) ([]models.MentionTotal, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT keyword, is_valid, COUNT(*)
		FROM coupon_mentions
		GROUP BY keyword, is_valid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.MentionTotal
	for rows.Next() {
		var t models.MentionTotal
		if err := rows.Scan(&t.Keyword, &t.IsValid, &t.Count); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
