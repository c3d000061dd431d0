// Package jobs runs the coupon mention reporting pipeline.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"coupontracker/internal/config"
	"coupontracker/internal/detect"
	"coupontracker/internal/metrics"
	"coupontracker/internal/models"
	"coupontracker/internal/registry"
	"coupontracker/internal/report"
	"coupontracker/internal/slack"
)

// DefaultProvider is the AI Overview provider records are fetched for.
const DefaultProvider = "google_ai_overview"

// ErrNoRecords aborts a run when the window holds no overview records; a
// report over nothing would only mislead.
var ErrNoRecords = errors.New("no overview records found in reporting window")

// Store is the database surface the reporter needs.
type Store interface {
	GetOverviewsForWindow(ctx context.Context, window models.Window, provider string) ([]models.OverviewRecord, error)
	SaveReport(ctx context.Context, run *models.ReportRun, entries []models.ReportEntry, mentions []models.Mention) error
}

// Notifier delivers the rendered report.
type Notifier interface {
	Send(ctx context.Context, msg slack.Message) error
}

// Reporter runs the weekly detection pipeline: registry snapshot, record
// fetch, scan and classify, aggregate, persist, notify. It holds no state
// between runs; every run is a pure function of the fetched snapshot.
type Reporter struct {
	store        Store
	source       registry.Source
	notifier     Notifier
	scanner      *detect.Scanner
	rules        config.Rules
	lookbackDays int
	provider     string
}

// NewReporter builds a reporter, compiling the detection pattern up front so
// a bad pattern fails at startup rather than mid-run.
func NewReporter(store Store, source registry.Source, notifier Notifier, rules config.Rules, lookbackDays int) (*Reporter, error) {
	scanner, err := detect.NewScanner(rules)
	if err != nil {
		return nil, err
	}

	return &Reporter{
		store:        store,
		source:       source,
		notifier:     notifier,
		scanner:      scanner,
		rules:        rules,
		lookbackDays: lookbackDays,
		provider:     DefaultProvider,
	}, nil
}

// Run executes one reporting run. Faults that would make the whole report
// wrong (unreachable or empty registry, failed fetch, no records,
// aggregation invariant violations, failed persistence) abort before the
// notification is sent. Per-record problems only skip that record.
func (r *Reporter) Run(ctx context.Context) error {
	reg, err := registry.Load(ctx, r.source, r.rules.Strip)
	if err != nil {
		metrics.RecordRun(metrics.OutcomeRegistryError)
		return fmt.Errorf("coupon registry unavailable, aborting run: %w", err)
	}
	log.Printf("Loaded %d active coupon codes", reg.Len())

	window := models.LastNDays(r.lookbackDays)
	records, err := r.store.GetOverviewsForWindow(ctx, window, r.provider)
	if err != nil {
		metrics.RecordRun(metrics.OutcomeFetchError)
		return fmt.Errorf("failed to fetch overview records: %w", err)
	}
	if len(records) == 0 {
		metrics.RecordRun(metrics.OutcomeNoRecords)
		return ErrNoRecords
	}
	log.Printf("Scanning %d overview records from last %d days", len(records), r.lookbackDays)

	classifier := detect.NewClassifier(r.scanner, reg, r.rules.ContextChars)

	var mentions []models.Mention
	for _, record := range records {
		// Stay interruptible between records
		if err := ctx.Err(); err != nil {
			metrics.RecordRun(metrics.OutcomeCanceled)
			return err
		}
		mentions = append(mentions, classifier.Classify(record)...)
	}

	entries, err := report.Aggregate(mentions, window)
	if err != nil {
		metrics.RecordRun(metrics.OutcomeAggregateError)
		return fmt.Errorf("aggregation failed: %w", err)
	}

	valid, invalid := report.Totals(entries)
	log.Printf("Report aggregated: %d keywords, %d valid mentions, %d invalid mentions", len(entries), valid, invalid)
	for _, entry := range entries {
		if entry.InvalidCount > 0 {
			log.Printf("  invalid coupons in %q: %v", entry.Keyword, entry.InvalidCodes)
		}
	}

	run := &models.ReportRun{
		WindowStart:  window.Start,
		WindowEnd:    window.End,
		RecordCount:  len(records),
		MentionCount: len(mentions),
	}
	if err := r.store.SaveReport(ctx, run, entries, mentions); err != nil {
		metrics.RecordRun(metrics.OutcomeSaveError)
		return fmt.Errorf("failed to persist report: %w", err)
	}

	msg := slack.BuildWeeklyReport(entries, window)
	if err := r.notifier.Send(ctx, msg); err != nil {
		metrics.RecordRun(metrics.OutcomeNotifyError)
		return fmt.Errorf("failed to send report notification: %w", err)
	}

	metrics.RecordRun(metrics.OutcomeSuccess)
	metrics.RecordMentions(valid, invalid)
	log.Printf("Report run %s completed", run.ID)
	return nil
}
