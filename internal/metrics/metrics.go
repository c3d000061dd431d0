package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"coupontracker/internal/db"
)

// Report run outcome labels.
const (
	OutcomeSuccess        = "success"
	OutcomeRegistryError  = "registry_error"
	OutcomeFetchError     = "fetch_error"
	OutcomeNoRecords      = "no_records"
	OutcomeCanceled       = "canceled"
	OutcomeAggregateError = "aggregate_error"
	OutcomeSaveError      = "save_error"
	OutcomeNotifyError    = "notify_error"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupontracker_report_runs_total",
			Help: "Total report runs by outcome",
		},
		[]string{"outcome"},
	)

	mentionsDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coupontracker_mentions_detected_total",
			Help: "Coupon mentions detected in completed runs by validity",
		},
		[]string{"validity"},
	)

	keywordMentionsDesc = prometheus.NewDesc(
		"coupontracker_keyword_mentions_total",
		"Persisted coupon mention count by keyword and validity",
		[]string{"keyword", "validity"},
		nil,
	)
)

// MentionCollector is a custom Prometheus collector that reads persisted
// per-keyword mention counts from the database on each scrape.
type MentionCollector struct {
	db *db.DB
}

// Describe sends the metric descriptor to the channel.
func (c *MentionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- keywordMentionsDesc
}

// Collect queries the database for mention totals and emits them as counters.
func (c *MentionCollector) Collect(ch chan<- prometheus.Metric) {
	totals, err := c.db.GetMentionTotals(context.Background())
	if err != nil {
		slog.Error("failed to collect mention metrics", "error", err)
		return
	}
	for _, t := range totals {
		ch <- prometheus.MustNewConstMetric(
			keywordMentionsDesc,
			prometheus.CounterValue,
			float64(t.Count),
			t.Keyword,
			validity(t.IsValid),
		)
	}
}

var initOnce sync.Once

// Init registers the counters and the custom collector.
// Must be called once at startup in serve mode.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(runsTotal, mentionsDetected)
		prometheus.MustRegister(&MentionCollector{db: database})
	})
}

// RecordRun counts a run outcome. Safe to call before Init; the counter
// just never gets scraped in that case.
func RecordRun(outcome string) {
	runsTotal.WithLabelValues(outcome).Inc()
}

// RecordMentions counts mentions detected in a completed run.
func RecordMentions(valid, invalid int) {
	mentionsDetected.WithLabelValues("valid").Add(float64(valid))
	mentionsDetected.WithLabelValues("invalid").Add(float64(invalid))
}

func validity(isValid bool) string {
	if isValid {
		return "valid"
	}
	return "invalid"
}
