package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"coupontracker/internal/config"
	"coupontracker/internal/models"
	"coupontracker/internal/registry"
	"coupontracker/internal/slack"
)

type fakeStore struct {
	records  []models.OverviewRecord
	fetchErr error
	saveErr  error

	savedRun      *models.ReportRun
	savedEntries  []models.ReportEntry
	savedMentions []models.Mention
}

func (s *fakeStore) GetOverviewsForWindow(ctx context.Context, window models.Window, provider string) ([]models.OverviewRecord, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return s.records, nil
}

func (s *fakeStore) SaveReport(ctx context.Context, run *models.ReportRun, entries []models.ReportEntry, mentions []models.Mention) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	run.ID = uuid.New()
	s.savedRun = run
	s.savedEntries = entries
	s.savedMentions = mentions
	return nil
}

type fakeNotifier struct {
	sent []slack.Message
	err  error
}

func (n *fakeNotifier) Send(ctx context.Context, msg slack.Message) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, msg)
	return nil
}

type failingSource struct{ err error }

func (s failingSource) FetchCodes(ctx context.Context) ([]string, error) {
	return nil, s.err
}

func testRecord(keyword, text string) models.OverviewRecord {
	return models.OverviewRecord{
		ID:             uuid.New(),
		Keyword:        keyword,
		PrimaryProduct: "acme",
		Provider:       DefaultProvider,
		ResponseText:   text,
		FetchedAt:      time.Now(),
	}
}

func newTestReporter(t *testing.T, store Store, source registry.Source, notifier Notifier) *Reporter {
	t.Helper()
	reporter, err := NewReporter(store, source, notifier, config.DefaultRules(), 7)
	if err != nil {
		t.Fatalf("NewReporter() error = %v", err)
	}
	return reporter
}

func TestRunHappyPath(t *testing.T) {
	store := &fakeStore{records: []models.OverviewRecord{
		testRecord("vpn deals", "Use code SAVE10 at checkout, or try OLD5 for older plans."),
		testRecord("password manager", "The code SAVE10 still works."),
	}}
	notifier := &fakeNotifier{}
	reporter := newTestReporter(t, store, registry.StaticSource{"SAVE10"}, notifier)

	if err := reporter.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if store.savedRun == nil {
		t.Fatal("report run was not saved")
	}
	if store.savedRun.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", store.savedRun.RecordCount)
	}
	if store.savedRun.MentionCount != 3 {
		t.Errorf("MentionCount = %d, want 3", store.savedRun.MentionCount)
	}
	if len(store.savedEntries) != 2 {
		t.Fatalf("saved %d entries, want 2", len(store.savedEntries))
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("sent %d notifications, want 1", len(notifier.sent))
	}

	for _, entry := range store.savedEntries {
		if entry.Keyword == "vpn deals" {
			if entry.ValidCount != 1 || entry.InvalidCount != 1 {
				t.Errorf("vpn deals counts = %d/%d, want 1/1", entry.ValidCount, entry.InvalidCount)
			}
			if len(entry.InvalidCodes) != 1 || entry.InvalidCodes[0] != "OLD5" {
				t.Errorf("vpn deals invalid codes = %v, want [OLD5]", entry.InvalidCodes)
			}
		}
	}
}

func TestRunEmptyRegistryAborts(t *testing.T) {
	store := &fakeStore{records: []models.OverviewRecord{testRecord("vpn deals", "code SAVE10")}}
	notifier := &fakeNotifier{}
	reporter := newTestReporter(t, store, registry.StaticSource{}, notifier)

	err := reporter.Run(context.Background())
	if !errors.Is(err, registry.ErrEmptySource) {
		t.Fatalf("Run() error = %v, want ErrEmptySource", err)
	}
	if store.savedRun != nil {
		t.Error("report should not be saved when the registry is empty")
	}
	if len(notifier.sent) != 0 {
		t.Error("notification should not be sent when the registry is empty")
	}
}

func TestRunUnreachableSourceAborts(t *testing.T) {
	store := &fakeStore{records: []models.OverviewRecord{testRecord("vpn deals", "code SAVE10")}}
	notifier := &fakeNotifier{}
	source := failingSource{err: errors.New("connection refused")}
	reporter := newTestReporter(t, store, source, notifier)

	err := reporter.Run(context.Background())
	if !errors.Is(err, registry.ErrSourceFetch) {
		t.Fatalf("Run() error = %v, want ErrSourceFetch", err)
	}
	if len(notifier.sent) != 0 {
		t.Error("notification should not be sent when the source is unreachable")
	}
}

func TestRunFetchError(t *testing.T) {
	store := &fakeStore{fetchErr: errors.New("database down")}
	notifier := &fakeNotifier{}
	reporter := newTestReporter(t, store, registry.StaticSource{"SAVE10"}, notifier)

	if err := reporter.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when the record fetch fails")
	}
	if len(notifier.sent) != 0 {
		t.Error("notification should not be sent after a fetch failure")
	}
}

func TestRunNoRecords(t *testing.T) {
	store := &fakeStore{}
	notifier := &fakeNotifier{}
	reporter := newTestReporter(t, store, registry.StaticSource{"SAVE10"}, notifier)

	err := reporter.Run(context.Background())
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("Run() error = %v, want ErrNoRecords", err)
	}
	if len(notifier.sent) != 0 {
		t.Error("notification should not be sent for an empty window")
	}
}

func TestRunSaveErrorSkipsNotification(t *testing.T) {
	store := &fakeStore{
		records: []models.OverviewRecord{testRecord("vpn deals", "code SAVE10")},
		saveErr: errors.New("insert failed"),
	}
	notifier := &fakeNotifier{}
	reporter := newTestReporter(t, store, registry.StaticSource{"SAVE10"}, notifier)

	if err := reporter.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when persistence fails")
	}
	if len(notifier.sent) != 0 {
		t.Error("notification must not be sent when the report was not persisted")
	}
}

func TestRunNotifyError(t *testing.T) {
	store := &fakeStore{records: []models.OverviewRecord{testRecord("vpn deals", "code SAVE10")}}
	notifier := &fakeNotifier{err: errors.New("webhook rejected")}
	reporter := newTestReporter(t, store, registry.StaticSource{"SAVE10"}, notifier)

	if err := reporter.Run(context.Background()); err == nil {
		t.Fatal("Run() should surface notification failures")
	}
	if store.savedRun == nil {
		t.Error("report should be persisted even when notification fails")
	}
}

func TestRunCanceledContext(t *testing.T) {
	store := &fakeStore{records: []models.OverviewRecord{testRecord("vpn deals", "code SAVE10")}}
	notifier := &fakeNotifier{}
	reporter := newTestReporter(t, store, registry.StaticSource{"SAVE10"}, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := reporter.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if store.savedRun != nil {
		t.Error("report should not be saved after cancellation")
	}
}

func TestNewReporterBadPattern(t *testing.T) {
	rules := config.DefaultRules()
	rules.Pattern = "(unclosed"

	if _, err := NewReporter(&fakeStore{}, registry.StaticSource{"SAVE10"}, &fakeNotifier{}, rules, 7); err == nil {
		t.Error("NewReporter() should reject an invalid pattern")
	}
}
