package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers report runs on a cron schedule in serve mode. The
// schedule guarantees at-most-one-concurrent-run; the pipeline itself holds
// no locks.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start registers the reporter on the cron spec and starts the schedule.
// Runs are serialized: a tick is skipped if the previous run is still going.
func (s *Scheduler) Start(spec string, reporter *Reporter) error {
	running := make(chan struct{}, 1)

	_, err := s.cron.AddFunc(spec, func() {
		select {
		case running <- struct{}{}:
			defer func() { <-running }()
		default:
			log.Println("Report run still in progress, skipping this tick")
			return
		}

		switch err := reporter.Run(context.Background()); {
		case errors.Is(err, ErrNoRecords):
			log.Println("No overview records in window, nothing to report")
		case err != nil:
			log.Printf("Scheduled report run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid report schedule %q: %w", spec, err)
	}

	s.cron.Start()
	log.Printf("Report scheduler started (schedule: %s)", spec)
	return nil
}

// Stop stops the schedule and returns a context that completes when any
// in-flight run finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}
