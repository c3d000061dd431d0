package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"coupontracker/internal/config"
	"coupontracker/internal/db"
	"coupontracker/internal/jobs"
	"coupontracker/internal/metrics"
	"coupontracker/internal/registry"
	"coupontracker/internal/server"
	"coupontracker/internal/sheets"
	"coupontracker/internal/slack"
)

func main() {
	once := flag.Bool("once", false, "run a single report and exit")
	flag.Parse()

	ctx := context.Background()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	rules, err := config.LoadRules(cfg.RulesFile)
	if err != nil {
		log.Fatalf("Failed to load detection rules: %v", err)
	}

	// Initialize database
	database, err := db.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Migrations completed successfully")

	source, err := couponSource(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize coupon source: %v", err)
	}

	notifier := slack.NewClient(cfg.SlackWebhookURL)

	reporter, err := jobs.NewReporter(database, source, notifier, rules, cfg.ReportLookbackDays)
	if err != nil {
		log.Fatalf("Failed to initialize reporter: %v", err)
	}

	if *once {
		log.Printf("Running single report (lookback: %d days)", cfg.ReportLookbackDays)
		switch err := reporter.Run(ctx); {
		case errors.Is(err, jobs.ErrNoRecords):
			// A quiet window is not a failure; there is just nothing to report.
			log.Println("No overview records in window, nothing to report")
		case err != nil:
			log.Printf("Report run failed: %v", err)
			database.Close()
			os.Exit(1)
		default:
			log.Println("Report run completed successfully")
		}
		return
	}

	// Serve mode: cron schedule plus ops endpoints
	metrics.Init(database)

	scheduler := jobs.NewScheduler()
	if err := scheduler.Start(cfg.ReportSchedule, reporter); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	srv := server.New(database)
	go func() {
		if err := srv.Listen(cfg.ServerAddr); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("Server started on %s", cfg.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	<-scheduler.Stop().Done()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Exited")
}

// couponSource picks the registry source: the configured spreadsheet when
// credentials are present, otherwise the static COUPON_CODES list.
func couponSource(ctx context.Context, cfg *config.Config) (registry.Source, error) {
	if cfg.UseSheets() {
		return sheets.NewClient(ctx, cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsCouponGID, cfg.SheetsCouponColumn)
	}
	return registry.StaticSource(cfg.CouponCodes), nil
}
