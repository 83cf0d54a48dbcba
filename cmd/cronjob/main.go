package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"

	"github.com/ratulDIU/RentoVerse/internal/config"
	"github.com/ratulDIU/RentoVerse/internal/jobs"
	"github.com/ratulDIU/RentoVerse/internal/logger"
	"github.com/ratulDIU/RentoVerse/internal/notify"
	"github.com/ratulDIU/RentoVerse/internal/repository/postgres"
	"github.com/ratulDIU/RentoVerse/internal/scheduler"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'sweep-escrow')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentoVerse cronjob runner...", "log_level", cfg.Log.Level)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Email Delivery
	mailer := notify.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	queue := notify.NewQueue(mailer, cfg.Email.Workers, cfg.Email.QueueSize, cfg.Email.MaxRetries)
	queueCtx, stopQueue := context.WithCancel(context.Background())
	queue.Start(queueCtx)
	emailSvc := service.NewEmailService(queue)

	// Initialize Services
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.PaymentRepository,
		store.RoomRepository,
		store.UserRepository,
		store,
		emailSvc,
		service.SystemClock(),
		cfg.Escrow.SupportEmail,
		cfg.PaymentWindow(),
		cfg.ViewingWindow(),
	)

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(bookingSvc, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		runJobOnce(jobRunner, *runOnce)
		stopQueue()
		queue.Wait()
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	stopQueue()
	queue.Wait()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once and exits
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) {
	switch jobName {
	case "sweep-escrow":
		jobRunner.SweepEscrow()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - sweep-escrow\n")
		os.Exit(1)
	}
}
