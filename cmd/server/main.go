package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	httpapi "github.com/ratulDIU/RentoVerse/internal/api/http"
	"github.com/ratulDIU/RentoVerse/internal/config"
	"github.com/ratulDIU/RentoVerse/internal/logger"
	"github.com/ratulDIU/RentoVerse/internal/notify"
	"github.com/ratulDIU/RentoVerse/internal/repository/postgres"
	"github.com/ratulDIU/RentoVerse/internal/security"
	"github.com/ratulDIU/RentoVerse/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting RentoVerse escrow backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
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

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, time.Duration(cfg.JWT.TokenExpiry)*time.Minute)

	// Initialize Email Delivery
	mailer := notify.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	queue := notify.NewQueue(mailer, cfg.Email.Workers, cfg.Email.QueueSize, cfg.Email.MaxRetries)
	queueCtx, stopQueue := context.WithCancel(context.Background())
	queue.Start(queueCtx)
	emailSvc := service.NewEmailService(queue)

	// Initialize Services
	clock := service.SystemClock()
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.PaymentRepository,
		store.RoomRepository,
		store.UserRepository,
		store,
		emailSvc,
		clock,
		cfg.Escrow.SupportEmail,
		cfg.PaymentWindow(),
		cfg.ViewingWindow(),
	)
	paymentSvc := service.NewPaymentService(
		store.PaymentRepository,
		store.BookingRepository,
		store.RoomRepository,
		store.UserRepository,
		store.PayoutRepository,
		store,
		emailSvc,
		clock,
		cfg.Escrow.SupportEmail,
		cfg.ViewingWindow(),
	)
	payoutSvc := service.NewPayoutService(
		store.PayoutRepository,
		store.BookingRepository,
		store.RoomRepository,
		store.UserRepository,
		emailSvc,
		clock,
		cfg.Escrow.SupportEmail,
	)

	// Initialize HTTP handlers
	handlers := httpapi.Handlers{
		Auth:     httpapi.NewAuthHandler(tokenManager, cfg.JWT.AdminPasswordHash),
		Bookings: httpapi.NewBookingHandler(bookingSvc),
		Payments: httpapi.NewPaymentHandler(paymentSvc),
		Payouts:  httpapi.NewPayoutHandler(payoutSvc),
		Rooms:    httpapi.NewRoomHandler(store.RoomRepository),
	}
	router := httpapi.NewRouter(handlers, tokenManager)

	server := &http.Server{
		Addr:         cfg.GetServerAddress(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown: stop accepting requests, then drain the email queue.
	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	stopQueue()
	queue.Wait()
	logger.Info("Shutdown complete. Goodbye!")
}
