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

	httpapi "madrasa-backend/internal/api/http"
	"madrasa-backend/internal/config"
	"madrasa-backend/internal/jobs"
	"madrasa-backend/internal/logger"
	"madrasa-backend/internal/repository/postgres"
	"madrasa-backend/internal/security"
	"madrasa-backend/internal/service"
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
	logger.Info("Starting Madrasa Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
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
	repos := store.Repositories()

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Email Service
	var emailSvc service.EmailService
	if cfg.Email.SendgridKey != "" {
		emailSvc = service.NewSendgridEmailService(cfg.Email.SendgridKey, cfg.Email.FromName, cfg.Email.FromEmail)
		logger.Info("Using SendGrid email delivery", "from", cfg.Email.FromEmail)
	} else {
		emailSvc = service.NewConsoleEmailService()
		logger.Info("No SendGrid key configured, emails will be logged")
	}

	// Initialize Task Dispatcher
	dispatcher := jobs.NewDispatcher(cfg.Jobs.QueueSize)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Initialize Services
	calculatorSvc := service.NewTarifCalculatorService(repos)
	tarificationSvc := service.NewTarificationService(repos.Cursus)
	paymentSvc := service.NewPaymentService(store, repos, emailSvc, dispatcher)
	statisticsSvc := service.NewStatisticsService(repos)
	notificationSvc := service.NewNotificationService(repos)

	// Set up HTTP server
	server := httpapi.NewServer(cfg.GetServerAddress(), &httpapi.Services{
		Calculator:    calculatorSvc,
		Tarification:  tarificationSvc,
		Payment:       paymentSvc,
		Statistics:    statisticsSvc,
		Notifications: notificationSvc,
	}, tokenManager)

	// Start serving in a goroutine so we can handle shutdown signals
	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("HTTP server error", "error", err)
		log.Fatalf("HTTP server error: %v", err)
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down HTTP server", "error", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
