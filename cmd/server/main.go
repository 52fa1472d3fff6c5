package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clubeapp/points-engine/internal/config"
	"github.com/clubeapp/points-engine/internal/database"
	"github.com/clubeapp/points-engine/internal/events"
	"github.com/clubeapp/points-engine/internal/handlers"
	"github.com/clubeapp/points-engine/internal/jobs"
	"github.com/clubeapp/points-engine/internal/middleware"
	"github.com/clubeapp/points-engine/internal/repositories"
	"github.com/clubeapp/points-engine/internal/scheduler"
	"github.com/clubeapp/points-engine/internal/services"
	"github.com/clubeapp/points-engine/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize logger
	logger.Init()
	defer logger.Sync()

	logger.Info("Starting points engine...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", err)
	}

	// Validate production security settings
	if cfg.AppEnv == "production" {
		if err := cfg.ValidateProductionSecurity(); err != nil {
			logger.Fatal("Production security validation failed", err)
		}
		logger.Info("Production security validation passed")
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", err)
	}

	// Run GORM auto-migration
	if err := database.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Event dispatcher
	dispatcher := events.NewDispatcher(cfg.EventQueueSize)
	dispatcher.Register(events.LogSink{})
	dispatcher.Start()

	// Repositories
	ledgerRepo := repositories.NewLedgerRepository(db)
	checkinRepo := repositories.NewCheckinRepository(db)
	checkoutRepo := repositories.NewCheckoutRepository(db)

	// Services
	ledgerService := services.NewLedgerService(ledgerRepo)
	statementService := services.NewStatementService(ledgerRepo)
	transferService := services.NewTransferService(ledgerRepo, dispatcher)
	adjustmentService := services.NewAdjustmentService(ledgerRepo, dispatcher)
	checkinService := services.NewCheckinService(checkinRepo, dispatcher, cfg.SecretKey, cfg.GetCheckinSkew())
	checkoutService := services.NewCheckoutService(checkoutRepo, dispatcher, cfg.SecretKey, cfg.GetCheckoutTTL())

	// Background sweeps
	jobRunner := jobs.NewJobRunner(checkoutService)
	sched := scheduler.New(jobRunner, cfg.CheckoutSweepSpec)
	sched.Start()

	// HTTP layer
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerUser, cfg.RateLimitPerIP, time.Minute)
	router := handlers.NewRouter(handlers.RouterDeps{
		Ledger:      handlers.NewLedgerHandler(ledgerService, statementService),
		Transfers:   handlers.NewTransferHandler(transferService),
		Admin:       handlers.NewAdminHandler(adjustmentService),
		Checkins:    handlers.NewCheckinHandler(checkinService, cfg.GetCheckinInterval()),
		Checkouts:   handlers.NewCheckoutHandler(checkoutService),
		RateLimiter: rateLimiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", "error", err)
	}

	sched.Stop()
	dispatcher.Stop()
	logger.Info("Points engine stopped")
}
