package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tripsync-service/internal/domain/entity"
	"tripsync-service/internal/infrastructure/config"
	"tripsync-service/internal/infrastructure/oauth"
	"tripsync-service/internal/infrastructure/persistence"
	"tripsync-service/internal/infrastructure/scheduler"
	"tripsync-service/internal/interface/airline"
	"tripsync-service/internal/interface/checkinfeed"
	"tripsync-service/internal/interface/mail"
	"tripsync-service/internal/interface/repository"
	"tripsync-service/internal/interface/web"
	"tripsync-service/internal/usecase"
	"tripsync-service/pkg/extract"
	"tripsync-service/pkg/logger"
	"tripsync-service/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/oauth2"
)

func main() {
	// Create logger
	log := logger.NewLogger()
	log.Info("Starting TripSync Service")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up MongoDB connection for scan logs
	log.Info("Connecting to MongoDB")
	mongoClient, mongoDB, err := persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	// Set up PostgreSQL connection for the trip model
	log.Info("Connecting to PostgreSQL")
	gormDB, err := persistence.NewPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", "error", err)
	}
	if err := repository.AutoMigrate(gormDB); err != nil {
		log.Fatal("Failed to migrate schema", "error", err)
	}

	// Set up repositories
	userRepo := repository.NewGormUserRepository(gormDB)
	tripRepo := repository.NewGormTripRepository(gormDB)
	shareRepo := repository.NewGormTripShareRepository(gormDB)
	flightRepo := repository.NewGormFlightRepository(gormDB)
	accomRepo := repository.NewGormAccommodationRepository(gormDB)
	checkinRepo := repository.NewGormCheckInRepository(gormDB)
	credRepo := repository.NewGormCredentialRepository(gormDB)
	cursorRepo := repository.NewGormScanCursorRepository(gormDB)
	scanLogRepo := repository.NewMongoScanLogRepository(mongoDB)

	// Set up metrics
	m := metrics.NewMetrics("tripsync", prometheus.DefaultRegisterer)

	// Set up the token manager
	tokens := oauth.NewManager(credRepo, map[entity.Provider]*oauth2.Config{
		entity.ProviderGmail:   oauth.GoogleConfig(cfg.GoogleClientID, cfg.GoogleClientSecret),
		entity.ProviderOutlook: oauth.MicrosoftConfig(cfg.MicrosoftClientID, cfg.MicrosoftClientSecret),
	}, log)

	// Set up provider adapters
	httpClient := &http.Client{Timeout: cfg.ProviderTimeout}
	adapters := mail.Adapters{
		entity.ProviderGmail:   mail.NewGmailAdapter(log),
		entity.ProviderOutlook: mail.NewOutlookAdapter(httpClient, log),
	}
	airlines := airline.NewManager(cfg.AirlineAPIKeys, httpClient, log)
	feed := checkinfeed.NewFoursquareClient(httpClient, log)

	// Set up usecases
	parser := extract.NewParser(log)
	reconciler := usecase.NewReconciler(tripRepo, flightRepo, accomRepo, checkinRepo, log)
	mailScanner := usecase.NewMailScanner(userRepo, cursorRepo, scanLogRepo, tokens, adapters, parser, reconciler, m, log, cfg.ScanLookback, cfg.ScanOverlap)
	statusPoller := usecase.NewStatusPoller(flightRepo, scanLogRepo, airlines, reconciler, m, log, cfg.StatusHorizon, cfg.ProviderTimeout)
	checkinSync := usecase.NewCheckinSync(userRepo, tripRepo, scanLogRepo, tokens, feed, reconciler, m, log, cfg.CheckinLookback)
	cleanup := usecase.NewCleanup(shareRepo, scanLogRepo, m, log)

	// Register and start the periodic jobs
	registry := scheduler.NewRegistry(m, log)
	registry.Add(entity.JobMailScan, cfg.MailScanInterval, mailScanner.Run)
	registry.Add(entity.JobStatusPoll, cfg.StatusPollInterval, statusPoller.Run)
	registry.Add(entity.JobCheckinSync, cfg.CheckinSyncInterval, checkinSync.Run)
	registry.Add(entity.JobCleanup, cfg.CleanupInterval, cleanup.Run)
	registry.Start(ctx)

	// Start the operational HTTP server
	server := web.NewServer(checkinSync, scanLogRepo, log, cfg.AppVersion)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}

	cancel() // Stop all job loops
	registry.Wait()

	// Disconnect from MongoDB
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("MongoDB disconnect error", "error", err)
	}

	log.Info("TripSync Service stopped")
}
