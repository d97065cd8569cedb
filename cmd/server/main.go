package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/zendesk-ingest/internal/api"
	"github.com/zendesk-ingest/internal/config"
	"github.com/zendesk-ingest/internal/database"
	"github.com/zendesk-ingest/internal/models"
	"github.com/zendesk-ingest/internal/repository"
	"github.com/zendesk-ingest/internal/service"
	"github.com/zendesk-ingest/internal/zendesk"
	"github.com/zendesk-ingest/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting Zendesk ingest server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize the upstream fetcher
	fetcher := zendesk.NewFetcher(cfg.Zendesk, log)

	// Initialize services
	services := service.NewServices(repos, fetcher, cfg, log)

	// Register the configured connector
	connector, err := services.Connector.EnsureConnector(context.Background(), cfg.Sync.ConnectorName, models.ConnectorZendesk)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to register connector")
	}

	// Start background sync processor
	go services.Sync.StartProcessor(context.Background())
	log.Info().Msg("Background sync processor started")

	// Optionally enqueue a full sync at boot
	if cfg.Sync.SyncOnStart {
		if _, err := services.Sync.EnqueueRun(context.Background(), connector.ID, models.TriggerStartup); err != nil {
			log.Error().Err(err).Msg("Failed to enqueue startup sync run")
		}
	}

	// Initialize router
	router := api.NewRouter(services, db, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop sync processor
	services.Sync.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
