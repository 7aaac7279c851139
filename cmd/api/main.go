package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/brightward/patientd/internal/aggregate"
	"github.com/brightward/patientd/internal/api"
	"github.com/brightward/patientd/internal/disease"
	"github.com/brightward/patientd/internal/metrics"
	"github.com/brightward/patientd/internal/notify"
	"github.com/brightward/patientd/internal/store"
	"github.com/brightward/patientd/pkg/zerolog_config"
)

func main() {
	// Load .env file from parent directory
	err := godotenv.Load("../.env")
	if err != nil {
		log.Info().Msg("Not found .env file in parent directory, trying current directory")
		err = godotenv.Load(".env")
		if err != nil {
			log.Info().Msg("Not found .env file in current directory, assuming environment variables are set")
		}
	}

	// Get configuration from environment
	elasticsearchURL := getEnvOrDefault("ELASTICSEARCH_URL", "")
	apiPort := getEnvOrDefault("API_PORT", "8080")
	apiLogLevel := getEnvOrDefault("API_LOG_LEVEL", "info")
	dbPath := getEnvOrDefault("PATIENT_DB_PATH", "./patient_app/patient_app.db")
	snapshotPath := getEnvOrDefault("SCRAPED_JSON_PATH", "./patient_app/scraped_diseases.json")
	batchSize := getEnvIntOrDefault("AGG_BATCH_SIZE", aggregate.DefaultBatchSize)

	// Set app prefix
	zerolog_config.SetAppPrefix("patientd-api")

	// Initialize zerolog with Elasticsearch
	zerolog_config.StartupWithEnv(elasticsearchURL, "logs", apiLogLevel)

	log.Info().Msg("Starting patientd-api service")

	// Start system metrics collection
	metrics.StartSystemMetricsCollection("patientd-api")

	// Open the patient store
	patientStore, err := store.Open(dbPath, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open patient store")
	}

	// Wire the create notification hook
	mailer := buildMailer()
	notifier := notify.NewNotifier(mailer, notify.DefaultBufferSize, log.Logger)
	notifier.Start()
	patientStore.OnCreate(notifier.PatientCreated())

	// Disease reference cache
	diseaseCache := disease.NewCache(snapshotPath, log.Logger)

	// Setup routes
	server := api.NewServer(patientStore, diseaseCache, batchSize, log.Logger)
	router := server.Routes()

	// Create HTTP server
	httpServer := &http.Server{
		Addr:    ":" + apiPort,
		Handler: router,
	}

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", apiPort).
			Msg("Server starting")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().
				Err(err).
				Msg("Failed to start server")
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Shutdown server with timeout
	shutdownTimeout := 30 * time.Second
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	// Drain pending notifications
	log.Info().Msg("Draining pending notifications...")
	notifier.Close()

	// Close the store
	log.Info().Msg("Closing patient store...")
	if err := patientStore.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close patient store")
	}

	log.Info().Msg("API service shutdown complete")
}

// buildMailer returns the HTTP relay mailer when MAIL_API_URL is set, a
// logging no-op otherwise.
func buildMailer() notify.Mailer {
	cfg := notify.MailConfigFromEnv()
	if cfg.APIURL == "" {
		log.Info().Msg("MAIL_API_URL not set, create notifications will be discarded")
		return notify.NewNopMailer(log.Logger)
	}

	mailer, err := notify.NewHTTPMailer(cfg, log.Logger)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to configure mail relay, create notifications will be discarded")
		return notify.NewNopMailer(log.Logger)
	}
	return mailer
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
