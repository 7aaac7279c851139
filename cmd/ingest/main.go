package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/brightward/patientd/internal/scrape"
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

	elasticsearchURL := getEnvOrDefault("ELASTICSEARCH_URL", "")
	logLevel := getEnvOrDefault("INGEST_LOG_LEVEL", "info")
	configPath := os.Getenv("SCRAPE_CONFIG")

	// Set app prefix
	zerolog_config.SetAppPrefix("patientd-ingest")

	// Initialize zerolog with Elasticsearch
	zerolog_config.StartupWithEnv(elasticsearchURL, "logs", logLevel)

	log.Info().Msg("Starting patientd-ingest service")

	cfg := scrape.Default()
	if configPath != "" {
		cfg, err = scrape.Load(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("Failed to load scrape config")
		}
	}
	if path := os.Getenv("SCRAPED_JSON_PATH"); path != "" {
		cfg.SnapshotPath = path
	}

	// Cancel the scrape on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scraper := scrape.New(cfg, log.Logger)
	count, err := scraper.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Disease reference scrape failed")
	}

	log.Info().
		Int("entries", count).
		Str("path", cfg.SnapshotPath).
		Msg("Ingest complete")
}

// Helper function to get environment variable with default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
