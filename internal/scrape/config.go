package scrape

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config controls the disease reference scraper.
type Config struct {
	// SourceURL is the health topics index page to scrape.
	SourceURL string `yaml:"source_url"`

	// SourceName is recorded on every entry.
	SourceName string `yaml:"source_name"`

	// EntryLimit caps how many topics are scraped per run.
	EntryLimit int `yaml:"entry_limit"`

	// FetchTimeoutSec bounds each HTTP fetch, in seconds.
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"`

	// SnapshotPath is where the JSON snapshot is written.
	SnapshotPath string `yaml:"snapshot_path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		SourceURL:       "https://www.who.int/health-topics/",
		SourceName:      "WHO Health Topics",
		EntryLimit:      10,
		FetchTimeoutSec: 10,
		SnapshotPath:    "./patient_app/scraped_diseases.json",
	}
}

// Load reads a YAML config file and fills unset fields from Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for usability.
func (c Config) Validate() error {
	if c.SourceURL == "" {
		return fmt.Errorf("source_url is required")
	}
	if c.EntryLimit < 1 {
		return fmt.Errorf("entry_limit must be at least 1, got %d", c.EntryLimit)
	}
	if c.FetchTimeoutSec <= 0 {
		return fmt.Errorf("fetch_timeout_sec must be positive, got %d", c.FetchTimeoutSec)
	}
	if c.SnapshotPath == "" {
		return fmt.Errorf("snapshot_path is required")
	}
	return nil
}

// FetchTimeout returns the per-fetch timeout as a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}
