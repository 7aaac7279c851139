// Package disease provides read-only access to the scraped disease
// reference snapshot. Refreshing the snapshot is the ingest binary's job;
// this package never fetches.
package disease

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

var (
	// ErrSnapshotMissing means no snapshot has been written yet.
	ErrSnapshotMissing = errors.New("disease: snapshot not found")
	// ErrSnapshotCorrupt means the snapshot exists but is not valid JSON of
	// the expected shape.
	ErrSnapshotCorrupt = errors.New("disease: snapshot corrupt")
)

// Entry is one scraped disease reference record.
type Entry struct {
	Disease     string `json:"disease"`
	Description string `json:"description"`
	Source      string `json:"source"`
	URL         string `json:"url"`
}

// Cache reads disease entries from a JSON snapshot on disk.
type Cache struct {
	path string
	log  zerolog.Logger
}

// NewCache returns a cache reading the snapshot at path.
func NewCache(path string, logger zerolog.Logger) *Cache {
	return &Cache{path: path, log: logger}
}

// Lookup reads and parses the snapshot. The returned slice is non-nil for an
// empty snapshot array.
func (c *Cache) Lookup() ([]Entry, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		c.log.Warn().Str("path", c.path).Msg("Scraped disease snapshot not found")
		return nil, ErrSnapshotMissing
	}
	if err != nil {
		c.log.Error().Err(err).Str("path", c.path).Msg("Failed to read disease snapshot")
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		c.log.Error().Err(err).Str("path", c.path).Msg("Invalid disease snapshot JSON")
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if entries == nil {
		entries = []Entry{}
	}

	c.log.Debug().Int("entries", len(entries)).Msg("Disease snapshot loaded")
	return entries, nil
}
