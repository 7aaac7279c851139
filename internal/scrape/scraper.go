// Package scrape fetches disease reference entries from a health topics page
// and writes the JSON snapshot served by the disease cache.
package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"

	"github.com/brightward/patientd/internal/disease"
	"github.com/brightward/patientd/internal/metrics"
)

// descriptionLimit truncates topic descriptions to keep entries short.
const descriptionLimit = 200

const noDescription = "No description available."

// Scraper scrapes the configured health topics index.
type Scraper struct {
	cfg        Config
	log        zerolog.Logger
	httpClient *http.Client
}

// New returns a scraper for the given config.
func New(cfg Config, logger zerolog.Logger) *Scraper {
	return &Scraper{
		cfg: cfg,
		log: logger,
		httpClient: &http.Client{
			Timeout: cfg.FetchTimeout(),
		},
	}
}

// Run fetches the topics index, scrapes up to EntryLimit entries and writes
// the snapshot. Per-entry failures are logged and skipped; the run only fails
// when the index itself cannot be fetched or the snapshot cannot be written.
// Returns the number of entries written.
func (s *Scraper) Run(ctx context.Context) (int, error) {
	s.log.Info().Str("url", s.cfg.SourceURL).Msg("Starting disease reference scrape")

	doc, err := s.fetchDocument(ctx, s.cfg.SourceURL, "topics_fetch")
	if err != nil {
		return 0, fmt.Errorf("fetch topics page: %w", err)
	}

	entries := s.extractEntries(ctx, doc)

	if err := s.writeSnapshot(entries); err != nil {
		return 0, fmt.Errorf("write snapshot: %w", err)
	}

	s.log.Info().
		Int("entries", len(entries)).
		Str("path", s.cfg.SnapshotPath).
		Msg("Disease reference scrape completed")

	return len(entries), nil
}

// fetchDocument fetches url and parses it as HTML.
func (s *Scraper) fetchDocument(ctx context.Context, url string, operation string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	fetchStart := time.Now()
	resp, err := s.httpClient.Do(req)
	fetchDuration := time.Since(fetchStart)

	if err != nil {
		metrics.RecordScrapeFetch(operation, "error", fetchDuration)
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.RecordScrapeFetch(operation, "error", fetchDuration)
		return nil, fmt.Errorf("source returned status %d for %s", resp.StatusCode, url)
	}

	metrics.RecordScrapeFetch(operation, "success", fetchDuration)

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return doc, nil
}

// extractEntries walks the topic links on the index page and fetches a short
// description for each, warn-and-continue on per-topic failures.
func (s *Scraper) extractEntries(ctx context.Context, doc *goquery.Document) []disease.Entry {
	entries := []disease.Entry{}

	doc.Find("div.list-view--item a.link-container").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(entries) >= s.cfg.EntryLimit {
			return false
		}
		if ctx.Err() != nil {
			return false
		}

		name := strings.TrimSpace(sel.Text())
		href, ok := sel.Attr("href")
		if name == "" || !ok || href == "" {
			return true
		}
		// Skip "See all"-style navigation pseudo-entries.
		if strings.HasPrefix(name, "See all") || strings.HasPrefix(name, "More") || strings.HasPrefix(name, "View all") {
			return true
		}

		fullURL := href
		if !strings.HasPrefix(href, "http") {
			fullURL = strings.TrimRight(baseOf(s.cfg.SourceURL), "/") + href
		}

		entry := disease.Entry{
			Disease:     name,
			Description: noDescription,
			Source:      s.cfg.SourceName,
			URL:         fullURL,
		}

		description, err := s.fetchDescription(ctx, fullURL)
		if err != nil {
			s.log.Warn().Err(err).Str("disease", name).Msg("Failed to fetch disease description")
		} else {
			entry.Description = description
		}

		entries = append(entries, entry)
		return true
	})

	return entries
}

// fetchDescription fetches a topic page and extracts its lead content block.
func (s *Scraper) fetchDescription(ctx context.Context, url string) (string, error) {
	doc, err := s.fetchDocument(ctx, url, "detail_fetch")
	if err != nil {
		return "", err
	}

	block := doc.Find("div.sf-content-block").First()
	if block.Length() == 0 {
		return noDescription, nil
	}

	text := strings.TrimSpace(block.Text())
	if text == "" {
		return noDescription, nil
	}
	if runes := []rune(text); len(runes) > descriptionLimit {
		text = string(runes[:descriptionLimit]) + "..."
	}
	return text, nil
}

// writeSnapshot writes entries atomically via a temp file rename.
func (s *Scraper) writeSnapshot(entries []disease.Entry) error {
	dir := filepath.Dir(s.cfg.SnapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal entries: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "scraped_diseases-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}

	if err := os.Rename(tmpName, s.cfg.SnapshotPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// baseOf returns the scheme://host part of rawURL, used to resolve relative
// topic links.
func baseOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return rawURL
	}
	return u.Scheme + "://" + u.Host
}
