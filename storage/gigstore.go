package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fiverr-scraper/models"
	"fiverr-scraper/utils"
)

// GigStore persists one JSON file per gig under a per-keyword directory.
// File names combine gig ID and seller, so re-scraping the same gig
// overwrites its previous record and distinct gigs never collide.
type GigStore struct {
	root   string
	logger *utils.Logger
}

// NewGigStore creates a store rooted at dir. The directory tree is created
// lazily on first save.
func NewGigStore(root string, logger *utils.Logger) *GigStore {
	return &GigStore{root: root, logger: logger}
}

// Root returns the directory all keyword subdirectories live under.
func (s *GigStore) Root() string {
	return s.root
}

// KeywordDir returns the directory records for the given keyword are saved
// to, with the keyword sanitized into a safe path segment.
func (s *GigStore) KeywordDir(keyword string) string {
	return filepath.Join(s.root, SanitizeName(keyword))
}

// Save writes the record as pretty-printed JSON and returns the file path.
// A record for the same gig ID and seller replaces the previous file.
func (s *GigStore) Save(keyword string, rec *models.GigRecord) (string, error) {
	dir := s.KeywordDir(keyword)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("store: create keyword dir: %w", err)
	}

	name := fmt.Sprintf("gig_%d_%s.json", rec.ID, SanitizeName(rec.Seller))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("store: encode gig %d: %w", rec.ID, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("store: write %s: %w", path, err)
	}

	s.logger.Debug("[store] saved %s", path)
	return path, nil
}

// LoadAll reads every gig record file in dir, in name order. Files that
// fail to parse as a valid record are skipped and counted, not fatal; a
// missing or unreadable directory is an error.
func (s *GigStore) LoadAll(dir string) ([]*models.GigRecord, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("store: read dir %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasPrefix(name, "gig_") || !strings.HasSuffix(name, ".json") {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var records []*models.GigRecord
	skipped := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn("[store] skipping unreadable %s: %v", path, err)
			skipped++
			continue
		}
		rec := &models.GigRecord{}
		if err := json.Unmarshal(data, rec); err != nil {
			s.logger.Warn("[store] skipping unparsable %s: %v", path, err)
			skipped++
			continue
		}
		if !rec.Valid() {
			s.logger.Warn("[store] skipping %s: missing gig id or url", path)
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}
