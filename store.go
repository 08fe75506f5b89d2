package webaudit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Store persists one JSON report per project under a directory.
type Store struct {
	Dir string
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

var slugStripPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slug derives the report file name from a project URL.
func Slug(projectURL string) string {
	s := strings.ToLower(projectURL)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = slugStripPattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "projet"
	}
	return s
}

// Save writes the report as indented JSON and returns its path.
func (s *Store) Save(report *AuditReport) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o750); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}
	path := filepath.Join(s.Dir, Slug(report.ProjectURL)+".json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o640); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

// Load reads one report by slug.
func (s *Store) Load(slug string) (*AuditReport, error) {
	data, err := os.ReadFile(filepath.Join(s.Dir, slug+".json")) // #nosec G304 - path comes from trusted configuration
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report AuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", slug, err)
	}
	return &report, nil
}

// LoadAll reads every stored report, sorted by project URL.
// Unreadable or malformed files are skipped, not fatal.
func (s *Store) LoadAll() ([]*AuditReport, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reports dir: %w", err)
	}

	var reports []*AuditReport
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		report, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		reports = append(reports, report)
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ProjectURL < reports[j].ProjectURL
	})
	return reports, nil
}
