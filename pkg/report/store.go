package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// timestampFormat is the format used in report filenames.
const timestampFormat = "20060102-150405"

// Store handles persistence of analysis reports.
type Store struct {
	log       logrus.FieldLogger
	baseDir   string
	retention time.Duration
}

// NewStore creates a store rooted at baseDir. A retention of zero disables
// automatic cleanup on save.
func NewStore(log logrus.FieldLogger, baseDir string, retention time.Duration) *Store {
	return &Store{
		log:       log.WithField("component", "report-store"),
		baseDir:   baseDir,
		retention: retention,
	}
}

// Dir returns the report directory path.
func (s *Store) Dir() string {
	return s.baseDir
}

// Save persists an analysis report to disk.
// File format: {baseDir}/{timestamp}-{id}.json
func (s *Store) Save(report *AnalysisReport) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}

	timestamp := report.CreatedAt.Format(timestampFormat)
	filename := fmt.Sprintf("%s-%s.json", timestamp, report.ID)
	filePath := filepath.Join(s.baseDir, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"id":   report.ID,
		"file": filename,
	}).Debug("saved analysis report")

	if s.retention > 0 {
		if err := s.Cleanup(s.retention); err != nil {
			s.log.WithError(err).Warn("failed to cleanup old analysis reports")
		}
	}

	return nil
}

// Load retrieves a report by ID.
func (s *Store) Load(id string) (*AnalysisReport, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("report not found: %s", id)
		}

		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || !strings.Contains(name, id) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read report file: %w", err)
		}

		var report AnalysisReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}

		return &report, nil
	}

	return nil, fmt.Errorf("report not found: %s", id)
}

// List returns recent reports, newest first.
func (s *Store) List(limit int) ([]*AnalysisReport, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*AnalysisReport{}, nil
		}

		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var jsonFiles []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if name := entry.Name(); strings.HasSuffix(name, ".json") {
			jsonFiles = append(jsonFiles, name)
		}
	}

	// Filenames start with the timestamp, so reverse-lexical is newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(jsonFiles)))

	if limit > 0 && len(jsonFiles) > limit {
		jsonFiles = jsonFiles[:limit]
	}

	reports := make([]*AnalysisReport, 0, len(jsonFiles))

	for _, name := range jsonFiles {
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"file":  name,
				"error": err,
			}).Warn("failed to read report file, skipping")

			continue
		}

		var report AnalysisReport
		if err := json.Unmarshal(data, &report); err != nil {
			s.log.WithFields(logrus.Fields{
				"file":  name,
				"error": err,
			}).Warn("failed to unmarshal report, skipping")

			continue
		}

		reports = append(reports, &report)
	}

	return reports, nil
}

// Latest returns the most recent report.
func (s *Store) Latest() (*AnalysisReport, error) {
	reports, err := s.List(1)
	if err != nil {
		return nil, err
	}

	if len(reports) == 0 {
		return nil, fmt.Errorf("no reports found")
	}

	return reports[0], nil
}

// Cleanup removes reports older than the retention period.
func (s *Store) Cleanup(retention time.Duration) error {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to read reports directory: %w", err)
	}

	cutoff := time.Now().Add(-retention)

	var removed int

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".json") || len(name) < len(timestampFormat) {
			continue
		}

		fileTime, err := time.Parse(timestampFormat, name[:len(timestampFormat)])
		if err != nil {
			continue
		}

		if fileTime.Before(cutoff) {
			if err := os.Remove(filepath.Join(s.baseDir, name)); err != nil {
				s.log.WithFields(logrus.Fields{
					"file":  name,
					"error": err,
				}).Warn("failed to remove old report")

				continue
			}

			removed++
		}
	}

	if removed > 0 {
		s.log.WithFields(logrus.Fields{
			"removed":   removed,
			"retention": retention.String(),
		}).Info("cleaned up old analysis reports")
	}

	return nil
}
