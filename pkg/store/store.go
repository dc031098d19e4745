// Package store persists classified days as JSON under a date-keyed
// directory tree:
//
//	<dir>/<YYYY-MM-DD>/violations.json
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/ccollicutt/barklog/pkg/violation"
)

const (
	recordFile = "violations.json"
	dateLayout = "2006-01-02"
)

// ErrNotFound is returned when no record exists for a date.
var ErrNotFound = errors.New("no record for date")

// DayRecord is the persisted form of one classified day.
type DayRecord struct {
	Date        string                `json:"date"`
	Thresholds  Thresholds            `json:"thresholds"`
	Events      []violation.BarkEvent `json:"events"`
	Violations  []violation.Violation `json:"violations"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Thresholds records the thresholds a day was classified with, as
// duration strings ("10s", "5m0s").
type Thresholds struct {
	ContinuousGap         string `json:"continuous_gap"`
	ContinuousMinDuration string `json:"continuous_min_duration"`
	SporadicGap           string `json:"sporadic_gap"`
	SporadicMinDuration   string `json:"sporadic_min_duration"`
}

// NewThresholds converts core thresholds to their persisted form.
func NewThresholds(t violation.Thresholds) Thresholds {
	return Thresholds{
		ContinuousGap:         t.ContinuousGap.String(),
		ContinuousMinDuration: t.ContinuousMinDuration.String(),
		SporadicGap:           t.SporadicGap.String(),
		SporadicMinDuration:   t.SporadicMinDuration.String(),
	}
}

// Store reads and writes day records under a root directory.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created on first Save.
func New(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("store directory is required")
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) recordPath(date string) string {
	return filepath.Join(s.dir, date, recordFile)
}

// Save writes rec, replacing any existing record for the same date. The
// write goes to a temp file in the same directory and is renamed into place,
// so readers never observe a partial record.
func (s *Store) Save(rec *DayRecord) error {
	if _, err := time.Parse(dateLayout, rec.Date); err != nil {
		return fmt.Errorf("invalid record date %q: %w", rec.Date, err)
	}

	dayDir := filepath.Join(s.dir, rec.Date)
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return fmt.Errorf("create day directory: %w", err)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(dayDir, "."+recordFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.recordPath(rec.Date)); err != nil {
		return fmt.Errorf("rename record: %w", err)
	}
	return nil
}

// Load reads the record for date. It returns an error wrapping ErrNotFound
// when the date has not been saved.
func (s *Store) Load(date string) (*DayRecord, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	data, err := os.ReadFile(s.recordPath(date))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", date, ErrNotFound)
		}
		return nil, fmt.Errorf("read record: %w", err)
	}

	var rec DayRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", date, err)
	}
	return &rec, nil
}

// Dates lists the stored dates, oldest first. A missing root directory
// yields an empty list.
func (s *Store) Dates() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list store: %w", err)
	}

	dates := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(dateLayout, e.Name()); err != nil {
			continue
		}
		if _, err := os.Stat(s.recordPath(e.Name())); err != nil {
			continue
		}
		dates = append(dates, e.Name())
	}
	slices.Sort(dates)
	return dates, nil
}
