package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// jsonRecord is one element of a persisted events file. Older recordings
// carry separate date and time fields instead of a timestamp.
type jsonRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Date       string    `json:"date,omitempty"`
	Time       string    `json:"time,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
}

// Layouts accepted for the legacy date and time fields.
const (
	legacyDateLayout = "2006-01-02"
	legacyTimeLayout = "15:04:05.999999999"
)

// JSONSource reads events files written by the recording pipeline: a JSON
// array of {"id", "timestamp", "confidence"} objects. Each file is loaded
// whole on first use, which is fine for one day of events.
type JSONSource struct {
	files         []string
	minConfidence float64
	location      *time.Location

	pending   []Event
	fileIndex int
}

// NewJSONSource creates a Source over the given files. Events scored below
// minConfidence are dropped. loc is used for legacy date/time fields; nil
// means UTC.
func NewJSONSource(files []string, minConfidence float64, loc *time.Location) *JSONSource {
	if loc == nil {
		loc = time.UTC
	}
	return &JSONSource{
		files:         files,
		minConfidence: minConfidence,
		location:      loc,
	}
}

// Next returns the next event in file order, or io.EOF.
func (s *JSONSource) Next(ctx context.Context) (*Event, error) {
	for len(s.pending) == 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.fileIndex >= len(s.files) {
			return nil, io.EOF
		}
		path := s.files[s.fileIndex]
		s.fileIndex++

		evs, err := s.load(path)
		if err != nil {
			return nil, err
		}
		s.pending = evs
	}

	ev := s.pending[0]
	s.pending = s.pending[1:]
	return &ev, nil
}

// Close releases resources.
func (s *JSONSource) Close() error {
	s.pending = nil
	return nil
}

func (s *JSONSource) load(path string) ([]Event, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("reading event file %s: %w", path, err)
	}

	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing event file %s: %w", path, err)
	}

	evs := make([]Event, 0, len(records))
	for i, rec := range records {
		if rec.Confidence < s.minConfidence {
			continue
		}

		ts := rec.Timestamp
		if ts.IsZero() && rec.Date != "" && rec.Time != "" {
			ts, err = s.legacyTimestamp(rec.Date, rec.Time)
			if err != nil {
				return nil, fmt.Errorf("%s: record %d: %w", path, i+1, err)
			}
		}

		evs = append(evs, Event{
			ID:         rec.ID,
			Timestamp:  ts,
			Confidence: rec.Confidence,
			Source:     path,
			LineNum:    i + 1,
		})
	}

	return evs, nil
}

func (s *JSONSource) legacyTimestamp(date, clock string) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	ts, err := time.ParseInLocation(legacyDateLayout+" "+legacyTimeLayout, value, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date/time %q: %w", value, err)
	}
	return ts, nil
}
