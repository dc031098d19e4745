package events

import (
	"fmt"
	"regexp"
	"time"
)

// TimestampExtractor extracts and parses timestamps from text lines.
type TimestampExtractor struct {
	pattern  *regexp.Regexp
	layout   string
	location *time.Location
}

// NewTimestampExtractor creates an extractor. Timestamps without a zone in
// layout are interpreted in loc; a nil loc means UTC.
func NewTimestampExtractor(pattern *regexp.Regexp, layout string, loc *time.Location) *TimestampExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &TimestampExtractor{
		pattern:  pattern,
		layout:   layout,
		location: loc,
	}
}

// Extract parses the first capture group of the pattern as a timestamp.
func (e *TimestampExtractor) Extract(line string) (time.Time, error) {
	matches := e.pattern.FindStringSubmatch(line)
	if len(matches) < 2 {
		return time.Time{}, fmt.Errorf("timestamp pattern did not match")
	}

	ts, err := time.ParseInLocation(e.layout, matches[1], e.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", matches[1], err)
	}

	return ts, nil
}
