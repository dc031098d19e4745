// Package analyzer turns a stream of bark events into per-day violation
// results.
package analyzer

import (
	"time"

	"github.com/ccollicutt/barklog/pkg/events"
	"github.com/ccollicutt/barklog/pkg/violation"
)

// DateLayout formats the calendar-day keys used throughout barklog.
const DateLayout = "2006-01-02"

// TimeRange defines an inclusive time window for filtering events.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether ts lies within the range.
func (r *TimeRange) Contains(ts time.Time) bool {
	return !ts.Before(r.Start) && !ts.After(r.End)
}

// DayResult holds the events and violations of one calendar day.
type DayResult struct {
	// Date is the calendar day in the analyzer's location, as YYYY-MM-DD.
	Date string

	// Events are the day's events in timestamp order.
	Events []events.Event

	// Violations are the sealed violations of both rules.
	Violations *violation.Result
}

// HasViolations returns true if either rule produced a violation.
func (d *DayResult) HasViolations() bool {
	return d.Violations != nil && d.Violations.Count() > 0
}

// AnalysisResult contains the complete analysis output.
type AnalysisResult struct {
	// Days contains one entry per calendar day with events, oldest first.
	Days []*DayResult

	// Metadata provides context about the analysis.
	Metadata AnalysisMetadata
}

// AnalysisMetadata provides context about the analysis run.
type AnalysisMetadata struct {
	// Sources lists the event files that were read.
	Sources []string

	// TimeRange is the time filter applied, if any.
	TimeRange *TimeRange

	// Thresholds are the bylaw thresholds the days were classified with.
	Thresholds violation.Thresholds

	// Location is the zone used to split events into days.
	Location *time.Location

	// StartTime is when analysis began.
	StartTime time.Time

	// EndTime is when analysis completed.
	EndTime time.Time

	// EventsProcessed is the number of events that passed the filters.
	EventsProcessed int
}

// TotalViolations returns the number of violations across all days.
func (r *AnalysisResult) TotalViolations() int {
	total := 0
	for _, day := range r.Days {
		if day.Violations != nil {
			total += day.Violations.Count()
		}
	}
	return total
}

// CountByType returns the number of violations of type t across all days.
func (r *AnalysisResult) CountByType(t violation.Type) int {
	count := 0
	for _, day := range r.Days {
		if day.Violations == nil {
			continue
		}
		switch t {
		case violation.TypeContinuous:
			count += len(day.Violations.Continuous)
		case violation.TypeSporadic:
			count += len(day.Violations.Sporadic)
		}
	}
	return count
}

// DaysWithViolations returns the count of days with at least one violation.
func (r *AnalysisResult) DaysWithViolations() int {
	count := 0
	for _, day := range r.Days {
		if day.HasViolations() {
			count++
		}
	}
	return count
}
