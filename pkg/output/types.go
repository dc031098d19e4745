// Package output provides formatting and output generation for analysis results.
package output

import (
	"time"

	"github.com/ccollicutt/barklog/pkg/analyzer"
	"github.com/ccollicutt/barklog/pkg/store"
	"github.com/ccollicutt/barklog/pkg/violation"
)

// Report is the complete analysis output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Days contains one entry per analyzed calendar day, oldest first.
	Days []DayReport `json:"days"`

	// Metadata provides context about the analysis.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	DaysAnalyzed         int `json:"days_analyzed"`
	DaysWithViolations   int `json:"days_with_violations"`
	ContinuousViolations int `json:"continuous_violations"`
	SporadicViolations   int `json:"sporadic_violations"`
	EventsProcessed      int `json:"events_processed"`
}

// TotalViolations returns the number of violations of both types.
func (s Summary) TotalViolations() int {
	return s.ContinuousViolations + s.SporadicViolations
}

// DayReport is the rendered result of one calendar day.
type DayReport struct {
	Date       string                `json:"date"`
	EventCount int                   `json:"event_count"`
	Continuous []violation.Violation `json:"continuous"`
	Sporadic   []violation.Violation `json:"sporadic"`
}

// HasViolations returns true if the day has a violation of either type.
func (d DayReport) HasViolations() bool {
	return len(d.Continuous)+len(d.Sporadic) > 0
}

// Metadata provides context about the analysis run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the event files that were analyzed.
	Sources []string `json:"sources"`

	// Thresholds are the bylaw thresholds in effect.
	Thresholds store.Thresholds `json:"thresholds"`

	// Timezone names the zone days were split in.
	Timezone string `json:"timezone,omitempty"`

	// TimeRange is the time filter that was applied, if any.
	TimeRange *TimeRange `json:"time_range,omitempty"`

	// AnalyzedAt is when the analysis was performed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the analysis took.
	Duration time.Duration `json:"duration_ns"`
}

// TimeRange represents a time window for filtering.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewReport creates a Report from analysis results.
func NewReport(result *analyzer.AnalysisResult, configFile string) *Report {
	meta := result.Metadata
	report := &Report{
		Days: make([]DayReport, 0, len(result.Days)),
		Metadata: Metadata{
			ConfigFile: configFile,
			Sources:    meta.Sources,
			Thresholds: store.NewThresholds(meta.Thresholds),
			AnalyzedAt: meta.EndTime,
			Duration:   meta.EndTime.Sub(meta.StartTime),
		},
		Summary: Summary{
			DaysAnalyzed:         len(result.Days),
			DaysWithViolations:   result.DaysWithViolations(),
			ContinuousViolations: result.CountByType(violation.TypeContinuous),
			SporadicViolations:   result.CountByType(violation.TypeSporadic),
			EventsProcessed:      meta.EventsProcessed,
		},
	}

	if meta.Location != nil {
		report.Metadata.Timezone = meta.Location.String()
	}
	if meta.Sources == nil {
		report.Metadata.Sources = []string{}
	}

	if meta.TimeRange != nil {
		report.Metadata.TimeRange = &TimeRange{
			Start: meta.TimeRange.Start,
			End:   meta.TimeRange.End,
		}
	}

	for _, day := range result.Days {
		dr := DayReport{
			Date:       day.Date,
			EventCount: len(day.Events),
			Continuous: []violation.Violation{},
			Sporadic:   []violation.Violation{},
		}
		if day.Violations != nil {
			dr.Continuous = day.Violations.Continuous
			dr.Sporadic = day.Violations.Sporadic
		}
		report.Days = append(report.Days, dr)
	}

	return report
}

// NewDayRecords converts analysis results into records for the store.
func NewDayRecords(result *analyzer.AnalysisResult) []*store.DayRecord {
	thresholds := store.NewThresholds(result.Metadata.Thresholds)
	records := make([]*store.DayRecord, 0, len(result.Days))
	for _, day := range result.Days {
		rec := &store.DayRecord{
			Date:        day.Date,
			Thresholds:  thresholds,
			Events:      make([]violation.BarkEvent, 0, len(day.Events)),
			Violations:  []violation.Violation{},
			GeneratedAt: result.Metadata.EndTime,
		}
		for _, ev := range day.Events {
			rec.Events = append(rec.Events, ev.BarkEvent())
		}
		if day.Violations != nil {
			rec.Violations = day.Violations.All()
		}
		records = append(records, rec)
	}
	return records
}

// NewStoredReport builds a report from stored day records, one day per
// record in the order given.
func NewStoredReport(records ...*store.DayRecord) *Report {
	report := &Report{
		Days:     make([]DayReport, 0, len(records)),
		Metadata: Metadata{Sources: []string{}},
	}

	for _, rec := range records {
		day := DayReport{
			Date:       rec.Date,
			EventCount: len(rec.Events),
			Continuous: []violation.Violation{},
			Sporadic:   []violation.Violation{},
		}
		for _, v := range rec.Violations {
			switch v.Type {
			case violation.TypeContinuous:
				day.Continuous = append(day.Continuous, v)
			case violation.TypeSporadic:
				day.Sporadic = append(day.Sporadic, v)
			}
		}

		report.Summary.DaysAnalyzed++
		report.Summary.ContinuousViolations += len(day.Continuous)
		report.Summary.SporadicViolations += len(day.Sporadic)
		report.Summary.EventsProcessed += len(rec.Events)
		if day.HasViolations() {
			report.Summary.DaysWithViolations++
		}

		// The newest record describes the report.
		if rec.GeneratedAt.After(report.Metadata.AnalyzedAt) {
			report.Metadata.AnalyzedAt = rec.GeneratedAt
			report.Metadata.Thresholds = rec.Thresholds
		}

		report.Days = append(report.Days, day)
	}

	return report
}

// HasViolations returns true if any violations were detected.
func (r *Report) HasViolations() bool {
	return r.Summary.TotalViolations() > 0
}
