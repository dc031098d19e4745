package output

import (
	"testing"
	"time"

	"github.com/ccollicutt/barklog/pkg/analyzer"
	"github.com/ccollicutt/barklog/pkg/events"
	"github.com/ccollicutt/barklog/pkg/store"
	"github.com/ccollicutt/barklog/pkg/violation"
)

func testAnalysis() *analyzer.AnalysisResult {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	v := violation.Violation{Type: violation.TypeContinuous, BarkEventIDs: []string{"a", "b"}}

	return &analyzer.AnalysisResult{
		Days: []*analyzer.DayResult{
			{
				Date:   "2024-06-01",
				Events: []events.Event{{ID: "a", Timestamp: base}, {ID: "b", Timestamp: base.Add(time.Second)}},
				Violations: &violation.Result{
					Continuous: []violation.Violation{v},
					Sporadic:   []violation.Violation{},
				},
			},
			{
				Date:       "2024-06-02",
				Events:     []events.Event{{ID: "c", Timestamp: base.Add(24 * time.Hour)}},
				Violations: &violation.Result{Continuous: []violation.Violation{}, Sporadic: []violation.Violation{}},
			},
		},
		Metadata: analyzer.AnalysisMetadata{
			Sources:         []string{"events.json"},
			Thresholds:      violation.DefaultThresholds(),
			Location:        time.UTC,
			StartTime:       base,
			EndTime:         base.Add(2 * time.Second),
			EventsProcessed: 3,
		},
	}
}

func TestNewReport(t *testing.T) {
	report := NewReport(testAnalysis(), "barklog.yaml")

	want := Summary{
		DaysAnalyzed:         2,
		DaysWithViolations:   1,
		ContinuousViolations: 1,
		SporadicViolations:   0,
		EventsProcessed:      3,
	}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
	if !report.HasViolations() {
		t.Error("HasViolations() = false, want true")
	}
	if report.Metadata.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", report.Metadata.Duration)
	}
	if report.Metadata.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", report.Metadata.Timezone)
	}
	if report.Days[1].EventCount != 1 || report.Days[1].HasViolations() {
		t.Errorf("Days[1] = %+v, want 1 event and no violations", report.Days[1])
	}
}

func TestNewDayRecords(t *testing.T) {
	records := NewDayRecords(testAnalysis())
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if len(records[0].Events) != 2 || records[0].Events[1].ID != "b" {
		t.Errorf("Events = %+v", records[0].Events)
	}
	if len(records[0].Violations) != 1 {
		t.Errorf("len(Violations) = %d, want 1", len(records[0].Violations))
	}
	if records[1].Violations == nil {
		t.Error("Violations should be empty, not nil")
	}
	if records[0].Thresholds.SporadicMinDuration != "15m0s" {
		t.Errorf("SporadicMinDuration = %q, want 15m0s", records[0].Thresholds.SporadicMinDuration)
	}
}

func TestNewStoredReport(t *testing.T) {
	older := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)
	rec1 := &store.DayRecord{
		Date:   "2024-06-01",
		Events: make([]violation.BarkEvent, 4),
		Violations: []violation.Violation{
			{Type: violation.TypeContinuous},
			{Type: violation.TypeSporadic},
			{Type: violation.TypeSporadic},
		},
		Thresholds:  store.Thresholds{ContinuousGap: "10s"},
		GeneratedAt: older,
	}
	rec2 := &store.DayRecord{
		Date:        "2024-06-02",
		Events:      make([]violation.BarkEvent, 2),
		Thresholds:  store.Thresholds{ContinuousGap: "20s"},
		GeneratedAt: older.Add(time.Hour),
	}

	report := NewStoredReport(rec1, rec2)
	want := Summary{
		DaysAnalyzed:         2,
		DaysWithViolations:   1,
		ContinuousViolations: 1,
		SporadicViolations:   2,
		EventsProcessed:      6,
	}
	if report.Summary != want {
		t.Errorf("Summary = %+v, want %+v", report.Summary, want)
	}
	if report.Metadata.Thresholds.ContinuousGap != "20s" {
		t.Errorf("Thresholds taken from %q, want newest record", report.Metadata.Thresholds.ContinuousGap)
	}
	if len(report.Days[1].Continuous) != 0 || report.Days[1].Continuous == nil {
		t.Error("day without violations should have empty, non-nil lists")
	}
}

func TestNewStoredReport_Empty(t *testing.T) {
	report := NewStoredReport()
	if report.HasViolations() || len(report.Days) != 0 {
		t.Errorf("NewStoredReport() = %+v, want empty", report)
	}
}
