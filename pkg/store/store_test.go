package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ccollicutt/barklog/pkg/violation"
)

func testRecord(date string) *DayRecord {
	base := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return &DayRecord{
		Date:       date,
		Thresholds: NewThresholds(violation.DefaultThresholds()),
		Events: []violation.BarkEvent{
			{ID: "e1", Timestamp: base},
			{ID: "e2", Timestamp: base.Add(5 * time.Minute)},
		},
		Violations: []violation.Violation{{
			Type:                      violation.TypeContinuous,
			StartTimestamp:            base,
			ViolationTriggerTimestamp: base.Add(5 * time.Minute),
			EndTimestamp:              base.Add(5 * time.Minute),
			DurationMinutes:           5,
			BarkEventIDs:              []string{"e1", "e2"},
		}},
		GeneratedAt: base.Add(time.Hour),
	}
}

func TestNew_EmptyDir(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Error("New() expected error for empty directory")
	}
}

func TestStore_SaveLoad(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rec := testRecord("2024-06-01")
	if err := s.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(s.Dir(), "2024-06-01", "violations.json")); err != nil {
		t.Fatalf("record file not written: %v", err)
	}

	got, err := s.Load("2024-06-01")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Events) != 2 || len(got.Violations) != 1 {
		t.Errorf("got %d events, %d violations, want 2, 1", len(got.Events), len(got.Violations))
	}
	if got.Thresholds.ContinuousGap != "10s" {
		t.Errorf("ContinuousGap = %q, want 10s", got.Thresholds.ContinuousGap)
	}
	if !got.Violations[0].EndTimestamp.Equal(rec.Violations[0].EndTimestamp) {
		t.Errorf("EndTimestamp = %v, want %v", got.Violations[0].EndTimestamp, rec.Violations[0].EndTimestamp)
	}
}

func TestStore_SaveOverwrites(t *testing.T) {
	s, _ := New(t.TempDir())

	if err := s.Save(testRecord("2024-06-01")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	rec := testRecord("2024-06-01")
	rec.Violations = []violation.Violation{}
	if err := s.Save(rec); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.Load("2024-06-01")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(got.Violations) != 0 {
		t.Errorf("len(Violations) = %d, want 0 after overwrite", len(got.Violations))
	}

	entries, _ := os.ReadDir(filepath.Join(s.Dir(), "2024-06-01"))
	if len(entries) != 1 {
		t.Errorf("day directory has %d entries, want 1 (temp files left behind?)", len(entries))
	}
}

func TestStore_SaveInvalidDate(t *testing.T) {
	s, _ := New(t.TempDir())
	if err := s.Save(testRecord("../escape")); err == nil {
		t.Error("Save() expected error for invalid date")
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	s, _ := New(t.TempDir())
	_, err := s.Load("2024-06-01")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestStore_LoadCorrupt(t *testing.T) {
	s, _ := New(t.TempDir())
	dir := filepath.Join(s.Dir(), "2024-06-01")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "violations.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := s.Load("2024-06-01")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want parse error", err)
	}
}

func TestStore_Dates(t *testing.T) {
	s, _ := New(t.TempDir())

	for _, d := range []string{"2024-06-03", "2024-06-01", "2024-06-02"} {
		if err := s.Save(testRecord(d)); err != nil {
			t.Fatalf("Save(%s) error = %v", d, err)
		}
	}
	// Noise that must be ignored.
	_ = os.MkdirAll(filepath.Join(s.Dir(), "not-a-date"), 0o755)
	_ = os.MkdirAll(filepath.Join(s.Dir(), "2024-06-04"), 0o755)

	dates, err := s.Dates()
	if err != nil {
		t.Fatalf("Dates() error = %v", err)
	}
	want := []string{"2024-06-01", "2024-06-02", "2024-06-03"}
	if len(dates) != len(want) {
		t.Fatalf("Dates() = %v, want %v", dates, want)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("Dates()[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

func TestStore_DatesMissingRoot(t *testing.T) {
	s, _ := New(filepath.Join(t.TempDir(), "absent"))
	dates, err := s.Dates()
	if err != nil {
		t.Fatalf("Dates() error = %v", err)
	}
	if len(dates) != 0 {
		t.Errorf("Dates() = %v, want empty", dates)
	}
}
