package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})
	if f == nil {
		t.Fatal("NewJSONFormatter() returned nil")
	}
	if f.Name() != "json" {
		t.Errorf("Name() = %q, want %q", f.Name(), "json")
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Report
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if parsed.Summary.ContinuousViolations != 1 {
		t.Errorf("ContinuousViolations = %d, want 1", parsed.Summary.ContinuousViolations)
	}
	if len(parsed.Days) != 2 {
		t.Fatalf("len(Days) = %d, want 2", len(parsed.Days))
	}
	if parsed.Days[0].Sporadic[0].ViolationDurationMinutes != 5 {
		t.Errorf("ViolationDurationMinutes = %v, want 5", parsed.Days[0].Sporadic[0].ViolationDurationMinutes)
	}

	for _, key := range []string{`"violation_trigger_timestamp"`, `"bark_event_ids"`, `"days_with_violations"`} {
		if !strings.Contains(buf.String(), key) {
			t.Errorf("Output missing key %s", key)
		}
	}
}

func TestJSONFormatter_Format_EmptyListsNotNull(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), `"continuous": null`) {
		t.Error("empty violation lists should encode as []")
	}
}

func TestJSONFormatter_Format_Quiet(t *testing.T) {
	f := NewJSONFormatter(FormatOptions{Quiet: true})

	var buf bytes.Buffer
	if err := f.Format(context.Background(), createTestReport(), &buf); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var parsed Summary
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if parsed.DaysAnalyzed != 2 {
		t.Errorf("DaysAnalyzed = %d, want 2", parsed.DaysAnalyzed)
	}
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "text", false},
		{"text", "text", false},
		{"json", "json", false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.name, FormatOptions{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewFormatter() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && f.Name() != tt.want {
				t.Errorf("Name() = %q, want %q", f.Name(), tt.want)
			}
		})
	}
}
