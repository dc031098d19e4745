package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/ccollicutt/barklog/pkg/violation"
)

const clockLayout = "15:04:05.000"

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	s := report.Summary
	_, err := fmt.Fprintf(w, "barklog: %d days analyzed, %d with violations, %d continuous, %d sporadic\n",
		s.DaysAnalyzed, s.DaysWithViolations, s.ContinuousViolations, s.SporadicViolations)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== barklog Violation Report ===")
	fmt.Fprintln(w)

	if len(report.Days) == 0 {
		fmt.Fprintln(w, "No bark events in range")
		fmt.Fprintln(w)
	}

	for _, day := range report.Days {
		if err := f.formatDay(day, w); err != nil {
			return err
		}
	}

	s := report.Summary
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d days analyzed, %d days with violations, %d continuous, %d sporadic\n",
		s.DaysAnalyzed, s.DaysWithViolations, s.ContinuousViolations, s.SporadicViolations)

	if f.opts.Verbose {
		m := report.Metadata
		fmt.Fprintf(w, "Events processed: %d\n", s.EventsProcessed)
		if len(m.Sources) > 0 {
			fmt.Fprintf(w, "Sources: %s\n", strings.Join(m.Sources, ", "))
		}
		fmt.Fprintf(w, "Thresholds: continuous gap %s min %s, sporadic gap %s min %s\n",
			m.Thresholds.ContinuousGap, m.Thresholds.ContinuousMinDuration,
			m.Thresholds.SporadicGap, m.Thresholds.SporadicMinDuration)
		if m.Timezone != "" {
			fmt.Fprintf(w, "Timezone: %s\n", m.Timezone)
		}
		fmt.Fprintf(w, "Duration: %s\n", m.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatDay(day DayReport, w io.Writer) error {
	fmt.Fprintf(w, "[%s] %d bark events\n", day.Date, day.EventCount)

	if !day.HasViolations() {
		fmt.Fprintln(w, "  No violations")
		fmt.Fprintln(w)
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Type", "Start", "Trigger", "End", "Duration (min)", "Violating (min)", "Events")

	all := violation.Aggregate(day.Continuous, day.Sporadic)
	for _, v := range all {
		if err := table.Append(
			strings.ToUpper(string(v.Type)),
			v.StartTimestamp.Format(clockLayout),
			v.ViolationTriggerTimestamp.Format(clockLayout),
			v.EndTimestamp.Format(clockLayout),
			fmt.Sprintf("%.2f", v.DurationMinutes),
			fmt.Sprintf("%.2f", v.ViolationDurationMinutes),
			fmt.Sprintf("%d", len(v.BarkEventIDs)),
		); err != nil {
			return fmt.Errorf("render day %s: %w", day.Date, err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("render day %s: %w", day.Date, err)
	}

	if f.opts.Verbose {
		for i, v := range all {
			fmt.Fprintf(w, "  #%d %s: %s\n", i+1, v.Type, strings.Join(v.BarkEventIDs, ", "))
		}
	}

	fmt.Fprintln(w)
	return nil
}
