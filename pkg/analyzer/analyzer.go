package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/ccollicutt/barklog/pkg/config"
	"github.com/ccollicutt/barklog/pkg/events"
	"github.com/ccollicutt/barklog/pkg/violation"
)

// Analyzer splits events into calendar days and classifies each day.
type Analyzer struct {
	thresholds violation.Thresholds
	location   *time.Location

	// Options
	timeRange   *TimeRange
	dates       []string
	dateFilter  map[string]bool // nil means all days
	concurrency int
}

// AnalyzerOption configures analyzer behavior.
type AnalyzerOption func(*Analyzer)

// WithTimeRange limits analysis to events within the given time range.
func WithTimeRange(start, end time.Time) AnalyzerOption {
	return func(a *Analyzer) {
		a.timeRange = &TimeRange{Start: start, End: end}
	}
}

// WithDates limits analysis to the given calendar days (YYYY-MM-DD).
func WithDates(dates []string) AnalyzerOption {
	return func(a *Analyzer) {
		a.dates = append(a.dates, dates...)
	}
}

// WithThresholds overrides the configured thresholds.
func WithThresholds(t violation.Thresholds) AnalyzerOption {
	return func(a *Analyzer) {
		a.thresholds = t
	}
}

// WithConcurrency sets how many days are classified at once.
func WithConcurrency(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// NewAnalyzer creates a new analyzer from configuration.
func NewAnalyzer(cfg *config.Config, opts ...AnalyzerOption) (*Analyzer, error) {
	a := &Analyzer{
		thresholds:  cfg.Thresholds.Thresholds(),
		location:    cfg.Location(),
		concurrency: runtime.GOMAXPROCS(0),
	}

	for _, opt := range opts {
		opt(a)
	}

	if err := a.thresholds.Validate(); err != nil {
		return nil, err
	}

	if len(a.dates) > 0 {
		a.dateFilter = make(map[string]bool, len(a.dates))
		for _, d := range a.dates {
			if _, err := time.ParseInLocation(DateLayout, d, a.location); err != nil {
				return nil, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", d, err)
			}
			a.dateFilter[d] = true
		}
	}

	return a, nil
}

// Analyze drains source and returns the violations of every day it covers.
// Days are independent and are classified concurrently; results are ordered
// by date.
func (a *Analyzer) Analyze(ctx context.Context, source events.Source) (*AnalysisResult, error) {
	result := &AnalysisResult{
		Metadata: AnalysisMetadata{
			TimeRange:  a.timeRange,
			Thresholds: a.thresholds,
			Location:   a.location,
			StartTime:  time.Now(),
		},
	}

	byDate, err := a.collect(ctx, source, &result.Metadata)
	if err != nil {
		return nil, err
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)

	result.Days = make([]*DayResult, len(dates))
	for i, d := range dates {
		result.Days[i] = &DayResult{Date: d, Events: byDate[d]}
	}

	if err := a.classify(ctx, result.Days); err != nil {
		return nil, err
	}

	result.Metadata.EndTime = time.Now()
	return result, nil
}

// collect reads every event, applies the filters and groups by day.
func (a *Analyzer) collect(ctx context.Context, source events.Source, meta *AnalysisMetadata) (map[string][]events.Event, error) {
	byDate := make(map[string][]events.Event)
	sourcesSeen := make(map[string]bool)
	index := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ev, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading event source: %w", err)
		}

		if ev.Source != "" && !sourcesSeen[ev.Source] {
			sourcesSeen[ev.Source] = true
			meta.Sources = append(meta.Sources, ev.Source)
		}

		if ev.Timestamp.IsZero() {
			return nil, fmt.Errorf("%s:%d: %w", ev.Source, ev.LineNum, &violation.InvalidInputError{
				Field:  "timestamp",
				Index:  index,
				Reason: fmt.Sprintf("missing timestamp (id=%s)", ev.ID),
			})
		}
		index++

		if a.timeRange != nil && !a.timeRange.Contains(ev.Timestamp) {
			continue
		}

		date := ev.Timestamp.In(a.location).Format(DateLayout)
		if a.dateFilter != nil && !a.dateFilter[date] {
			continue
		}

		meta.EventsProcessed++
		byDate[date] = append(byDate[date], *ev)
	}

	for date, evs := range byDate {
		slices.SortStableFunc(evs, func(x, y events.Event) int {
			return x.Timestamp.Compare(y.Timestamp)
		})
		byDate[date] = evs
	}

	return byDate, nil
}

// classify runs violation detection for each day on a bounded set of
// workers. Each day is a separate, sequential detection call.
func (a *Analyzer) classify(ctx context.Context, days []*DayResult) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan *DayResult)
	errs := make([]error, len(days))
	indexOf := make(map[*DayResult]int, len(days))
	for i, d := range days {
		indexOf[d] = i
	}

	workers := min(a.concurrency, len(days))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for day := range jobs {
				res, err := violation.Detect(events.BarkEvents(day.Events), a.thresholds)
				if err != nil {
					errs[indexOf[day]] = fmt.Errorf("day %s: %w", day.Date, err)
					cancel()
					continue
				}
				day.Violations = res
			}
		}()
	}

	var ctxErr error
dispatch:
	for _, day := range days {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break dispatch
		case jobs <- day:
		}
	}
	close(jobs)
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}
	return ctxErr
}
