// Package metrics exposes analysis results as Prometheus metrics, either
// scraped over HTTP or written for the node exporter's textfile collector.
package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ccollicutt/barklog/pkg/output"
	"github.com/ccollicutt/barklog/pkg/violation"
)

const namespace = "barklog"

// Recorder holds barklog's metrics on a private registry.
type Recorder struct {
	registry *prometheus.Registry
	mu       sync.Mutex

	analyses        prometheus.Counter
	daysAnalyzed    prometheus.Gauge
	daysViolating   prometheus.Gauge
	eventsProcessed prometheus.Gauge
	violations      *prometheus.GaugeVec
	minutes         *prometheus.GaugeVec
	lastAnalysis    prometheus.Gauge
}

// NewRecorder creates a recorder and registers its metrics.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.analyses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analyses_total",
		Help:      "Number of reports observed",
	})
	r.daysAnalyzed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "days_analyzed",
		Help:      "Calendar days in the last observed report",
	})
	r.daysViolating = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "days_with_violations",
		Help:      "Calendar days with at least one violation in the last observed report",
	})
	r.eventsProcessed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_processed",
		Help:      "Bark events classified in the last observed report",
	})
	r.violations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "violations",
		Help:      "Violations in the last observed report by type",
	}, []string{"type"})
	r.minutes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "violation_minutes",
		Help:      "Total violation duration in minutes in the last observed report by type",
	}, []string{"type"})
	r.lastAnalysis = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_analysis_timestamp_seconds",
		Help:      "Unix timestamp of the last observed report",
	})

	r.registry.MustRegister(
		r.analyses, r.daysAnalyzed, r.daysViolating, r.eventsProcessed,
		r.violations, r.minutes, r.lastAnalysis,
	)

	for _, t := range []violation.Type{violation.TypeContinuous, violation.TypeSporadic} {
		r.violations.WithLabelValues(string(t)).Set(0)
		r.minutes.WithLabelValues(string(t)).Set(0)
	}

	return r
}

// Registry returns the recorder's registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe replaces the report gauges with report's totals.
func (r *Recorder) Observe(report *output.Report) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var contMinutes, sporMinutes float64
	for _, day := range report.Days {
		for _, v := range day.Continuous {
			contMinutes += v.DurationMinutes
		}
		for _, v := range day.Sporadic {
			sporMinutes += v.DurationMinutes
		}
	}

	r.analyses.Inc()
	r.daysAnalyzed.Set(float64(report.Summary.DaysAnalyzed))
	r.daysViolating.Set(float64(report.Summary.DaysWithViolations))
	r.eventsProcessed.Set(float64(report.Summary.EventsProcessed))
	r.violations.WithLabelValues(string(violation.TypeContinuous)).Set(float64(report.Summary.ContinuousViolations))
	r.violations.WithLabelValues(string(violation.TypeSporadic)).Set(float64(report.Summary.SporadicViolations))
	r.minutes.WithLabelValues(string(violation.TypeContinuous)).Set(contMinutes)
	r.minutes.WithLabelValues(string(violation.TypeSporadic)).Set(sporMinutes)

	analyzedAt := report.Metadata.AnalyzedAt
	if analyzedAt.IsZero() {
		analyzedAt = time.Now()
	}
	r.lastAnalysis.Set(float64(analyzedAt.Unix()))
}

// WriteTextfile writes the current metrics in the text exposition format.
// The write is atomic, as the textfile collector requires.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Handler returns an HTTP handler serving the recorder's metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
