// Package violation classifies bark events into bylaw violations.
//
// Two rule sets are evaluated independently over the same timeline. A
// continuous violation is sustained barking with short gaps; a sporadic
// violation is intermittent barking whose span accumulates across longer
// gaps. The package is a pure batch computation: it performs no I/O and
// keeps no state between calls.
package violation

import "time"

// Default thresholds observed in municipal bylaws. They are exposed for the
// configuration layer; Detect never falls back to them.
const (
	DefaultContinuousGap         = 10 * time.Second
	DefaultContinuousMinDuration = 5 * time.Minute
	DefaultSporadicGap           = 5 * time.Minute
	DefaultSporadicMinDuration   = 15 * time.Minute
)

// Type distinguishes the rule that produced a violation.
type Type string

const (
	TypeContinuous Type = "continuous"
	TypeSporadic   Type = "sporadic"
)

// BarkEvent is a single detected vocalization. ID is only used for
// back-reference; Timestamp is the sole ordering key.
type BarkEvent struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// Thresholds holds the session-breaking gap and minimum session span for
// each rule.
type Thresholds struct {
	ContinuousGap         time.Duration `json:"continuous_gap"`
	ContinuousMinDuration time.Duration `json:"continuous_min_duration"`
	SporadicGap           time.Duration `json:"sporadic_gap"`
	SporadicMinDuration   time.Duration `json:"sporadic_min_duration"`
}

// DefaultThresholds returns the commonly observed bylaw thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ContinuousGap:         DefaultContinuousGap,
		ContinuousMinDuration: DefaultContinuousMinDuration,
		SporadicGap:           DefaultSporadicGap,
		SporadicMinDuration:   DefaultSporadicMinDuration,
	}
}

// Validate reports the first non-positive threshold.
func (t Thresholds) Validate() error {
	checks := []struct {
		field string
		value time.Duration
	}{
		{"continuous_gap", t.ContinuousGap},
		{"continuous_min_duration", t.ContinuousMinDuration},
		{"sporadic_gap", t.SporadicGap},
		{"sporadic_min_duration", t.SporadicMinDuration},
	}
	for _, c := range checks {
		if c.value <= 0 {
			return invalidThreshold(c.field, c.value)
		}
	}
	return nil
}

// Violation is one qualifying session. It is never modified after Detect
// returns it.
type Violation struct {
	// Type is the rule that produced the violation.
	Type Type `json:"type"`

	// StartTimestamp is the first event of the session.
	StartTimestamp time.Time `json:"start_timestamp"`

	// ViolationTriggerTimestamp is the event at which the minimum duration
	// was first reached.
	ViolationTriggerTimestamp time.Time `json:"violation_trigger_timestamp"`

	// EndTimestamp is the last event of the session.
	EndTimestamp time.Time `json:"end_timestamp"`

	// DurationMinutes is the total incident span, end minus start.
	DurationMinutes float64 `json:"duration_minutes"`

	// ViolationDurationMinutes is the confirmed span beyond the trigger.
	ViolationDurationMinutes float64 `json:"violation_duration_minutes"`

	// BarkEventIDs lists every event in the session, in timeline order.
	BarkEventIDs []string `json:"bark_event_ids"`
}

// Duration returns the total incident span.
func (v *Violation) Duration() time.Duration {
	return v.EndTimestamp.Sub(v.StartTimestamp)
}

// extend moves the end of the violation to ts and recomputes both spans.
func (v *Violation) extend(id string, ts time.Time) {
	v.EndTimestamp = ts
	v.BarkEventIDs = append(v.BarkEventIDs, id)
	v.recompute()
}

func (v *Violation) recompute() {
	v.DurationMinutes = v.EndTimestamp.Sub(v.StartTimestamp).Minutes()
	v.ViolationDurationMinutes = v.EndTimestamp.Sub(v.ViolationTriggerTimestamp).Minutes()
}
