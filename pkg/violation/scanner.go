package violation

import "time"

// scanState is the position of a scan within the current session.
type scanState int

const (
	// stateIdle means no session has more than one event yet.
	stateIdle scanState = iota
	// stateOpen means the session is growing but has not reached MinDuration.
	stateOpen
	// stateViolating means the session owns an open violation.
	stateViolating
)

// SessionScanner finds sessions of events whose consecutive gaps stay below
// Gap and whose span reaches MinDuration. Continuous and sporadic detection
// are two instances of it.
type SessionScanner struct {
	Type        Type
	Gap         time.Duration
	MinDuration time.Duration
}

// NewContinuousScanner returns the scanner for the continuous rule.
func NewContinuousScanner(t Thresholds) SessionScanner {
	return SessionScanner{Type: TypeContinuous, Gap: t.ContinuousGap, MinDuration: t.ContinuousMinDuration}
}

// NewSporadicScanner returns the scanner for the sporadic rule.
func NewSporadicScanner(t Thresholds) SessionScanner {
	return SessionScanner{Type: TypeSporadic, Gap: t.SporadicGap, MinDuration: t.SporadicMinDuration}
}

// Scan runs one forward pass over events, which must already be sorted by
// timestamp (see Prepare). A gap equal to Gap ends the session and a span
// equal to MinDuration qualifies.
func (s SessionScanner) Scan(events []BarkEvent) []Violation {
	violations := make([]Violation, 0)
	if len(events) < 2 {
		return violations
	}

	state := stateIdle
	sessionStart := 0
	open := -1 // index into violations of the session's violation

	for i := 1; i < len(events); i++ {
		prev, curr := events[i-1], events[i]

		if curr.Timestamp.Sub(prev.Timestamp) >= s.Gap {
			// Seals whatever the previous session produced.
			state = stateIdle
			sessionStart = i
			open = -1
			continue
		}

		span := curr.Timestamp.Sub(events[sessionStart].Timestamp)
		if span < s.MinDuration {
			state = stateOpen
			continue
		}

		switch state {
		case stateViolating:
			violations[open].extend(curr.ID, curr.Timestamp)
		default:
			violations = append(violations, s.newViolation(events[sessionStart:i+1]))
			open = len(violations) - 1
			state = stateViolating
		}
	}

	return violations
}

// newViolation opens a violation covering session, whose last event is the
// trigger.
func (s SessionScanner) newViolation(session []BarkEvent) Violation {
	ids := make([]string, len(session))
	for i, e := range session {
		ids[i] = e.ID
	}

	trigger := session[len(session)-1].Timestamp
	v := Violation{
		Type:                      s.Type,
		StartTimestamp:            session[0].Timestamp,
		ViolationTriggerTimestamp: trigger,
		EndTimestamp:              trigger,
		BarkEventIDs:              ids,
	}
	v.recompute()
	return v
}
