package violation

// Result holds the sealed violations of both rules for one batch of events.
type Result struct {
	Continuous []Violation `json:"continuous"`
	Sporadic   []Violation `json:"sporadic"`
}

// All returns continuous and sporadic violations in a single slice.
func (r *Result) All() []Violation {
	return Aggregate(r.Continuous, r.Sporadic)
}

// Count returns the number of violations of both types.
func (r *Result) Count() int {
	return len(r.Continuous) + len(r.Sporadic)
}

// Detect classifies a complete batch of events, typically one calendar day.
// Thresholds and every event timestamp are validated before any scanning;
// on error no violations are returned. Identical inputs always produce
// identical results.
func Detect(events []BarkEvent, thresholds Thresholds) (*Result, error) {
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}

	sorted, err := Prepare(events)
	if err != nil {
		return nil, err
	}

	return &Result{
		Continuous: NewContinuousScanner(thresholds).Scan(sorted),
		Sporadic:   NewSporadicScanner(thresholds).Scan(sorted),
	}, nil
}

// Aggregate concatenates violations of both types, continuous first. Events
// shared between a continuous and a sporadic violation are left in both.
func Aggregate(continuous, sporadic []Violation) []Violation {
	all := make([]Violation, 0, len(continuous)+len(sporadic))
	all = append(all, continuous...)
	all = append(all, sporadic...)
	return all
}
