package violation

import (
	"slices"
)

// Prepare validates events and returns a copy sorted by timestamp. The sort
// is stable, so events sharing a timestamp keep their input order. Duplicate
// timestamps are retained. The caller's slice is not modified.
func Prepare(events []BarkEvent) ([]BarkEvent, error) {
	for i := range events {
		if events[i].Timestamp.IsZero() {
			return nil, missingTimestamp(i, events[i].ID)
		}
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b BarkEvent) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return sorted, nil
}
