// Package events reads bark events produced by the audio classification
// pipeline and streams them in timestamp order.
package events

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/ccollicutt/barklog/pkg/violation"
)

// Event is a bark event together with where it was read from.
type Event struct {
	// ID is the stable identifier assigned by the classifier.
	ID string `json:"id"`

	// Timestamp is when the bark occurred. Zero means the record carried no
	// usable timestamp.
	Timestamp time.Time `json:"timestamp"`

	// Confidence is the classifier score, already filtered upstream.
	Confidence float64 `json:"confidence,omitempty"`

	// Source is the file the event came from.
	Source string `json:"-"`

	// LineNum is the 1-based line or record index in Source.
	LineNum int `json:"-"`
}

// BarkEvent returns the part of the event the violation core consumes.
func (e *Event) BarkEvent() violation.BarkEvent {
	return violation.BarkEvent{ID: e.ID, Timestamp: e.Timestamp}
}

// Source provides an iterator over bark events.
// Implementations are used sequentially, never concurrently.
type Source interface {
	// Next returns the next event, or io.EOF when the source is exhausted.
	Next(ctx context.Context) (*Event, error)

	// Close releases any resources held by the source.
	Close() error
}

// Collect drains src and returns every event it yields.
func Collect(ctx context.Context, src Source) ([]Event, error) {
	var out []Event
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
}

// BarkEvents converts events for the violation core, preserving order.
func BarkEvents(evs []Event) []violation.BarkEvent {
	out := make([]violation.BarkEvent, len(evs))
	for i := range evs {
		out[i] = evs[i].BarkEvent()
	}
	return out
}
