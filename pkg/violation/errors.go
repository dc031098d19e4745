package violation

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput is the kind of every error returned by this package.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes an event or threshold that cannot be scanned.
// Index is the position of the offending event in the caller's slice, or -1
// for threshold errors.
type InvalidInputError struct {
	Field  string
	Index  int
	Reason string
}

func (e *InvalidInputError) Error() string {
	if e == nil {
		return ""
	}
	if e.Index >= 0 {
		return fmt.Sprintf("%s: events[%d].%s: %s", ErrInvalidInput, e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

func missingTimestamp(index int, id string) error {
	reason := "missing timestamp"
	if id != "" {
		reason = fmt.Sprintf("missing timestamp (id=%s)", id)
	}
	return &InvalidInputError{Field: "timestamp", Index: index, Reason: reason}
}

func invalidThreshold(field string, value time.Duration) error {
	return &InvalidInputError{
		Field:  field,
		Index:  -1,
		Reason: fmt.Sprintf("must be positive, got %s", value),
	}
}
