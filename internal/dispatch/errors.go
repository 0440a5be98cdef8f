package dispatch

import (
	"errors"
	"fmt"

	"github.com/roach88/ordo/internal/event"
)

// ListenerError reports the listener that failed a dispatch.
type ListenerError struct {
	// Index is the listener's position among those yielded for the event.
	Index int

	// Type is the dispatched event's type.
	Type event.TypeID

	Err error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("listener %d for %s failed: %v", e.Index, e.Type, e.Err)
}

func (e *ListenerError) Unwrap() error {
	return e.Err
}

// LimitExceededError is returned when more listeners match an event than
// the dispatcher allows. No listener past the limit is invoked.
type LimitExceededError struct {
	Type  event.TypeID
	Limit int
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("more than %d listeners for %s", e.Limit, e.Type)
}

// IsListenerError returns true if err wraps a ListenerError.
func IsListenerError(err error) bool {
	var le *ListenerError
	return errors.As(err, &le)
}

// IsLimitError returns true if err wraps a LimitExceededError.
func IsLimitError(err error) bool {
	var le *LimitExceededError
	return errors.As(err, &le)
}
