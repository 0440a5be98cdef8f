package order

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrDuplicateID is returned when an id is already present.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnresolvableOrder is returned when relative constraints form a cycle.
	ErrUnresolvableOrder = errors.New("unresolvable order")
)

// DuplicateIDError reports an insertion under an id that is already taken.
// The existing entry is left untouched.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate id %q", e.ID)
}

// Is allows errors.Is to match DuplicateIDError with ErrDuplicateID.
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID
}

// UnresolvableOrderError reports relative constraints that cannot all hold.
type UnresolvableOrderError struct {
	// IDs lists every id taking part in a cycle, sorted.
	IDs []string

	// Cycles holds one closed path per cycle, e.g. ["a", "b", "a"].
	Cycles [][]string

	// Unplaced lists every id that could not be ordered, sorted. This is
	// IDs plus entries pinned (directly or not) to a cycle member.
	Unplaced []string
}

func (e *UnresolvableOrderError) Error() string {
	paths := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		paths[i] = strings.Join(c, " → ")
	}
	return fmt.Sprintf("unresolvable order: cycle among %v: %s", e.IDs, strings.Join(paths, "; "))
}

// Is allows errors.Is to match UnresolvableOrderError with ErrUnresolvableOrder.
func (e *UnresolvableOrderError) Is(target error) bool {
	return target == ErrUnresolvableOrder
}

// IsCycleError returns true if err is, or wraps, an UnresolvableOrderError.
func IsCycleError(err error) bool {
	var ue *UnresolvableOrderError
	return errors.As(err, &ue)
}

// IsDuplicateError returns true if err is, or wraps, a DuplicateIDError.
func IsDuplicateError(err error) bool {
	var de *DuplicateIDError
	return errors.As(err, &de)
}
