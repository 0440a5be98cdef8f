package listener

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrInvalidType is returned when a listener's event type cannot be
	// determined and none was supplied.
	ErrInvalidType = errors.New("invalid listener type")

	// ErrMissingLocator is returned when a service proxy is registered on a
	// provider without a ServiceLocator.
	ErrMissingLocator = errors.New("service locator not configured")

	// ErrUnsupportedSignature is returned for funcs and methods that do not
	// have one of the supported listener shapes.
	ErrUnsupportedSignature = errors.New("unsupported listener signature")

	// ErrSymbolNotFound is returned when a Function or StaticMethod name is
	// missing from the Symbols table.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// InvalidTypeError reports a registration whose event type could not be
// determined. Target describes the listener so the failing registration can
// be found.
type InvalidTypeError struct {
	Target string
	Err    error
}

func (e *InvalidTypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot determine event type of %s: %v", e.Target, e.Err)
	}
	return fmt.Sprintf("cannot determine event type of %s", e.Target)
}

func (e *InvalidTypeError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match InvalidTypeError with ErrInvalidType.
func (e *InvalidTypeError) Is(target error) bool {
	return target == ErrInvalidType
}

// BindError reports a listener whose target could not be turned into a
// callable at dispatch time, e.g. a service the locator does not know.
// It is returned when the yielded listener is invoked.
type BindError struct {
	ID     string
	Target string
	Err    error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding listener %s (%s): %v", e.ID, e.Target, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}
