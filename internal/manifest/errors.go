package manifest

import (
	"errors"
	"fmt"

	cueerrors "cuelang.org/go/cue/errors"
)

// DeclError reports an invalid or unloadable declaration.
type DeclError struct {
	// ID is the declaration's id, when known.
	ID string

	// Field is the offending declaration field. Errors reading the source
	// use "path", "files", "load", "cue" or "yaml".
	Field string

	Message string
	Pos     Position

	// Err is the underlying error, e.g. a duplicate id from the builder.
	Err error
}

func (e *DeclError) Error() string {
	msg := e.Message
	if e.ID != "" {
		msg = fmt.Sprintf("listener %s: %s", e.ID, msg)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Field, msg)
	}
	return fmt.Sprintf("%s: %s", e.Field, msg)
}

func (e *DeclError) Unwrap() error {
	return e.Err
}

// IsDeclError returns true if err wraps a DeclError.
func IsDeclError(err error) bool {
	var de *DeclError
	return errors.As(err, &de)
}

// formatCUEError keeps the first CUE error with its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &DeclError{Field: "cue", Message: err.Error(), Err: err}
	}
	first := errs[0]
	de := &DeclError{Field: "cue", Message: first.Error(), Err: err}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		de.Pos = fromToken(positions[0])
	}
	return de
}
