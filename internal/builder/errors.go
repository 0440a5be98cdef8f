package builder

import "errors"

// ErrNonSerializableTarget is returned when a Go func is registered on a
// Builder.
var ErrNonSerializableTarget = errors.New("target cannot be serialized")
