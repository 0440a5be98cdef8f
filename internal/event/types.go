package event

import (
	"context"
	"reflect"
)

// TypeID names an event's nominal type.
type TypeID string

// Typed is implemented by events that carry an explicit type tag.
type Typed interface {
	EventType() TypeID
}

// StoppableEvent is implemented by events that can halt delivery to the
// listeners that follow the current one.
type StoppableEvent interface {
	IsPropagationStopped() bool
}

// Listener is the invocation target yielded for a matching event.
type Listener func(ctx context.Context, ev any) error

var typedType = reflect.TypeOf((*Typed)(nil)).Elem()

// TypeOf returns the TypeID of an event value.
// Returns "" for a nil value.
func TypeOf(ev any) TypeID {
	if ev == nil {
		return ""
	}
	if t, ok := ev.(Typed); ok {
		return t.EventType()
	}
	return TypeIDFor(reflect.TypeOf(ev))
}

// TypeIDFor names a Go type. Pointer types are named after their element so
// that *Dog and Dog share one TypeID.
func TypeIDFor(t reflect.Type) TypeID {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return TypeID(t.String())
}

// selfTyped reports whether values of t name themselves via Typed.
// Such types are not learned structurally; their tag is authoritative.
func selfTyped(t reflect.Type) bool {
	return t.Implements(typedType) || reflect.PointerTo(t).Implements(typedType)
}
