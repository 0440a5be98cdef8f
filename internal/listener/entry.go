package listener

import (
	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
)

// Entry is the payload stored per listener id.
type Entry struct {
	Type   event.TypeID
	Target Target

	// direct is the adapted func for Direct targets, built once at
	// registration.
	direct event.Listener
}

// Pending is a listener staged for registration: everything the ordering
// engine needs except the generated id.
type Pending struct {
	ID         string
	Type       event.TypeID
	Target     Target
	Constraint order.Constraint
}

// Info describes a registered listener in resolved order.
type Info struct {
	ID         string
	Type       event.TypeID
	Target     string
	Constraint order.Constraint
}
