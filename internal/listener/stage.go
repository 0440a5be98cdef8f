package listener

import (
	"fmt"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
)

// Stage turns a target plus registration options into a Pending
// registration, inferring the event type when none is given.
//
// A pos of 0 means a priority registration; Before/After use pivot.
// A nil inferrer makes a missing type an error.
func Stage(t Target, pivot string, pos order.Position, inferrer TypeInferrer, opts ...RegisterOption) (Pending, error) {
	if t == nil {
		return Pending{}, fmt.Errorf("%w: nil target", ErrUnsupportedSignature)
	}
	r := newRegistration(opts)

	typ := r.typ
	if typ == "" {
		if inferrer == nil {
			return Pending{}, &InvalidTypeError{Target: t.Describe(), Err: fmt.Errorf("no type given and no inferrer configured")}
		}
		inferred, err := inferrer.InferEventType(t)
		if err != nil {
			return Pending{}, &InvalidTypeError{Target: t.Describe(), Err: err}
		}
		if inferred == "" {
			return Pending{}, &InvalidTypeError{Target: t.Describe()}
		}
		typ = inferred
	}

	id := r.id
	if id == "" {
		id = t.DefaultID()
	}

	cons := order.Priority(r.priority)
	if pos != 0 {
		cons = order.Constraint{Pivot: pivot, Position: pos}
	}

	return Pending{ID: id, Type: typ, Target: t, Constraint: cons}, nil
}

// StageService stages a service proxy. The type is mandatory: the service
// is not instantiated to inspect its method.
func StageService(service, method string, typ event.TypeID, pivot string, pos order.Position, opts ...RegisterOption) (Pending, error) {
	t := ServiceProxy{Service: service, Method: method}
	if typ == "" {
		return Pending{}, &InvalidTypeError{Target: t.Describe(), Err: fmt.Errorf("service targets require an explicit event type")}
	}
	return Stage(t, pivot, pos, nil, append(opts[:len(opts):len(opts)], WithType(typ))...)
}
