package listener

import (
	"fmt"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/ir"
	"github.com/roach88/ordo/internal/order"
)

// NewFromSet builds a live provider from a compiled registration set.
//
// The set's digest is verified and its order is kept exactly: entries are
// re-registered with strictly descending priorities, so no relative
// constraint needs resolving again. Function and StaticMethod targets need
// WithSymbols, service targets need WithLocator.
func NewFromSet(set *ir.RegistrationSet, opts ...Option) (*Provider, error) {
	if set == nil {
		return nil, fmt.Errorf("nil registration set")
	}
	if err := set.Verify(); err != nil {
		return nil, err
	}

	p := NewProvider(opts...)
	pending := make([]Pending, len(set.Registrations))
	n := len(set.Registrations)
	for i, reg := range set.Registrations {
		t, err := FromIR(reg.Target)
		if err != nil {
			return nil, fmt.Errorf("registration %s: %w", reg.ID, err)
		}
		if _, ok := t.(ServiceProxy); ok && p.locator == nil {
			return nil, fmt.Errorf("registration %s: %w", reg.ID, ErrMissingLocator)
		}
		if reg.Type == "" {
			return nil, &InvalidTypeError{Target: t.Describe()}
		}
		pending[i] = Pending{
			ID:         reg.ID,
			Type:       event.TypeID(reg.Type),
			Target:     t,
			Constraint: order.Priority(n - i),
		}
	}

	if _, err := p.addAll(pending); err != nil {
		return nil, err
	}
	return p, nil
}
