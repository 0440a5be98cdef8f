package listener

import (
	"log/slog"
	"reflect"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
)

// Option configures a Provider.
type Option func(*providerConfig)

type providerConfig struct {
	locator    ServiceLocator
	symbols    Symbols
	inferrer   TypeInferrer
	hierarchy  *event.Hierarchy
	logger     *slog.Logger
	collection []order.Option
	eventTypes []reflect.Type
}

// WithLocator sets the ServiceLocator used for service proxies.
func WithLocator(l ServiceLocator) Option {
	return func(c *providerConfig) {
		c.locator = l
	}
}

// WithSymbols sets the table resolving Function and StaticMethod targets.
func WithSymbols(s Symbols) Option {
	return func(c *providerConfig) {
		c.symbols = s
	}
}

// WithInferrer replaces the default ReflectInferrer.
func WithInferrer(i TypeInferrer) Option {
	return func(c *providerConfig) {
		c.inferrer = i
	}
}

// WithHierarchy sets the subtype hierarchy used for matching.
func WithHierarchy(h *event.Hierarchy) Option {
	return func(c *providerConfig) {
		if h != nil {
			c.hierarchy = h
		}
	}
}

// WithEventTypes learns each Go type into the hierarchy before any
// listener is registered. An interface becomes matchable under its Go name
// (e.g. "orders.Placed"), which is what AddListenerService needs for an
// interface event type; a struct declares its embedded structs as parents.
func WithEventTypes(types ...reflect.Type) Option {
	return func(c *providerConfig) {
		c.eventTypes = append(c.eventTypes, types...)
	}
}

// WithLogger sets the logger, also passed to the underlying collection.
func WithLogger(l *slog.Logger) Option {
	return func(c *providerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCollectionOptions passes options to the underlying order.Collection.
func WithCollectionOptions(opts ...order.Option) Option {
	return func(c *providerConfig) {
		c.collection = append(c.collection, opts...)
	}
}

// RegisterOption configures a single registration.
type RegisterOption func(*registration)

type registration struct {
	id       string
	priority int
	typ      event.TypeID
}

// WithID sets the listener id instead of deriving one from the target.
func WithID(id string) RegisterOption {
	return func(r *registration) {
		r.id = id
	}
}

// WithPriority sets the priority. Ignored by Before/After registrations.
func WithPriority(p int) RegisterOption {
	return func(r *registration) {
		r.priority = p
	}
}

// WithType sets the event type instead of inferring it.
func WithType(t event.TypeID) RegisterOption {
	return func(r *registration) {
		r.typ = t
	}
}

func newRegistration(opts []RegisterOption) registration {
	var r registration
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
