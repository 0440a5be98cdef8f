package builder

import (
	"log/slog"

	"github.com/roach88/ordo/internal/listener"
	"github.com/roach88/ordo/internal/order"
)

// Option configures a Builder.
type Option func(*config)

type config struct {
	inferrer   listener.TypeInferrer
	symbols    listener.Symbols
	logger     *slog.Logger
	collection []order.Option
}

// WithInferrer replaces the default ReflectInferrer.
func WithInferrer(i listener.TypeInferrer) Option {
	return func(c *config) {
		c.inferrer = i
	}
}

// WithSymbols sets the table the default inferrer looks up Function and
// StaticMethod targets in. The builder never calls them.
func WithSymbols(s listener.Symbols) Option {
	return func(c *config) {
		c.symbols = s
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCollectionOptions passes options to the underlying order.Collection.
func WithCollectionOptions(opts ...order.Option) Option {
	return func(c *config) {
		c.collection = append(c.collection, opts...)
	}
}
