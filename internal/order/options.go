package order

import "log/slog"

// Option configures a Collection.
type Option func(*config)

type config struct {
	clock  Sequencer
	ids    IDGenerator
	logger *slog.Logger
}

func defaultConfig() config {
	return config{
		clock:  NewClock(),
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
}

// WithClock sets the sequencer used to stamp insertions.
func WithClock(s Sequencer) Option {
	return func(c *config) {
		if s != nil {
			c.clock = s
		}
	}
}

// WithIDGenerator sets the generator used when no id is supplied.
func WithIDGenerator(g IDGenerator) Option {
	return func(c *config) {
		if g != nil {
			c.ids = g
		}
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
