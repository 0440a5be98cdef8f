package dispatch

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/ordo/internal/event"
)

// Provider yields the listeners for an event. listener.Provider
// implements it.
type Provider interface {
	GetListenersForEvent(ev any) (iter.Seq[event.Listener], error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithMaxListeners caps the listeners invoked per event. Zero means no
// limit.
func WithMaxListeners(n int) Option {
	return func(d *Dispatcher) {
		d.maxListeners = n
	}
}

// Dispatcher invokes matching listeners in order.
//
// Thread-safety: Dispatch may be called concurrently if the provider
// allows it; the dispatcher holds no mutable state.
type Dispatcher struct {
	provider     Provider
	logger       *slog.Logger
	maxListeners int
}

// New creates a dispatcher over p.
func New(p Provider, opts ...Option) *Dispatcher {
	d := &Dispatcher{provider: p, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch delivers ev and returns it, possibly modified by listeners.
//
// Errors:
//   - the provider's error, e.g. an unresolvable listener order
//   - *ListenerError for the first failing listener
//   - *LimitExceededError when the listener cap is hit
//   - ctx.Err() when ctx is cancelled between listeners
func (d *Dispatcher) Dispatch(ctx context.Context, ev any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	typ := event.TypeOf(ev)

	listeners, err := d.provider.GetListenersForEvent(ev)
	if err != nil {
		return ev, fmt.Errorf("dispatch %s: %w", typ, err)
	}

	stoppable, _ := ev.(event.StoppableEvent)
	if stoppable != nil && stoppable.IsPropagationStopped() {
		d.logger.Debug("event already stopped", "type", typ)
		return ev, nil
	}

	invoked := 0
	for l := range listeners {
		if err := ctx.Err(); err != nil {
			return ev, err
		}
		if d.maxListeners > 0 && invoked >= d.maxListeners {
			d.logger.Warn("listener limit exceeded", "type", typ, "limit", d.maxListeners)
			return ev, &LimitExceededError{Type: typ, Limit: d.maxListeners}
		}

		if err := l(ctx, ev); err != nil {
			d.logger.Debug("listener failed", "type", typ, "index", invoked, "error", err)
			return ev, &ListenerError{Index: invoked, Type: typ, Err: err}
		}
		invoked++

		if stoppable != nil && stoppable.IsPropagationStopped() {
			d.logger.Debug("propagation stopped", "type", typ, "after", invoked)
			break
		}
	}

	d.logger.Debug("event dispatched", "type", typ, "listeners", invoked)
	return ev, nil
}
