package listener

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
)

// Provider holds listeners and yields the ones matching an event, in
// resolved order.
//
// Thread-safety: registration and dispatch may be called concurrently; the
// underlying collection serializes them.
type Provider struct {
	listeners *order.Collection[Entry]
	locator   ServiceLocator
	symbols   Symbols
	inferrer  TypeInferrer
	hierarchy *event.Hierarchy
	logger    *slog.Logger
}

// NewProvider creates an empty provider.
//
// Without WithInferrer, a ReflectInferrer over the configured Symbols and
// Hierarchy is used.
func NewProvider(opts ...Option) *Provider {
	cfg := providerConfig{
		hierarchy: event.NewHierarchy(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	for _, t := range cfg.eventTypes {
		cfg.hierarchy.LearnType(t)
	}
	if cfg.inferrer == nil {
		cfg.inferrer = ReflectInferrer{Symbols: cfg.symbols, Hierarchy: cfg.hierarchy}
	}

	collOpts := append([]order.Option{order.WithLogger(cfg.logger)}, cfg.collection...)
	return &Provider{
		listeners: order.New[Entry](collOpts...),
		locator:   cfg.locator,
		symbols:   cfg.symbols,
		inferrer:  cfg.inferrer,
		hierarchy: cfg.hierarchy,
		logger:    cfg.logger,
	}
}

// Hierarchy returns the subtype hierarchy used for matching, so callers
// can declare relations between TypeIDs.
func (p *Provider) Hierarchy() *event.Hierarchy {
	return p.hierarchy
}

// AddListener registers a target with a priority (default 0).
func (p *Provider) AddListener(t Target, opts ...RegisterOption) (string, error) {
	return p.stageAndAdd(t, "", 0, opts)
}

// AddListenerBefore registers a target immediately before pivot.
func (p *Provider) AddListenerBefore(pivot string, t Target, opts ...RegisterOption) (string, error) {
	return p.stageAndAdd(t, pivot, order.Before, opts)
}

// AddListenerAfter registers a target immediately after pivot.
func (p *Provider) AddListenerAfter(pivot string, t Target, opts ...RegisterOption) (string, error) {
	return p.stageAndAdd(t, pivot, order.After, opts)
}

// AddListenerService registers a method on a named service. The event type
// is mandatory: the service is not instantiated to inspect it. When typ
// names an interface, events implementing it match only once the interface
// is known through WithEventTypes or Hierarchy().DeclareInterface.
// The default id is "service-method".
func (p *Provider) AddListenerService(service, method string, typ event.TypeID, opts ...RegisterOption) (string, error) {
	return p.addService(service, method, typ, "", 0, opts)
}

// AddListenerServiceBefore registers a service method immediately before pivot.
func (p *Provider) AddListenerServiceBefore(pivot, service, method string, typ event.TypeID, opts ...RegisterOption) (string, error) {
	return p.addService(service, method, typ, pivot, order.Before, opts)
}

// AddListenerServiceAfter registers a service method immediately after pivot.
func (p *Provider) AddListenerServiceAfter(pivot, service, method string, typ event.TypeID, opts ...RegisterOption) (string, error) {
	return p.addService(service, method, typ, pivot, order.After, opts)
}

func (p *Provider) addService(service, method string, typ event.TypeID, pivot string, pos order.Position, opts []RegisterOption) (string, error) {
	if p.locator == nil {
		return "", ErrMissingLocator
	}
	pending, err := StageService(service, method, typ, pivot, pos, opts...)
	if err != nil {
		return "", err
	}
	return p.add(pending)
}

func (p *Provider) stageAndAdd(t Target, pivot string, pos order.Position, opts []RegisterOption) (string, error) {
	if _, ok := t.(ServiceProxy); ok && p.locator == nil {
		return "", ErrMissingLocator
	}
	pending, err := Stage(t, pivot, pos, p.inferrer, opts...)
	if err != nil {
		return "", err
	}
	return p.add(pending)
}

func (p *Provider) add(pending Pending) (string, error) {
	ids, err := p.addAll([]Pending{pending})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// addAll stores staged registrations atomically.
func (p *Provider) addAll(pending []Pending) ([]string, error) {
	batch := make([]order.Insertion[Entry], len(pending))
	for i, pd := range pending {
		entry, err := p.entryFor(pd)
		if err != nil {
			return nil, err
		}
		batch[i] = order.Insertion[Entry]{ID: pd.ID, Value: entry, Constraint: pd.Constraint}
	}

	ids, err := p.listeners.AddAll(batch)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		p.logger.Debug("listener registered",
			"id", id,
			"type", pending[i].Type,
			"target", pending[i].Target.Describe(),
			"constraint", pending[i].Constraint.String(),
		)
	}
	return ids, nil
}

func (p *Provider) entryFor(pd Pending) (Entry, error) {
	entry := Entry{Type: pd.Type, Target: pd.Target}
	if d, ok := pd.Target.(Direct); ok {
		fn, err := adapt(d.Fn)
		if err != nil {
			return Entry{}, fmt.Errorf("registering %s: %w", d.Describe(), err)
		}
		entry.direct = fn
	}
	return entry, nil
}

// AddSubscriber registers the listener methods of a service type.
//
// sample is a value of the service's Go type (a typed nil pointer is
// enough); service is the name the locator knows it by. If sample
// implements Subscriber its RegisterListeners hook runs first; then every
// exported method named On<Something> that the hook did not claim is
// registered with the type of its event parameter. On any error nothing is
// registered.
func (p *Provider) AddSubscriber(sample any, service string) error {
	if p.locator == nil {
		return ErrMissingLocator
	}
	pending, err := discoverSubscriber(sample, service, p.hierarchy)
	if err != nil {
		return err
	}
	_, err = p.addAll(pending)
	return err
}

// GetListenersForEvent returns the listeners matching ev, in resolved
// order. The sequence is restartable; each pass resolves service proxies
// afresh.
//
// The only error is an unresolvable order.
func (p *Provider) GetListenersForEvent(ev any) (iter.Seq[event.Listener], error) {
	entries, err := p.listeners.Entries()
	if err != nil {
		return nil, err
	}
	return func(yield func(event.Listener) bool) {
		for _, e := range entries {
			if !p.hierarchy.Matches(ev, e.Value.Type) {
				continue
			}
			if !yield(p.bind(e.ID, e.Value)) {
				return
			}
		}
	}, nil
}

// MatchingIDs returns the ids of the listeners matching ev, in order.
func (p *Provider) MatchingIDs(ev any) ([]string, error) {
	entries, err := p.listeners.Entries()
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if p.hierarchy.Matches(ev, e.Value.Type) {
			ids = append(ids, e.ID)
		}
	}
	return ids, nil
}

// Listeners describes every registered listener in resolved order.
func (p *Provider) Listeners() ([]Info, error) {
	entries, err := p.listeners.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]Info, len(entries))
	for i, e := range entries {
		out[i] = Info{
			ID:         e.ID,
			Type:       e.Value.Type,
			Target:     e.Value.Target.Describe(),
			Constraint: e.Constraint,
		}
	}
	return out, nil
}

// bind produces the callable for an entry. Failures are deferred into the
// returned listener so that dispatch itself never fails.
func (p *Provider) bind(id string, e Entry) event.Listener {
	var (
		fn  event.Listener
		err error
	)
	switch t := e.Target.(type) {
	case Direct:
		return e.direct
	case Function:
		fn, err = p.bindSymbol(t.Name)
	case StaticMethod:
		fn, err = p.bindSymbol(t.key())
	case ServiceProxy:
		fn, err = p.bindService(t)
	default:
		err = fmt.Errorf("unknown target %T", e.Target)
	}
	if err == nil {
		return fn
	}

	bindErr := &BindError{ID: id, Target: e.Target.Describe(), Err: err}
	p.logger.Warn("listener binding failed", "id", id, "error", err)
	return failing(bindErr)
}

func (p *Provider) bindSymbol(name string) (event.Listener, error) {
	if p.symbols == nil {
		return nil, ErrSymbolNotFound
	}
	fn, ok := p.symbols.Lookup(name)
	if !ok {
		return nil, ErrSymbolNotFound
	}
	return adapt(fn)
}

func (p *Provider) bindService(t ServiceProxy) (event.Listener, error) {
	if p.locator == nil {
		return nil, ErrMissingLocator
	}
	svc, err := p.locator.Get(t.Service)
	if err != nil {
		return nil, err
	}
	return bindMethod(svc, t.Method)
}
