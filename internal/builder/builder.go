package builder

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/ir"
	"github.com/roach88/ordo/internal/listener"
	"github.com/roach88/ordo/internal/order"
)

// record is the payload stored per registration id.
type record struct {
	typ    event.TypeID
	target ir.Target
}

// Builder collects serializable registrations.
//
// Thread-safety: safe for concurrent use; the underlying collection
// serializes access.
type Builder struct {
	regs     *order.Collection[record]
	inferrer listener.TypeInferrer
	logger   *slog.Logger
}

// New creates an empty builder.
//
// Without WithInferrer, event types are inferred as listener.Provider does:
// a ReflectInferrer over the symbols given with WithSymbols. Function and
// static method targets missing from the symbols need WithType.
func New(opts ...Option) *Builder {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.inferrer == nil {
		cfg.inferrer = listener.ReflectInferrer{Symbols: cfg.symbols}
	}
	collOpts := append([]order.Option{order.WithLogger(cfg.logger)}, cfg.collection...)
	return &Builder{
		regs:     order.New[record](collOpts...),
		inferrer: cfg.inferrer,
		logger:   cfg.logger,
	}
}

// AddListener records a target with a priority (default 0).
func (b *Builder) AddListener(t listener.Target, opts ...listener.RegisterOption) (string, error) {
	return b.stageAndAdd(t, "", 0, opts)
}

// AddListenerBefore records a target immediately before pivot.
func (b *Builder) AddListenerBefore(pivot string, t listener.Target, opts ...listener.RegisterOption) (string, error) {
	return b.stageAndAdd(t, pivot, order.Before, opts)
}

// AddListenerAfter records a target immediately after pivot.
func (b *Builder) AddListenerAfter(pivot string, t listener.Target, opts ...listener.RegisterOption) (string, error) {
	return b.stageAndAdd(t, pivot, order.After, opts)
}

// AddListenerService records a service method. No locator is needed.
func (b *Builder) AddListenerService(service, method string, typ event.TypeID, opts ...listener.RegisterOption) (string, error) {
	return b.addService(service, method, typ, "", 0, opts)
}

// AddListenerServiceBefore records a service method immediately before pivot.
func (b *Builder) AddListenerServiceBefore(pivot, service, method string, typ event.TypeID, opts ...listener.RegisterOption) (string, error) {
	return b.addService(service, method, typ, pivot, order.Before, opts)
}

// AddListenerServiceAfter records a service method immediately after pivot.
func (b *Builder) AddListenerServiceAfter(pivot, service, method string, typ event.TypeID, opts ...listener.RegisterOption) (string, error) {
	return b.addService(service, method, typ, pivot, order.After, opts)
}

// AddSubscriber records the listener methods of a subscriber type, as
// listener.Provider.AddSubscriber does. On any error nothing is recorded.
func (b *Builder) AddSubscriber(sample any, service string) error {
	pending, err := listener.DiscoverSubscriber(sample, service)
	if err != nil {
		return err
	}
	_, err = b.addAll(pending)
	return err
}

func (b *Builder) addService(service, method string, typ event.TypeID, pivot string, pos order.Position, opts []listener.RegisterOption) (string, error) {
	pending, err := listener.StageService(service, method, typ, pivot, pos, opts...)
	if err != nil {
		return "", err
	}
	return b.add(pending)
}

func (b *Builder) stageAndAdd(t listener.Target, pivot string, pos order.Position, opts []listener.RegisterOption) (string, error) {
	if _, ok := t.(listener.Direct); ok {
		return "", fmt.Errorf("%w: %s", ErrNonSerializableTarget, t.Describe())
	}
	pending, err := listener.Stage(t, pivot, pos, b.inferrer, opts...)
	if err != nil {
		return "", err
	}
	return b.add(pending)
}

func (b *Builder) add(pending listener.Pending) (string, error) {
	ids, err := b.addAll([]listener.Pending{pending})
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

func (b *Builder) addAll(pending []listener.Pending) ([]string, error) {
	batch := make([]order.Insertion[record], len(pending))
	for i, pd := range pending {
		target, ok := listener.ToIR(pd.Target)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNonSerializableTarget, pd.Target.Describe())
		}
		pd, target = normalize(pd, target)
		if pd.ID == "" {
			// ids are part of the compiled set and must be stable
			return nil, fmt.Errorf("%s: an id is required", pd.Target.Describe())
		}
		batch[i] = order.Insertion[record]{
			ID:         pd.ID,
			Value:      record{typ: pd.Type, target: target},
			Constraint: pd.Constraint,
		}
	}

	ids, err := b.regs.AddAll(batch)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		b.logger.Debug("registration recorded", "id", id, "type", pending[i].Type, "constraint", pending[i].Constraint.String())
	}
	return ids, nil
}

// normalize puts every recorded string in NFC, the form compiled sets are
// digested in, so ids that differ only in normalization collide here.
func normalize(pd listener.Pending, t ir.Target) (listener.Pending, ir.Target) {
	pd.ID = norm.NFC.String(pd.ID)
	pd.Type = event.TypeID(norm.NFC.String(string(pd.Type)))
	pd.Constraint.Pivot = norm.NFC.String(pd.Constraint.Pivot)
	t.Function = norm.NFC.String(t.Function)
	t.Class = norm.NFC.String(t.Class)
	t.Service = norm.NFC.String(t.Service)
	t.Method = norm.NFC.String(t.Method)
	return pd, t
}

// Len returns the number of recorded registrations.
func (b *Builder) Len() int {
	return b.regs.Len()
}

// Registrations returns the recorded registrations in resolved order.
// Fails with an order.UnresolvableOrderError if constraints form a cycle.
func (b *Builder) Registrations() ([]ir.Registration, error) {
	entries, err := b.regs.Entries()
	if err != nil {
		return nil, err
	}
	out := make([]ir.Registration, len(entries))
	for i, e := range entries {
		out[i] = toRegistration(e)
	}
	return out, nil
}

// Dangling returns the registrations whose pivot was never recorded. They
// resolve as priority 0.
func (b *Builder) Dangling() []ir.Registration {
	entries := b.regs.Dangling()
	out := make([]ir.Registration, len(entries))
	for i, e := range entries {
		out[i] = toRegistration(e)
	}
	return out
}

func toRegistration(e order.Entry[record]) ir.Registration {
	reg := ir.Registration{
		ID:     e.ID,
		Type:   string(e.Value.typ),
		Target: e.Value.target,
	}
	switch e.Position {
	case order.Before:
		reg.Before = e.Pivot
	case order.After:
		reg.After = e.Pivot
	default:
		reg.Priority = e.Priority
	}
	return reg
}

// Compile resolves the order and wraps it in a digested set.
func (b *Builder) Compile() (*ir.RegistrationSet, error) {
	regs, err := b.Registrations()
	if err != nil {
		return nil, err
	}
	set, err := ir.NewRegistrationSet(regs)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	b.logger.Debug("registration set compiled", "count", len(regs), "digest", set.Digest)
	return set, nil
}

// WriteJSON compiles the builder and writes the set as indented JSON.
func (b *Builder) WriteJSON(w io.Writer) error {
	set, err := b.Compile()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(set)
}

// WriteYAML compiles the builder and writes the set as YAML.
func (b *Builder) WriteYAML(w io.Writer) error {
	set, err := b.Compile()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(set); err != nil {
		return err
	}
	return enc.Close()
}

// ReadJSON decodes a set written by WriteJSON and verifies its digest.
func ReadJSON(r io.Reader) (*ir.RegistrationSet, error) {
	var set ir.RegistrationSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode registration set: %w", err)
	}
	if err := set.Verify(); err != nil {
		return nil, err
	}
	return &set, nil
}

// ReadYAML decodes a set written by WriteYAML and verifies its digest.
func ReadYAML(r io.Reader) (*ir.RegistrationSet, error) {
	var set ir.RegistrationSet
	if err := yaml.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode registration set: %w", err)
	}
	if err := set.Verify(); err != nil {
		return nil, err
	}
	return &set, nil
}
