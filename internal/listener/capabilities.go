package listener

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/roach88/ordo/internal/event"
)

// ServiceLocator resolves a service name to a live object.
type ServiceLocator interface {
	Get(name string) (any, error)
}

// Symbols resolves Function and StaticMethod names to Go funcs.
// StaticMethod targets are looked up as "Class::Method".
type Symbols interface {
	Lookup(name string) (any, bool)
}

// TypeInferrer determines the event type a target listens to.
type TypeInferrer interface {
	InferEventType(t Target) (event.TypeID, error)
}

// MapLocator is a ServiceLocator backed by a map.
//
// Thread-safety: safe for concurrent use.
type MapLocator struct {
	mu       sync.RWMutex
	services map[string]any
}

// NewMapLocator creates an empty locator.
func NewMapLocator() *MapLocator {
	return &MapLocator{services: make(map[string]any)}
}

// Set registers or replaces a service.
func (l *MapLocator) Set(name string, svc any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services[name] = svc
}

// Get returns the service registered under name.
func (l *MapLocator) Get(name string) (any, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	svc, ok := l.services[name]
	if !ok {
		return nil, fmt.Errorf("service %q not found", name)
	}
	return svc, nil
}

// SymbolTable is a Symbols implementation backed by a map.
//
// Thread-safety: safe for concurrent use.
type SymbolTable struct {
	mu      sync.RWMutex
	symbols map[string]any
}

// NewSymbolTable creates an empty table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]any)}
}

// Register adds a function under name.
func (s *SymbolTable) Register(name string, fn any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbols[name] = fn
}

// RegisterStatic adds a function under "class::method".
func (s *SymbolTable) RegisterStatic(class, method string, fn any) {
	s.Register(StaticMethod{Class: class, Method: method}.key(), fn)
}

// Lookup returns the function registered under name.
func (s *SymbolTable) Lookup(name string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn, ok := s.symbols[name]
	return fn, ok
}

// ReflectInferrer infers event types from Go func signatures.
//
// Direct targets are inspected directly; Function and StaticMethod targets
// are looked up in Symbols first. Service proxies cannot be inspected
// without instantiating the service, so they always fail.
//
// When Hierarchy is set, every inferred parameter type is learned so that
// interface and embedded-struct subtyping works for the listener.
type ReflectInferrer struct {
	Symbols   Symbols
	Hierarchy *event.Hierarchy
}

// InferEventType implements TypeInferrer.
func (r ReflectInferrer) InferEventType(t Target) (event.TypeID, error) {
	var fn any
	switch v := t.(type) {
	case Direct:
		fn = v.Fn
	case Function:
		fn = r.lookup(v.Name)
	case StaticMethod:
		fn = r.lookup(v.key())
	case ServiceProxy:
		return "", fmt.Errorf("service targets require an explicit event type")
	default:
		return "", fmt.Errorf("unknown target %T", t)
	}
	if fn == nil {
		return "", ErrSymbolNotFound
	}

	sig, err := parseSignature(reflect.TypeOf(fn), 0)
	if err != nil {
		return "", err
	}
	return r.typeOf(sig.event)
}

// typeOf names a parameter type. An empty interface matches everything and
// therefore says nothing about the event; it is rejected rather than
// treated as a catch-all.
func (r ReflectInferrer) typeOf(p reflect.Type) (event.TypeID, error) {
	if p.Kind() == reflect.Interface && p.NumMethod() == 0 {
		return "", fmt.Errorf("event parameter %s has no specific type", p)
	}
	if r.Hierarchy != nil {
		r.Hierarchy.LearnType(p)
	}
	return event.TypeIDFor(p), nil
}

func (r ReflectInferrer) lookup(name string) any {
	if r.Symbols == nil {
		return nil
	}
	fn, _ := r.Symbols.Lookup(name)
	return fn
}
