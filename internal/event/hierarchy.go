package event

import (
	"fmt"
	"reflect"
	"sync"
)

// Hierarchy records the subtype relation between TypeIDs.
//
// Thread-safety: all methods are safe for concurrent use.
type Hierarchy struct {
	mu         sync.RWMutex
	parents    map[TypeID][]TypeID
	interfaces map[TypeID]reflect.Type
	learned    map[reflect.Type]bool
}

// NewHierarchy creates an empty hierarchy. With no declarations every
// TypeID is only a subtype of itself.
func NewHierarchy() *Hierarchy {
	return &Hierarchy{
		parents:    make(map[TypeID][]TypeID),
		interfaces: make(map[TypeID]reflect.Type),
		learned:    make(map[reflect.Type]bool),
	}
}

// Declare records that child is a direct subtype of each parent.
// Repeated declarations are ignored.
func (h *Hierarchy) Declare(child TypeID, parents ...TypeID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.declareLocked(child, parents...)
}

func (h *Hierarchy) declareLocked(child TypeID, parents ...TypeID) {
	existing := h.parents[child]
	for _, p := range parents {
		if p == "" || p == child || contains(existing, p) {
			continue
		}
		existing = append(existing, p)
	}
	h.parents[child] = existing
}

// Parents returns the direct parents declared for t.
func (h *Hierarchy) Parents(t TypeID) []TypeID {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]TypeID(nil), h.parents[t]...)
}

// IsSubtype reports whether t is u or a (transitive) subtype of u.
func (h *Hierarchy) IsSubtype(t, u TypeID) bool {
	if t == u {
		return true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.reachableLocked(t, u)
}

// reachableLocked walks the parent graph breadth-first from t.
// The visited set makes cyclic declarations terminate.
func (h *Hierarchy) reachableLocked(t, u TypeID) bool {
	visited := map[TypeID]bool{t: true}
	queue := []TypeID{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range h.parents[cur] {
			if p == u {
				return true
			}
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return false
}

// DeclareInterface records iface under id, so that values implementing
// iface match listeners declared for id. Interfaces reached through Learn
// are recorded automatically under their Go name; an explicit TypeID
// naming an interface, as service listeners carry, must be declared here.
func (h *Hierarchy) DeclareInterface(id TypeID, iface reflect.Type) error {
	if id == "" {
		return fmt.Errorf("declare interface: empty type id")
	}
	if iface == nil || iface.Kind() != reflect.Interface {
		return fmt.Errorf("declare interface %s: %v is not an interface type", id, iface)
	}
	if iface.NumMethod() == 0 {
		return fmt.Errorf("declare interface %s: %v has no methods and would match every event", id, iface)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.interfaces[id] = iface
	return nil
}

// Learn records the structural relations of v's Go type: every embedded
// struct field becomes a parent, recursively. Interface types are
// remembered so that values implementing them match.
// Values implementing Typed are skipped.
func (h *Hierarchy) Learn(v any) {
	if v == nil {
		return
	}
	h.LearnType(reflect.TypeOf(v))
}

// LearnType is Learn for a reflect.Type.
func (h *Hierarchy) LearnType(t reflect.Type) {
	if t == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.learnLocked(t)
}

func (h *Hierarchy) learnLocked(t reflect.Type) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if h.learned[t] {
		return
	}
	h.learned[t] = true

	if t.Kind() == reflect.Interface {
		if t.NumMethod() > 0 {
			h.interfaces[TypeIDFor(t)] = t
		}
		return
	}
	if t.Kind() != reflect.Struct || selfTyped(t) {
		return
	}

	child := TypeIDFor(t)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.Anonymous {
			continue
		}
		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		if ft.Kind() != reflect.Struct && ft.Kind() != reflect.Interface {
			continue
		}
		h.declareLocked(child, TypeIDFor(ft))
		h.learnLocked(ft)
	}
}

// Matches reports whether ev should be delivered to a listener declared
// for the given TypeID. The event's Go type is learned on first sight.
func (h *Hierarchy) Matches(ev any, declared TypeID) bool {
	if ev == nil || declared == "" {
		return false
	}
	rt := reflect.TypeOf(ev)
	h.LearnType(rt)

	if h.IsSubtype(TypeOf(ev), declared) {
		return true
	}

	h.mu.RLock()
	iface, ok := h.interfaces[declared]
	h.mu.RUnlock()
	return ok && rt.Implements(iface)
}

func contains(ids []TypeID, id TypeID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
