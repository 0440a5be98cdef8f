package listener

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
)

// MethodPrefix marks the methods AddSubscriber registers automatically.
const MethodPrefix = "On"

// Subscriber is implemented by service types that register some of their
// listener methods explicitly, e.g. to set priorities or ordering.
type Subscriber interface {
	RegisterListeners(p *Proxy) error
}

// Proxy is handed to Subscriber.RegisterListeners. Every method it
// registers is a service proxy on the subscriber's service, and is skipped
// by automatic On-method discovery.
type Proxy struct {
	service string
	class   string
	pending []Pending
	claimed map[string]bool
	err     error
}

func newProxy(service, class string) *Proxy {
	return &Proxy{service: service, class: class, claimed: make(map[string]bool)}
}

// On registers method for events of type typ with a priority.
func (p *Proxy) On(method string, typ event.TypeID, opts ...RegisterOption) {
	p.stage(method, typ, "", 0, opts)
}

// OnBefore registers method immediately before pivot.
func (p *Proxy) OnBefore(pivot, method string, typ event.TypeID, opts ...RegisterOption) {
	p.stage(method, typ, pivot, order.Before, opts)
}

// OnAfter registers method immediately after pivot.
func (p *Proxy) OnAfter(pivot, method string, typ event.TypeID, opts ...RegisterOption) {
	p.stage(method, typ, pivot, order.After, opts)
}

// RegisteredMethods returns the method names claimed so far, sorted.
func (p *Proxy) RegisteredMethods() []string {
	return slices.Sorted(maps.Keys(p.claimed))
}

func (p *Proxy) stage(method string, typ event.TypeID, pivot string, pos order.Position, opts []RegisterOption) {
	p.claimed[method] = true
	if p.err != nil {
		return
	}
	pending, err := StageService(p.service, method, typ, pivot, pos, opts...)
	if err != nil {
		p.err = fmt.Errorf("subscriber %s: %w", p.class, err)
		return
	}
	p.pending = append(p.pending, pending)
}

// DiscoverSubscriber stages the listener registrations of a subscriber
// type without storing them.
//
// Phase one runs the Subscriber hook if sample implements it. Phase two
// scans exported methods named On<Upper>... in method-name order; each must
// take one event parameter, optionally preceded by a context.Context.
func DiscoverSubscriber(sample any, service string) ([]Pending, error) {
	return discoverSubscriber(sample, service, nil)
}

// discoverSubscriber is DiscoverSubscriber that also teaches h the
// parameter types it finds.
func discoverSubscriber(sample any, service string, h *event.Hierarchy) ([]Pending, error) {
	if sample == nil {
		return nil, fmt.Errorf("subscriber for service %q: nil sample", service)
	}
	rt := reflect.TypeOf(sample)
	if rt.Kind() != reflect.Pointer {
		// pointer receivers are only in the method set of *T
		pv := reflect.New(rt)
		pv.Elem().Set(reflect.ValueOf(sample))
		sample, rt = pv.Interface(), pv.Type()
	}
	class := event.TypeIDFor(rt)
	proxy := newProxy(service, string(class))

	if s, ok := sample.(Subscriber); ok {
		if err := s.RegisterListeners(proxy); err != nil {
			return nil, fmt.Errorf("subscriber %s: %w", class, err)
		}
		if proxy.err != nil {
			return nil, proxy.err
		}
	}

	pending := proxy.pending
	// reflect lists methods in lexicographic order
	for i := 0; i < rt.NumMethod(); i++ {
		m := rt.Method(i)
		if proxy.claimed[m.Name] || !isListenerMethod(m.Name) {
			continue
		}

		target := ServiceProxy{Service: service, Method: m.Name}
		sig, err := parseSignature(m.Type, 1)
		if err != nil {
			return nil, &InvalidTypeError{Target: fmt.Sprintf("%s.%s", class, m.Name), Err: err}
		}
		typ, err := ReflectInferrer{Hierarchy: h}.typeOf(sig.event)
		if err != nil {
			return nil, &InvalidTypeError{Target: fmt.Sprintf("%s.%s", class, m.Name), Err: err}
		}

		pending = append(pending, Pending{
			ID:         target.DefaultID(),
			Type:       typ,
			Target:     target,
			Constraint: order.Priority(0),
		})
	}
	return pending, nil
}

// isListenerMethod reports whether name follows the On<Upper> convention,
// so that OnCreated matches but Once does not.
func isListenerMethod(name string) bool {
	rest, ok := strings.CutPrefix(name, MethodPrefix)
	if !ok || rest == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return unicode.IsUpper(r)
}
