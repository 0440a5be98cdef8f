package listener

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mailer struct {
	name string
	rec  *recorder
}

func (m *mailer) Send(ctx context.Context, ev OrderPlaced) error {
	m.rec.add(m.name + ":" + ev.ID)
	return nil
}

func (m *mailer) Broken() {}

type greeter struct{ rec *recorder }

func (g *greeter) Greet(ev Named) { g.rec.add("hello " + ev.GetName()) }

func TestProvider_ServiceNeedsLocator(t *testing.T) {
	p := newTestProvider(t)

	_, err := p.AddListenerService("mailer", "Send", "listener.OrderPlaced")
	assert.ErrorIs(t, err, ErrMissingLocator)

	_, err = p.AddListener(ServiceProxy{Service: "mailer", Method: "Send"}, WithType("listener.OrderPlaced"))
	assert.ErrorIs(t, err, ErrMissingLocator)
}

func TestProvider_ServiceNeedsType(t *testing.T) {
	p := newTestProvider(t, WithLocator(NewMapLocator()))

	_, err := p.AddListenerService("mailer", "Send", "")
	assert.True(t, errors.Is(err, ErrInvalidType))

	_, err = p.AddListener(ServiceProxy{Service: "mailer", Method: "Send"})
	assert.True(t, errors.Is(err, ErrInvalidType))
}

func TestProvider_ServiceResolvedAtDispatch(t *testing.T) {
	rec := &recorder{}
	locator := NewMapLocator()
	p := newTestProvider(t, WithLocator(locator))

	// registered before the service exists
	_, err := p.AddListenerService("mailer", "Send", "listener.OrderPlaced")
	require.NoError(t, err)

	locator.Set("mailer", &mailer{name: "v1", rec: rec})
	dispatchAll(t, p, OrderPlaced{ID: "1"})

	locator.Set("mailer", &mailer{name: "v2", rec: rec})
	dispatchAll(t, p, OrderPlaced{ID: "2"})

	assert.Equal(t, []string{"v1:1", "v2:2"}, rec.get())
}

func TestProvider_ServiceOrdering(t *testing.T) {
	rec := &recorder{}
	locator := NewMapLocator()
	locator.Set("a", &mailer{name: "a", rec: rec})
	locator.Set("b", &mailer{name: "b", rec: rec})
	locator.Set("c", &mailer{name: "c", rec: rec})
	p := newTestProvider(t, WithLocator(locator))

	_, err := p.AddListenerService("a", "Send", "listener.OrderPlaced")
	require.NoError(t, err)
	_, err = p.AddListenerServiceBefore("a-Send", "b", "Send", "listener.OrderPlaced")
	require.NoError(t, err)
	_, err = p.AddListenerServiceAfter("a-Send", "c", "Send", "listener.OrderPlaced", WithID("late"))
	require.NoError(t, err)

	ids, err := p.MatchingIDs(OrderPlaced{})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-Send", "a-Send", "late"}, ids)

	dispatchAll(t, p, OrderPlaced{ID: "1"})
	assert.Equal(t, []string{"b:1", "a:1", "c:1"}, rec.get())
}

func TestProvider_ServiceBindFailures(t *testing.T) {
	locator := NewMapLocator()
	locator.Set("mailer", &mailer{name: "m", rec: &recorder{}})
	p := newTestProvider(t, WithLocator(locator))

	_, err := p.AddListenerService("missing", "Send", "listener.OrderPlaced")
	require.NoError(t, err)
	_, err = p.AddListenerService("mailer", "Nope", "listener.OrderPlaced")
	require.NoError(t, err)
	_, err = p.AddListenerService("mailer", "Broken", "listener.OrderPlaced")
	require.NoError(t, err)

	listeners, err := p.GetListenersForEvent(OrderPlaced{})
	require.NoError(t, err, "bind failures never fail the lookup")

	var errs []error
	for l := range listeners {
		errs = append(errs, l(context.Background(), OrderPlaced{}))
	}
	require.Len(t, errs, 3)
	for _, e := range errs {
		var be *BindError
		require.True(t, errors.As(e, &be))
	}
	assert.ErrorContains(t, errs[0], `service "missing" not found`)
	assert.ErrorContains(t, errs[1], "method Nope not found")
	assert.ErrorIs(t, errs[2], ErrUnsupportedSignature)
}

func TestProvider_SymbolTargets(t *testing.T) {
	rec := &recorder{}
	symbols := NewSymbolTable()
	symbols.Register("audit.Log", func(ev OrderPlaced) { rec.add("log:" + ev.ID) })
	symbols.RegisterStatic("Mailer", "send", func(ctx context.Context, ev *OrderPlaced) error {
		rec.add("send:" + ev.ID)
		return nil
	})
	p := newTestProvider(t, WithSymbols(symbols))

	_, err := p.AddListener(Function{Name: "audit.Log"})
	require.NoError(t, err)
	_, err = p.AddListener(StaticMethod{Class: "Mailer", Method: "send"}, WithPriority(5))
	require.NoError(t, err)

	infos, err := p.Listeners()
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "Mailer::send", infos[0].ID)
	assert.Equal(t, "static method Mailer::send", infos[0].Target)
	assert.Equal(t, "listener.OrderPlaced", string(infos[1].Type))

	dispatchAll(t, p, OrderPlaced{ID: "3"})
	assert.Equal(t, []string{"send:3", "log:3"}, rec.get())
}

func TestProvider_MissingSymbol(t *testing.T) {
	p := newTestProvider(t, WithSymbols(NewSymbolTable()))

	_, err := p.AddListener(Function{Name: "nowhere"})
	assert.True(t, errors.Is(err, ErrInvalidType))
	assert.True(t, errors.Is(err, ErrSymbolNotFound))

	// with an explicit type the lookup is deferred to dispatch
	_, err = p.AddListener(Function{Name: "nowhere"}, WithType("listener.OrderPlaced"))
	require.NoError(t, err)

	listeners, err := p.GetListenersForEvent(OrderPlaced{})
	require.NoError(t, err)
	for l := range listeners {
		assert.ErrorIs(t, l(context.Background(), OrderPlaced{}), ErrSymbolNotFound)
	}
}

func TestMapLocator(t *testing.T) {
	l := NewMapLocator()
	_, err := l.Get("x")
	assert.Error(t, err)

	l.Set("x", 1)
	got, err := l.Get("x")
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestProvider_ServiceForInterfaceType(t *testing.T) {
	rec := &recorder{}
	locator := NewMapLocator()
	locator.Set("greeter", &greeter{rec: rec})
	p := newTestProvider(t, WithLocator(locator), WithEventTypes(reflect.TypeFor[Named]()))

	_, err := p.AddListenerService("greeter", "Greet", "listener.Named")
	require.NoError(t, err)

	dispatchAll(t, p, Dog{Animal: Animal{Name: "rex"}})
	dispatchAll(t, p, OrderPlaced{ID: "1"})
	assert.Equal(t, []string{"hello rex"}, rec.get())
}

func TestProvider_ExplicitInterfaceTypeNeedsDeclaration(t *testing.T) {
	p := newTestProvider(t)
	id, err := p.AddListener(Direct{Fn: func(Named) {}}, WithType("named-things"), WithID("named"))
	require.NoError(t, err)

	ids, err := p.MatchingIDs(Dog{})
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, p.Hierarchy().DeclareInterface("named-things", reflect.TypeFor[Named]()))
	ids, err = p.MatchingIDs(Dog{})
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}
