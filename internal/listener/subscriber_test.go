package listener

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
)

type orderService struct {
	rec *recorder
}

func (s *orderService) RegisterListeners(p *Proxy) error {
	p.On("Audit", "listener.OrderPlaced", WithPriority(10))
	p.OnAfter("orders-Audit", "OnPlaced", "listener.OrderPlaced")
	return nil
}

func (s *orderService) Audit(ev OrderPlaced) { s.rec.add("audit:" + ev.ID) }

func (s *orderService) OnPlaced(ctx context.Context, ev OrderPlaced) error {
	s.rec.add("placed:" + ev.ID)
	return nil
}

func (s *orderService) OnCancelled(ev *OrderCancelled) { s.rec.add("cancelled:" + ev.ID) }

// Once does not follow the On<Upper> convention and is never registered.
func (s *orderService) Once() {}

func (s *orderService) helper() {}

type brokenService struct{}

func (brokenService) OnFine(ev OrderPlaced) {}

func (brokenService) OnBroken() {}

type failingHook struct{}

func (failingHook) RegisterListeners(p *Proxy) error { return errors.New("no thanks") }

func (failingHook) OnPlaced(ev OrderPlaced) {}

type untypedHook struct{}

func (untypedHook) RegisterListeners(p *Proxy) error {
	p.On("Handle", "")
	return nil
}

func (untypedHook) Handle(ev OrderPlaced) {}

func TestDiscoverSubscriber_Phases(t *testing.T) {
	pending, err := DiscoverSubscriber((*orderService)(nil), "orders")
	require.NoError(t, err)

	var ids []string
	for _, p := range pending {
		ids = append(ids, p.ID)
	}
	// hook registrations come first, then On-methods by name
	assert.Equal(t, []string{"orders-Audit", "orders-OnPlaced", "orders-OnCancelled"}, ids)

	assert.Equal(t, order.Priority(10), pending[0].Constraint)
	assert.Equal(t, order.AfterID("orders-Audit"), pending[1].Constraint)
	assert.Equal(t, event.TypeID("listener.OrderCancelled"), pending[2].Type)
	assert.Equal(t, ServiceProxy{Service: "orders", Method: "OnCancelled"}, pending[2].Target)
}

func TestDiscoverSubscriber_ValueSampleFindsPointerMethods(t *testing.T) {
	fromPointer, err := DiscoverSubscriber((*orderService)(nil), "orders")
	require.NoError(t, err)

	fromValue, err := DiscoverSubscriber(orderService{}, "orders")
	require.NoError(t, err)
	require.Len(t, fromValue, 3)
	assert.Equal(t, fromPointer, fromValue)
}

func TestDiscoverSubscriber_InvalidMethod(t *testing.T) {
	_, err := DiscoverSubscriber(brokenService{}, "broken")
	require.Error(t, err)

	var ite *InvalidTypeError
	require.True(t, errors.As(err, &ite))
	assert.Equal(t, "listener.brokenService.OnBroken", ite.Target)
	assert.True(t, errors.Is(err, ErrUnsupportedSignature))
}

func TestDiscoverSubscriber_HookErrors(t *testing.T) {
	_, err := DiscoverSubscriber(failingHook{}, "hook")
	assert.ErrorContains(t, err, "no thanks")

	_, err = DiscoverSubscriber(untypedHook{}, "hook")
	assert.True(t, errors.Is(err, ErrInvalidType))

	_, err = DiscoverSubscriber(nil, "hook")
	assert.Error(t, err)
}

func TestIsListenerMethod(t *testing.T) {
	for name, want := range map[string]bool{
		"OnCreated": true,
		"OnX":       true,
		"Once":      false,
		"On":        false,
		"Handle":    false,
		"onCreated": false,
	} {
		assert.Equal(t, want, isListenerMethod(name), name)
	}
}

func TestProvider_AddSubscriber(t *testing.T) {
	rec := &recorder{}
	locator := NewMapLocator()
	locator.Set("orders", &orderService{rec: rec})
	p := newTestProvider(t, WithLocator(locator))

	require.NoError(t, p.AddSubscriber((*orderService)(nil), "orders"))

	dispatchAll(t, p, OrderPlaced{ID: "7"})
	dispatchAll(t, p, OrderCancelled{ID: "8"})
	assert.Equal(t, []string{"audit:7", "placed:7", "cancelled:8"}, rec.get())
}

func TestProvider_AddSubscriberIsAtomic(t *testing.T) {
	p := newTestProvider(t, WithLocator(NewMapLocator()))

	err := p.AddSubscriber(brokenService{}, "broken")
	assert.True(t, errors.Is(err, ErrInvalidType))

	infos, err := p.Listeners()
	require.NoError(t, err)
	assert.Empty(t, infos, "OnFine must not be registered when OnBroken fails")

	// a colliding id also rolls back the whole subscriber
	_, err = p.AddListenerService("orders", "OnPlaced", "listener.OrderPlaced")
	require.NoError(t, err)
	err = p.AddSubscriber((*orderService)(nil), "orders")
	assert.True(t, order.IsDuplicateError(err))

	infos, err = p.Listeners()
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestProvider_AddSubscriberNeedsLocator(t *testing.T) {
	p := newTestProvider(t)
	assert.ErrorIs(t, p.AddSubscriber((*orderService)(nil), "orders"), ErrMissingLocator)
}

func TestProxy_RegisteredMethods(t *testing.T) {
	proxy := newProxy("orders", "listener.orderService")
	proxy.On("A", "t")
	proxy.OnBefore("x", "B", "t")
	proxy.OnAfter("x", "C", "t")
	proxy.On("Aa", "t")
	assert.Equal(t, []string{"A", "Aa", "B", "C"}, proxy.RegisteredMethods())
	assert.Equal(t, proxy.RegisteredMethods(), proxy.RegisteredMethods())
	assert.NoError(t, proxy.err)
	assert.Len(t, proxy.pending, 4)
}
