package listener

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ordo/internal/event"
	"github.com/roach88/ordo/internal/order"
	"github.com/roach88/ordo/internal/testutil"
)

type Animal struct{ Name string }

func (a Animal) GetName() string { return a.Name }

type Dog struct {
	Animal
	Breed string
}

type Named interface{ GetName() string }

type OrderPlaced struct{ ID string }

type OrderCancelled struct{ ID string }

type taggedEvent struct{ tag event.TypeID }

func (e taggedEvent) EventType() event.TypeID { return e.tag }

// recorder collects call labels across listeners.
type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func onAnimal(ctx context.Context, a Animal) error { return nil }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProvider(t *testing.T, opts ...Option) *Provider {
	t.Helper()
	base := []Option{
		WithLogger(discard()),
		WithCollectionOptions(
			order.WithClock(testutil.NewDeterministicClock()),
			order.WithIDGenerator(testutil.NewSequentialIDs("gen")),
		),
	}
	return NewProvider(append(base, opts...)...)
}

// dispatchAll invokes every listener yielded for ev and fails on errors.
func dispatchAll(t *testing.T, p *Provider, ev any) {
	t.Helper()
	listeners, err := p.GetListenersForEvent(ev)
	require.NoError(t, err)
	for l := range listeners {
		require.NoError(t, l(context.Background(), ev))
	}
}
