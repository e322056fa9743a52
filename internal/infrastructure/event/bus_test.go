package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/troves/backend/internal/domain/shared"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Test", uuid.New())}
}

type testHandler struct {
	eventTypes []string
	mu         sync.Mutex
	handled    []string
	err        error
	panicWith  any
}

func (h *testHandler) Handle(ctx context.Context, ev shared.DomainEvent) error {
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, ev.EventType())
	return h.err
}

func (h *testHandler) EventTypes() []string { return h.eventTypes }

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T, log *zap.Logger) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(log)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestInMemoryEventBus_RoutesByType(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	orders := &testHandler{eventTypes: []string{"OrderPlaced"}}
	all := &testHandler{}
	bus.Subscribe(orders)
	bus.Subscribe(all)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced"), newTestEvent("ProductCreated")))

	assert.Equal(t, 1, orders.count())
	assert.Equal(t, 2, all.count())
}

func TestInMemoryEventBus_ExplicitTypesOverride(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	h := &testHandler{eventTypes: []string{"A"}}
	bus.Subscribe(h, "B")

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("A"), newTestEvent("B")))
	assert.Equal(t, []string{"B"}, h.handled)
}

func TestInMemoryEventBus_FailuresDoNotPropagate(t *testing.T) {
	core, recorded := observer.New(zapcore.ErrorLevel)
	bus := startedBus(t, zap.New(core))

	failing := &testHandler{eventTypes: []string{"X"}, err: errors.New("boom")}
	panicking := &testHandler{eventTypes: []string{"X"}, panicWith: "kaboom"}
	after := &testHandler{eventTypes: []string{"X"}}
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(after)

	err := bus.Publish(context.Background(), newTestEvent("X"))
	require.NoError(t, err)
	assert.Equal(t, 1, after.count(), "later handlers still run")
	assert.Equal(t, 2, recorded.FilterMessage("event handler failed").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	h := &testHandler{eventTypes: []string{"X"}}
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))
	assert.Zero(t, h.count())
	assert.Zero(t, bus.registry.Len())
}

func TestInMemoryEventBus_DropsWhenStopped(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	h := &testHandler{}
	bus.Subscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("X")))
	assert.Zero(t, h.count())
}

func TestInMemoryEventBus_ConcurrentPublish(t *testing.T) {
	bus := startedBus(t, zap.NewNop())
	h := &testHandler{}
	bus.Subscribe(h)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), newTestEvent("X"))
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.count())
}
