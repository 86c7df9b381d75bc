package events

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	id     string
	events []Event
}

func (r *recorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) ID() string { return r.id }

func (r *recorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Name)
	}
	return out
}

func TestBusDeliversInOrder(t *testing.T) {
	bus := NewBus(16, nil)
	rec := &recorder{id: "rec"}
	bus.Subscribe(Wildcard, rec)

	require.NoError(t, bus.Publish(MenuOpen, nil))
	require.NoError(t, bus.Publish(MenuSave, nil))
	require.NoError(t, bus.Publish(MenuOpen, nil))
	bus.Shutdown()

	assert.Equal(t, []string{MenuOpen, MenuSave, MenuOpen}, rec.names())
}

func TestBusRoutesByName(t *testing.T) {
	bus := NewBus(16, nil)
	open := &recorder{id: "open"}
	save := &recorder{id: "save"}
	bus.Subscribe(MenuOpen, open)
	bus.Subscribe(MenuSave, save)

	require.NoError(t, bus.Publish(MenuOpen, nil))
	bus.Shutdown()

	assert.Equal(t, []string{MenuOpen}, open.names())
	assert.Empty(t, save.names())
}

func TestBusUnsubscribe(t *testing.T) {
	bus := NewBus(16, nil)
	rec := &recorder{id: "rec"}
	bus.Subscribe(MenuOpen, rec)
	bus.Unsubscribe(MenuOpen, rec)

	require.NoError(t, bus.Publish(MenuOpen, nil))
	bus.Shutdown()

	assert.Empty(t, rec.names())
}

func TestBusSurvivesPanickingSubscriber(t *testing.T) {
	bus := NewBus(16, nil)
	bus.Subscribe(MenuOpen, HandlerFunc{Name: "bad", Fn: func(Event) { panic("nope") }})
	rec := &recorder{id: "rec"}
	bus.Subscribe(MenuOpen, rec)

	require.NoError(t, bus.Publish(MenuOpen, nil))
	bus.Shutdown()

	assert.Equal(t, []string{MenuOpen}, rec.names())
}

func TestBusPublishAfterShutdown(t *testing.T) {
	bus := NewBus(1, nil)
	bus.Shutdown()
	bus.Shutdown()

	assert.ErrorIs(t, bus.Publish(MenuOpen, nil), ErrBusClosed)
}

func TestBusBufferFull(t *testing.T) {
	block := make(chan struct{})
	bus := NewBus(1, nil)
	bus.Subscribe(MenuOpen, HandlerFunc{Name: "slow", Fn: func(Event) { <-block }})

	// The first event is picked up by the worker and parks it; the second
	// fills the buffer; eventually a publish must be refused.
	var err error
	for i := 0; i < 10 && err == nil; i++ {
		err = bus.Publish(MenuOpen, nil)
	}
	assert.ErrorIs(t, err, ErrBufferFull)

	close(block)
	bus.Shutdown()
}
