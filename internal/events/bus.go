package events

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chroma/internal/logger"
)

// Names delivered to the front-end.
const (
	MenuOpen = "menu-open"
	MenuSave = "menu-save"
)

// Wildcard subscribes to every event name.
const Wildcard = "*"

var (
	ErrBusClosed  = errors.New("event bus closed")
	ErrBufferFull = errors.New("event bus buffer full")
)

type Event struct {
	Name      string
	Payload   interface{}
	Timestamp time.Time
}

type Handler interface {
	Handle(event Event)
	ID() string
}

// HandlerFunc adapts a function into a Handler with a fixed id.
type HandlerFunc struct {
	Name string
	Fn   func(Event)
}

func (h HandlerFunc) Handle(event Event) { h.Fn(event) }
func (h HandlerFunc) ID() string         { return h.Name }

// Publisher is the publish side of the bus.
type Publisher interface {
	Publish(name string, payload interface{}) error
}

// Bus delivers events on a single worker goroutine in publish order.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
	buffer      chan Event
	closed      bool
	closeMu     sync.RWMutex
	wg          sync.WaitGroup
	logger      logger.Logger
}

func NewBus(bufferSize int, log logger.Logger) *Bus {
	if log == nil {
		log = logger.Nop()
	}

	bus := &Bus{
		subscribers: make(map[string][]Handler),
		buffer:      make(chan Event, bufferSize),
		logger:      log,
	}

	bus.startWorker()
	return bus
}

// Publish never blocks; a full buffer drops the event and reports ErrBufferFull.
func (b *Bus) Publish(name string, payload interface{}) error {
	b.closeMu.RLock()
	defer b.closeMu.RUnlock()

	if b.closed {
		return ErrBusClosed
	}

	event := Event{Name: name, Payload: payload, Timestamp: time.Now()}

	select {
	case b.buffer <- event:
		return nil
	default:
		return fmt.Errorf("publish %s: %w", name, ErrBufferFull)
	}
}

func (b *Bus) Subscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subscribers[name] = append(b.subscribers[name], handler)
}

func (b *Bus) Unsubscribe(name string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	handlers := b.subscribers[name]
	for i, h := range handlers {
		if h.ID() == handler.ID() {
			b.subscribers[name] = append(handlers[:i:i], handlers[i+1:]...)
			break
		}
	}
}

// Shutdown stops accepting events, drains the buffer and waits for the worker.
func (b *Bus) Shutdown() {
	b.closeMu.Lock()
	if b.closed {
		b.closeMu.Unlock()
		return
	}
	b.closed = true
	close(b.buffer)
	b.closeMu.Unlock()

	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for event := range b.buffer {
			b.dispatchEvent(event)
		}
	}()
}

func (b *Bus) dispatchEvent(event Event) {
	b.mu.RLock()
	named := b.subscribers[event.Name]
	wild := b.subscribers[Wildcard]
	handlers := make([]Handler, 0, len(named)+len(wild))
	handlers = append(handlers, named...)
	handlers = append(handlers, wild...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(handler, event)
	}
}

func (b *Bus) deliver(h Handler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Warning("EventBus", "subscriber panicked", map[string]interface{}{
				"subscriber": h.ID(),
				"event":      event.Name,
				"panic":      fmt.Sprint(r),
			})
		}
	}()
	h.Handle(event)
}
