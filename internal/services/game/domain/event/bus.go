package event

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Handler consumes one event envelope. A handler returning an error, or
// panicking, is logged and contained; it never reaches the emitter.
type Handler interface {
	HandleEvent(ctx context.Context, env Envelope) error
}

// Bus is an in-process publish/subscribe dispatcher.
//
// Handlers registered for the same event type run concurrently for each
// emit; Emit returns once every handler has finished. The bus owns no
// state beyond its subscriber table.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler

	logf    func(format string, args ...any)
	emitted metric.Int64Counter
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	meter := otel.Meter("github.com/ElderEvil/vaultkeeper/internal/services/game/domain/event")
	emitted, err := meter.Int64Counter("game_events_emitted_total",
		metric.WithDescription("Count of gameplay events emitted on the bus."))
	if err != nil {
		log.Printf("event bus: create emitted counter: %v", err)
	}
	return &Bus{
		handlers: make(map[Type][]Handler),
		logf:     log.Printf,
		emitted:  emitted,
	}
}

// Subscribe registers handler for eventType. Registering the identical
// handler twice for the same type is a no-op.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.handlers[eventType] {
		if existing == handler {
			return
		}
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Unsubscribe removes a registration. Removing a handler that was never
// registered is a no-op.
func (b *Bus) Unsubscribe(eventType Type, handler Handler) {
	if b == nil || handler == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	registered := b.handlers[eventType]
	for i, existing := range registered {
		if existing == handler {
			b.handlers[eventType] = append(registered[:i:i], registered[i+1:]...)
			if len(b.handlers[eventType]) == 0 {
				delete(b.handlers, eventType)
			}
			return
		}
	}
}

// Emit dispatches env to every handler registered for its type and waits
// for all of them. Handler errors and panics are logged, never returned;
// emitters must stay unaffected by subscriber health.
func (b *Bus) Emit(ctx context.Context, env Envelope) {
	if b == nil {
		return
	}
	b.mu.RLock()
	registered := b.handlers[env.Type]
	snapshot := make([]Handler, len(registered))
	copy(snapshot, registered)
	b.mu.RUnlock()

	if b.emitted != nil {
		b.emitted.Add(ctx, 1, metric.WithAttributes(
			attribute.String("event_type", string(env.Type)),
		))
	}
	if len(snapshot) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, handler := range snapshot {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			if err := b.invoke(ctx, h, env); err != nil {
				b.logf("event bus: handler for %s (vault %s): %v", env.Type, env.VaultID, err)
			}
		}(handler)
	}
	wg.Wait()
}

func (b *Bus) invoke(ctx context.Context, h Handler, env Envelope) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h.HandleEvent(ctx, env)
}

// Clear removes all subscriptions. Intended for shutdown and test isolation.
func (b *Bus) Clear() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[Type][]Handler)
}
