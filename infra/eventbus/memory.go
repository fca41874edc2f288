// Package eventbus provides the in-process event bus implementation.
package eventbus

import (
	"context"
	"log/slog"
	"sync"

	"github.com/amirasaad/pos/pkg/domain/events"
)

// MemoryEventBus dispatches events synchronously to in-process handlers.
// Safe for concurrent use.
type MemoryEventBus struct {
	handlers map[string][]func(context.Context, events.Event)
	logger   *slog.Logger
	mu       sync.RWMutex
}

// NewMemoryEventBus creates an empty bus.
func NewMemoryEventBus(logger *slog.Logger) *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]func(context.Context, events.Event)),
		logger:   logger,
	}
}

// Publish delivers the event to every handler subscribed to its type.
func (b *MemoryEventBus) Publish(ctx context.Context, event events.Event) error {
	b.logger.Debug("eventbus publish", "event_type", event.Type())
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, handler := range b.handlers[event.Type()] {
		handler(ctx, event)
	}
	return nil
}

// Subscribe registers a handler for an event type.
func (b *MemoryEventBus) Subscribe(eventType string, handler func(context.Context, events.Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
