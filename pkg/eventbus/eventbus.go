// Package eventbus defines the contract for publishing and subscribing to
// domain events.
package eventbus

import (
	"context"

	"github.com/amirasaad/pos/pkg/domain/events"
)

// EventBus dispatches domain events to registered handlers.
type EventBus interface {
	Publish(ctx context.Context, event events.Event) error
	Subscribe(eventType string, handler func(context.Context, events.Event))
}
