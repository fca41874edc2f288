package eventbus_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/pos/infra/eventbus"
	"github.com/amirasaad/pos/pkg/domain/events"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryEventBusDispatch(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewMemoryEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))

	var received []events.Event
	bus.Subscribe("InventoryAdjustmentRequested", func(_ context.Context, e events.Event) {
		received = append(received, e)
	})
	bus.Subscribe("SaleCompleted", func(_ context.Context, e events.Event) {
		t.Fatal("wrong handler invoked")
	})

	evt := events.InventoryAdjustmentRequested{
		SaleID:     uuid.New(),
		ProductID:  uuid.New(),
		StoreID:    uuid.New(),
		Delta:      -3,
		Reason:     events.ReasonSaleCompleted,
		OccurredAt: time.Now(),
	}
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Len(t, received, 1)
	got, ok := received[0].(events.InventoryAdjustmentRequested)
	require.True(t, ok)
	assert.Equal(t, -3, got.Delta)
}

func TestMemoryEventBusNoSubscribers(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewMemoryEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.NoError(t, bus.Publish(context.Background(), events.SaleCompleted{}))
}
