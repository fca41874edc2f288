// Package events defines the domain events the transaction engine publishes
// for its external collaborators. Inventory adjustment and notification are
// executed outside this core; the engine only dispatches.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the marker interface for all domain events.
type Event interface {
	Type() string
}

// Inventory adjustment reasons.
const (
	ReasonSaleCompleted = "sale_completed"
	ReasonSaleVoided    = "sale_voided"
	ReasonSaleRefunded  = "sale_refunded"
)

// InventoryAdjustmentRequested asks the inventory collaborator to change
// stock for one product at one store. Delta is negative on completion and
// positive on void reversal or refund.
type InventoryAdjustmentRequested struct {
	SaleID     uuid.UUID
	ProductID  uuid.UUID
	StoreID    uuid.UUID
	Delta      int
	Reason     string
	OccurredAt time.Time
}

// Type implements Event.
func (InventoryAdjustmentRequested) Type() string { return "InventoryAdjustmentRequested" }

// SaleCompleted announces a finalized sale.
type SaleCompleted struct {
	SaleID      uuid.UUID
	StoreID     uuid.UUID
	EmployeeID  uuid.UUID
	GrandTotal  int64
	Currency    string
	CompletedAt time.Time
}

// Type implements Event.
func (SaleCompleted) Type() string { return "SaleCompleted" }

// SaleVoided announces a voided sale.
type SaleVoided struct {
	SaleID       uuid.UUID
	StoreID      uuid.UUID
	Reason       string
	WasCompleted bool
	VoidedAt     time.Time
}

// Type implements Event.
func (SaleVoided) Type() string { return "SaleVoided" }

// SaleRefunded announces a (possibly partial) refund on a completed sale.
type SaleRefunded struct {
	SaleID     uuid.UUID
	StoreID    uuid.UUID
	Units      int
	Reason     string
	RefundedAt time.Time
}

// Type implements Event.
func (SaleRefunded) Type() string { return "SaleRefunded" }
