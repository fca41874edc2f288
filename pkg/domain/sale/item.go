package sale

import (
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/google/uuid"
)

// Item is one sale line. ProductSKU and ProductName are denormalized
// snapshots taken at add time so a later deletion of the product cannot
// invalidate a completed sale. UnitPrice is likewise a snapshot of the
// product's currency-matched price (possibly overridden by a manager).
type Item struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductSKU  string
	ProductName string
	CategoryID  uuid.UUID
	BrandID     uuid.UUID

	Quantity  int
	UnitPrice money.Money
	Offer     *offer.Result

	RefundedQuantity int

	// Pricing snapshot, refreshed on every mutation.
	Subtotal money.Money
	Discount money.Money
	Total    money.Money
}

// Ref returns the offer-targeting reference for this line.
func (i *Item) Ref() offer.ItemRef {
	return offer.ItemRef{
		ProductID:  i.ProductID,
		CategoryID: i.CategoryID,
		BrandID:    i.BrandID,
	}
}

// RemainingRefundable is how many units of the line can still be refunded.
func (i *Item) RemainingRefundable() int {
	return i.Quantity - i.RefundedQuantity
}
