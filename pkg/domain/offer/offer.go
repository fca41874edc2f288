// Package offer defines promotional offer configuration and the resolved
// result snapshot stored on a sale line.
package offer

import (
	"time"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind discriminates the offer variants. The kind decides which of the
// kind-specific fields on Offer are meaningful.
type Kind string

const (
	// KindSimple is a percentage or fixed amount off qualifying products.
	KindSimple Kind = "simple"
	// KindBundle requires a number of units of a target product or category
	// on the line before the reward unlocks.
	KindBundle Kind = "bundle"
	// KindMinimumSpend requires the cart subtotal to reach a threshold in a
	// specific currency.
	KindMinimumSpend Kind = "minimum_spend"
)

// DiscountType tells how the offer's reward is expressed.
type DiscountType string

const (
	// DiscountPercentage is a percentage off the line.
	DiscountPercentage DiscountType = "percentage"
	// DiscountAmount is a fixed amount off per unit, in a named currency.
	DiscountAmount DiscountType = "amount"
)

// Status is the offer's administrative state.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Targeting restricts which stores and products an offer applies to.
// An empty slice means "no restriction" for that dimension.
type Targeting struct {
	StoreIDs    []uuid.UUID
	ProductIDs  []uuid.UUID
	CategoryIDs []uuid.UUID
	BrandIDs    []uuid.UUID
}

// ItemRef identifies a product and its classification for targeting checks.
type ItemRef struct {
	ProductID  uuid.UUID
	CategoryID uuid.UUID
	BrandID    uuid.UUID
}

// Offer is a promotional rule. Amounts, MaxDiscounts and MinSpends are keyed
// by currency in minor units; a missing entry for the transaction's currency
// makes the offer not applicable rather than an error.
type Offer struct {
	ID           uuid.UUID
	Name         string
	Kind         Kind
	Status       Status
	StartsAt     time.Time
	EndsAt       time.Time
	Priority     int
	Combinable   bool
	DiscountType DiscountType
	Percent      decimal.Decimal
	Amounts      map[currency.Code]int64
	MaxDiscounts map[currency.Code]int64
	Targeting    Targeting

	// Bundle fields (KindBundle): the reward unlocks once the line holds at
	// least BundleQuantity units of the bundle target.
	BundleQuantity   int
	BundleProductID  *uuid.UUID
	BundleCategoryID *uuid.UUID

	// Minimum-spend fields (KindMinimumSpend).
	MinSpends map[currency.Code]int64
}

// ActiveAt reports whether the offer's status is active and its activity
// window contains now. A zero EndsAt means no end date.
func (o *Offer) ActiveAt(now time.Time) bool {
	if o.Status != StatusActive {
		return false
	}
	if now.Before(o.StartsAt) {
		return false
	}
	if !o.EndsAt.IsZero() && now.After(o.EndsAt) {
		return false
	}
	return true
}

// Targets reports whether the offer's targeting matches the given item and
// store. Product, category and brand restrictions are alternatives: matching
// any one of them qualifies the item.
func (o *Offer) Targets(item ItemRef, storeID uuid.UUID) bool {
	if len(o.Targeting.StoreIDs) > 0 && !containsID(o.Targeting.StoreIDs, storeID) {
		return false
	}
	if len(o.Targeting.ProductIDs) == 0 &&
		len(o.Targeting.CategoryIDs) == 0 &&
		len(o.Targeting.BrandIDs) == 0 {
		return true
	}
	return containsID(o.Targeting.ProductIDs, item.ProductID) ||
		containsID(o.Targeting.CategoryIDs, item.CategoryID) ||
		containsID(o.Targeting.BrandIDs, item.BrandID)
}

// BundleSatisfied reports whether a line with the given item and quantity
// unlocks this bundle offer.
func (o *Offer) BundleSatisfied(item ItemRef, quantity int) bool {
	if o.Kind != KindBundle || quantity < o.BundleQuantity || o.BundleQuantity <= 0 {
		return false
	}
	if o.BundleProductID != nil {
		return *o.BundleProductID == item.ProductID
	}
	if o.BundleCategoryID != nil {
		return *o.BundleCategoryID == item.CategoryID
	}
	return false
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// Result is the resolved discount snapshot stored on a sale line. It is
// denormalized on purpose: later changes to the offer configuration must not
// affect an item that already resolved.
type Result struct {
	OfferID      uuid.UUID
	Name         string
	DiscountType DiscountType
	// Percent is set for percentage rewards; the pricing pipeline applies it
	// to the line's remaining amount.
	Percent decimal.Decimal
	// Amount is the resolved fixed discount for the whole line, already
	// clipped to the offer's max discount.
	Amount     money.Money
	Combinable bool
}
