// Package catalog holds the read-only master-data references the transaction
// engine consumes: products with currency-matched prices, stores with their
// tax configuration, customers and payment modes. These records are owned by
// the back-office CRUD surface; the engine only ever reads them.
package catalog

import (
	"errors"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrProductNotFound is returned when a product id cannot be resolved.
	ErrProductNotFound = errors.New("product not found")
	// ErrStoreNotFound is returned when a store id cannot be resolved.
	ErrStoreNotFound = errors.New("store not found")
	// ErrCustomerNotFound is returned when a customer id cannot be resolved.
	ErrCustomerNotFound = errors.New("customer not found")
	// ErrPriceNotAvailable is returned when a product carries no price for
	// the sale's currency.
	ErrPriceNotAvailable = errors.New("product has no price in sale currency")
)

// Product is a sellable product reference. Prices are keyed by currency in
// minor units and are already store-resolved by the repository.
type Product struct {
	ID         uuid.UUID
	SKU        string
	Name       string
	CategoryID uuid.UUID
	BrandID    uuid.UUID
	Prices     map[currency.Code]int64
	Active     bool
}

// Store is the selling location. TaxPercent is a flat percentage; when
// TaxInclusive is set, listed prices already embed the tax.
type Store struct {
	ID           uuid.UUID
	Name         string
	Currency     currency.Code
	TaxPercent   decimal.Decimal
	TaxInclusive bool
}

// Customer carries the standing discount copied onto a sale at attach time.
type Customer struct {
	ID              uuid.UUID
	Name            string
	DiscountPercent decimal.Decimal
}

// PaymentMode is a tender type reference (cash, card, voucher, ...).
type PaymentMode struct {
	ID   uuid.UUID
	Name string
}
