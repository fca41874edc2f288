// Package repository defines the persistence contracts the engine depends
// on. Implementations live under infra/repository; services receive them
// through the UnitOfWork so every mutation shares one transaction boundary.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/google/uuid"
)

// ErrDraftExists is returned by SaleRepository.Create when another draft
// already holds the (store, employee) slot. The storage layer enforces this
// with a uniqueness constraint, so two near-simultaneous creates cannot both
// win; the loser retries as a lookup.
var ErrDraftExists = errors.New("open draft already exists for store and employee")

// SaleRepository persists the transaction aggregate.
type SaleRepository interface {
	// Get loads a sale with its items and payments, or sale.ErrSaleNotFound.
	Get(ctx context.Context, id uuid.UUID) (*sale.Sale, error)
	// GetDraft returns the open draft for (store, employee), or
	// sale.ErrSaleNotFound when none is open.
	GetDraft(ctx context.Context, storeID, employeeID uuid.UUID) (*sale.Sale, error)
	// Create inserts a new draft, returning ErrDraftExists when the
	// uniqueness constraint rejects it.
	Create(ctx context.Context, s *sale.Sale) error
	// Save persists the aggregate's current state, items and payments
	// included.
	Save(ctx context.Context, s *sale.Sale) error
}

// VersionRepository is the append-only audit ledger. There is deliberately
// no update or delete operation.
type VersionRepository interface {
	Create(ctx context.Context, v *sale.Version) error
	// NextNumber returns the next monotonic version number for a sale.
	NextNumber(ctx context.Context, saleID uuid.UUID) (int, error)
	// ListBySale returns versions in descending version-number order.
	ListBySale(ctx context.Context, saleID uuid.UUID) ([]*sale.Version, error)
	GetByNumber(ctx context.Context, saleID uuid.UUID, number int) (*sale.Version, error)
}

// OfferRepository is the read-only offer lookup for the resolver.
type OfferRepository interface {
	// ListActive returns offers whose window contains now and whose store
	// targeting admits the given store.
	ListActive(ctx context.Context, storeID uuid.UUID, code currency.Code, now time.Time) ([]*offer.Offer, error)
}

// ProductRepository is the read-only product lookup.
type ProductRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
}

// StoreRepository is the read-only store lookup.
type StoreRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Store, error)
}

// CustomerRepository is the read-only customer lookup.
type CustomerRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Customer, error)
}

// UnitOfWork provides a transaction boundary and repository access bound to
// it. Keeping repository access on the UnitOfWork guarantees all operations
// inside Do share one DB session, which is what makes the draft-registry
// insert-then-select race resolution sound.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary; an error rolls back.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Sales() (SaleRepository, error)
	Versions() (VersionRepository, error)
}
