// Package fixtures provides in-memory repository and event-bus fakes for
// service tests. The sale store honors the one-open-draft-per-(store,
// employee) constraint the real storage layer enforces with a partial
// unique index, so draft-registry races can be exercised without a
// database.
package fixtures

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/domain/events"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
)

type draftKey struct {
	storeID    uuid.UUID
	employeeID uuid.UUID
}

// SaleStore is an in-memory sale repository.
type SaleStore struct {
	mu     sync.Mutex
	sales  map[uuid.UUID]*sale.Sale
	drafts map[draftKey]uuid.UUID
}

// NewSaleStore creates an empty sale store.
func NewSaleStore() *SaleStore {
	return &SaleStore{
		sales:  make(map[uuid.UUID]*sale.Sale),
		drafts: make(map[draftKey]uuid.UUID),
	}
}

// Get implements repository.SaleRepository.
func (s *SaleStore) Get(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found, ok := s.sales[id]
	if !ok {
		return nil, sale.ErrSaleNotFound
	}
	return found, nil
}

// GetDraft implements repository.SaleRepository.
func (s *SaleStore) GetDraft(ctx context.Context, storeID, employeeID uuid.UUID) (*sale.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.drafts[draftKey{storeID, employeeID}]
	if !ok {
		return nil, sale.ErrSaleNotFound
	}
	return s.sales[id], nil
}

// Create implements repository.SaleRepository, enforcing the single open
// draft constraint the same way the partial unique index does.
func (s *SaleStore) Create(ctx context.Context, target *sale.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := draftKey{target.StoreID, target.EmployeeID}
	if _, exists := s.drafts[key]; exists {
		return repository.ErrDraftExists
	}
	s.sales[target.ID] = target
	s.drafts[key] = target.ID
	return nil
}

// Save implements repository.SaleRepository. Leaving draft status releases
// the (store, employee) slot.
func (s *SaleStore) Save(ctx context.Context, target *sale.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales[target.ID] = target
	key := draftKey{target.StoreID, target.EmployeeID}
	if target.Status == sale.StatusDraft {
		s.drafts[key] = target.ID
	} else if s.drafts[key] == target.ID {
		delete(s.drafts, key)
	}
	return nil
}

// VersionStore is an in-memory append-only version repository. Set
// FailCreates to make every Create fail, for exercising the best-effort
// recording path.
type VersionStore struct {
	mu          sync.Mutex
	bySale      map[uuid.UUID][]*sale.Version
	FailCreates bool
}

// NewVersionStore creates an empty version store.
func NewVersionStore() *VersionStore {
	return &VersionStore{bySale: make(map[uuid.UUID][]*sale.Version)}
}

// Create implements repository.VersionRepository.
func (v *VersionStore) Create(ctx context.Context, version *sale.Version) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.FailCreates {
		return context.DeadlineExceeded
	}
	v.bySale[version.SaleID] = append(v.bySale[version.SaleID], version)
	return nil
}

// NextNumber implements repository.VersionRepository.
func (v *VersionStore) NextNumber(ctx context.Context, saleID uuid.UUID) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.bySale[saleID]) + 1, nil
}

// ListBySale implements repository.VersionRepository, newest first.
func (v *VersionStore) ListBySale(ctx context.Context, saleID uuid.UUID) ([]*sale.Version, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	versions := append([]*sale.Version(nil), v.bySale[saleID]...)
	sort.Slice(versions, func(i, j int) bool { return versions[i].Number > versions[j].Number })
	return versions, nil
}

// GetByNumber implements repository.VersionRepository.
func (v *VersionStore) GetByNumber(ctx context.Context, saleID uuid.UUID, number int) (*sale.Version, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, version := range v.bySale[saleID] {
		if version.Number == number {
			return version, nil
		}
	}
	return nil, sale.ErrVersionNotFound
}

// UnitOfWork is a pass-through unit of work over the in-memory stores. Do
// runs fn directly; there is no rollback, which matches what the service
// tests need.
type UnitOfWork struct {
	SaleStore    *SaleStore
	VersionStore *VersionStore
}

// NewUnitOfWork creates a unit of work over fresh stores.
func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{
		SaleStore:    NewSaleStore(),
		VersionStore: NewVersionStore(),
	}
}

// Do implements repository.UnitOfWork.
func (u *UnitOfWork) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return fn(u)
}

// Sales implements repository.UnitOfWork.
func (u *UnitOfWork) Sales() (repository.SaleRepository, error) {
	return u.SaleStore, nil
}

// Versions implements repository.UnitOfWork.
func (u *UnitOfWork) Versions() (repository.VersionRepository, error) {
	return u.VersionStore, nil
}

// Catalog is an in-memory product, store and customer lookup.
type Catalog struct {
	Products  map[uuid.UUID]*catalog.Product
	Stores    map[uuid.UUID]*catalog.Store
	Customers map[uuid.UUID]*catalog.Customer
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		Products:  make(map[uuid.UUID]*catalog.Product),
		Stores:    make(map[uuid.UUID]*catalog.Store),
		Customers: make(map[uuid.UUID]*catalog.Customer),
	}
}

// ProductRepo exposes the catalog as a repository.ProductRepository.
func (c *Catalog) ProductRepo() repository.ProductRepository { return productRepo{c} }

// StoreRepo exposes the catalog as a repository.StoreRepository.
func (c *Catalog) StoreRepo() repository.StoreRepository { return storeRepo{c} }

// CustomerRepo exposes the catalog as a repository.CustomerRepository.
func (c *Catalog) CustomerRepo() repository.CustomerRepository { return customerRepo{c} }

type productRepo struct{ c *Catalog }

func (r productRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := r.c.Products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return p, nil
}

type storeRepo struct{ c *Catalog }

func (r storeRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.Store, error) {
	s, ok := r.c.Stores[id]
	if !ok {
		return nil, catalog.ErrStoreNotFound
	}
	return s, nil
}

type customerRepo struct{ c *Catalog }

func (r customerRepo) Get(ctx context.Context, id uuid.UUID) (*catalog.Customer, error) {
	cu, ok := r.c.Customers[id]
	if !ok {
		return nil, catalog.ErrCustomerNotFound
	}
	return cu, nil
}

// OfferList is a static offer repository.
type OfferList struct {
	Offers []*offer.Offer
}

// ListActive implements repository.OfferRepository.
func (o *OfferList) ListActive(
	ctx context.Context,
	storeID uuid.UUID,
	code currency.Code,
	now time.Time,
) ([]*offer.Offer, error) {
	return o.Offers, nil
}

// BusRecorder records every published event.
type BusRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

// Publish implements eventbus.EventBus.
func (b *BusRecorder) Publish(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

// Subscribe implements eventbus.EventBus. The recorder never dispatches.
func (b *BusRecorder) Subscribe(eventType string, handler func(context.Context, events.Event)) {}

// Events returns a copy of everything published so far.
func (b *BusRecorder) Events() []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]events.Event(nil), b.events...)
}
