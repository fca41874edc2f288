package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a product repository over the given DB
// session.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var m Product
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, result.Error
	}
	return toProductDomain(&m)
}

type storeRepository struct {
	db *gorm.DB
}

// NewStoreRepository creates a store repository over the given DB session.
func NewStoreRepository(db *gorm.DB) repository.StoreRepository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Get(ctx context.Context, id uuid.UUID) (*catalog.Store, error) {
	var m Store
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrStoreNotFound
		}
		return nil, result.Error
	}
	return toStoreDomain(&m)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a customer repository over the given DB
// session.
func NewCustomerRepository(db *gorm.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*catalog.Customer, error) {
	var m Customer
	result := r.db.WithContext(ctx).First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrCustomerNotFound
		}
		return nil, result.Error
	}
	return toCustomerDomain(&m)
}
