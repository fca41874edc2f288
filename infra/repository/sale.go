package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type saleRepository struct {
	db *gorm.DB
}

// NewSaleRepository creates a sale repository over the given DB session.
func NewSaleRepository(db *gorm.DB) repository.SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Get(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	var m Sale
	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.created_at") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("sale_payments.created_at") }).
		First(&m, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, result.Error
	}
	return toSaleDomain(&m)
}

func (r *saleRepository) GetDraft(ctx context.Context, storeID, employeeID uuid.UUID) (*sale.Sale, error) {
	var m Sale
	result := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sale_items.created_at") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("sale_payments.created_at") }).
		First(&m, "store_id = ? AND employee_id = ? AND status = ?",
			storeID, employeeID, string(sale.StatusDraft))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, sale.ErrSaleNotFound
		}
		return nil, result.Error
	}
	return toSaleDomain(&m)
}

// Create inserts a new draft. ON CONFLICT DO NOTHING against the partial
// unique index keeps the transaction usable after losing the race, so the
// caller can retry as a lookup in the same unit of work.
func (r *saleRepository) Create(ctx context.Context, s *sale.Sale) error {
	m, err := toSaleModel(s)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Omit("Items", "Payments").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(m)
	if result.Error != nil {
		return MapGormErrorToDomain(result.Error, sale.ErrSaleNotFound)
	}
	if result.RowsAffected == 0 {
		return repository.ErrDraftExists
	}
	return nil
}

// Save persists the aggregate. Items and payments are written as a full
// replacement: lines removed from the aggregate are deleted, the rest
// upserted. All of it rides the caller's transaction.
func (r *saleRepository) Save(ctx context.Context, s *sale.Sale) error {
	m, err := toSaleModel(s)
	if err != nil {
		return err
	}
	tx := r.db.WithContext(ctx)

	if err := tx.Omit("Items", "Payments").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(m).Error; err != nil {
		return MapGormErrorToDomain(err, sale.ErrSaleNotFound)
	}

	keepItems := make([]uuid.UUID, 0, len(m.Items))
	for i := range m.Items {
		item := &m.Items[i]
		keepItems = append(keepItems, item.ID)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(item).Error; err != nil {
			return err
		}
	}
	if err := deleteMissing(tx, &SaleItem{}, s.ID, keepItems); err != nil {
		return err
	}

	keepPayments := make([]uuid.UUID, 0, len(m.Payments))
	for i := range m.Payments {
		p := &m.Payments[i]
		keepPayments = append(keepPayments, p.ID)
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(p).Error; err != nil {
			return err
		}
	}
	return deleteMissing(tx, &SalePayment{}, s.ID, keepPayments)
}

func deleteMissing(tx *gorm.DB, model any, saleID uuid.UUID, keep []uuid.UUID) error {
	q := tx.Where("sale_id = ?", saleID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(model).Error
}
