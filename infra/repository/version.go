package repository

import (
	"context"
	"errors"

	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a version repository over the given DB
// session.
func NewVersionRepository(db *gorm.DB) repository.VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Create(ctx context.Context, v *sale.Version) error {
	m, err := toVersionModel(v)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *versionRepository) NextNumber(ctx context.Context, saleID uuid.UUID) (int, error) {
	var current int64
	err := r.db.WithContext(ctx).
		Model(&SaleVersion{}).
		Where("sale_id = ?", saleID).
		Select("COALESCE(MAX(number), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return int(current) + 1, nil
}

func (r *versionRepository) ListBySale(ctx context.Context, saleID uuid.UUID) ([]*sale.Version, error) {
	var models []SaleVersion
	err := r.db.WithContext(ctx).
		Where("sale_id = ?", saleID).
		Order("number DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	versions := make([]*sale.Version, 0, len(models))
	for i := range models {
		v, err := toVersionDomain(&models[i])
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, nil
}

func (r *versionRepository) GetByNumber(ctx context.Context, saleID uuid.UUID, number int) (*sale.Version, error) {
	var m SaleVersion
	result := r.db.WithContext(ctx).
		First(&m, "sale_id = ? AND number = ?", saleID, number)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, sale.ErrVersionNotFound
		}
		return nil, result.Error
	}
	return toVersionDomain(&m)
}
