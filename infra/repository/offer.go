package repository

import (
	"context"
	"time"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type offerRepository struct {
	db *gorm.DB
}

// NewOfferRepository creates an offer repository over the given DB session.
func NewOfferRepository(db *gorm.DB) repository.OfferRepository {
	return &offerRepository{db: db}
}

// ListActive filters on the indexed status and window columns; store
// targeting lives in the JSON payload and is applied after unmarshalling.
// A payload that fails to parse is skipped, never fatal: one broken offer
// must not take down every sale at the store.
func (r *offerRepository) ListActive(
	ctx context.Context,
	storeID uuid.UUID,
	code currency.Code,
	now time.Time,
) ([]*offer.Offer, error) {
	var models []Offer
	err := r.db.WithContext(ctx).
		Where("status = ?", string(offer.StatusActive)).
		Where("starts_at <= ?", now).
		Where("ends_at IS NULL OR ends_at >= ?", now).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	offers := make([]*offer.Offer, 0, len(models))
	for i := range models {
		o, err := toOfferDomain(&models[i])
		if err != nil {
			continue
		}
		if len(o.Targeting.StoreIDs) > 0 && !containsStore(o.Targeting.StoreIDs, storeID) {
			continue
		}
		offers = append(offers, o)
	}
	return offers, nil
}

func containsStore(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
