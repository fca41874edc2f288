// Package cache defines the interface for caching offer candidate sets.
package cache

import (
	"context"
	"time"

	"github.com/amirasaad/pos/pkg/domain/offer"
)

// OfferCache caches the active-offer candidate set per (store, currency)
// key. A nil, nil return is a cache miss.
type OfferCache interface {
	Get(ctx context.Context, key string) ([]*offer.Offer, error)
	Set(ctx context.Context, key string, offers []*offer.Offer, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
