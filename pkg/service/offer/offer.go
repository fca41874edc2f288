// Package offer selects the best applicable promotional offer for a sale
// line.
package offer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/pos/pkg/cache"
	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/google/uuid"
)

// candidateTTL bounds how long a stale offer configuration can keep
// resolving on new lines.
const candidateTTL = 2 * time.Minute

// ResolveInput describes one sale line plus the cart context the resolver
// needs for minimum-spend gating.
type ResolveInput struct {
	Item         offer.ItemRef
	StoreID      uuid.UUID
	Currency     currency.Code
	UnitPrice    money.Money
	Quantity     int
	CartSubtotal money.Money
}

// Service resolves offers against the configured rule set. The zero offer
// outcome is a nil result, never an error: a sale line without an offer is
// a normal state.
type Service struct {
	offers repository.OfferRepository
	cache  cache.OfferCache
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new resolver service. cache may be nil to resolve
// straight from the repository on every call.
func NewService(offers repository.OfferRepository, cache cache.OfferCache, logger *slog.Logger) *Service {
	return &Service{
		offers: offers,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the resolver's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Resolve returns the best applicable offer for the line, or nil when no
// offer applies. Malformed configuration (such as a missing amount for the
// transaction's currency) makes an offer not applicable, never an error.
func (s *Service) Resolve(ctx context.Context, in ResolveInput) (*offer.Result, error) {
	now := s.now()
	candidates, err := s.candidates(ctx, in.StoreID, in.Currency, now)
	if err != nil {
		return nil, fmt.Errorf("offer resolve: %w", err)
	}

	var (
		best         *offer.Offer
		bestDiscount int64
	)
	for _, o := range candidates {
		discount, ok := s.applicable(o, in, now)
		if !ok {
			continue
		}
		if best == nil ||
			o.Priority > best.Priority ||
			(o.Priority == best.Priority && discount > bestDiscount) {
			best = o
			bestDiscount = discount
		}
	}
	if best == nil {
		return nil, nil
	}

	s.logger.Debug(
		"offer resolved",
		"offer_id", best.ID,
		"name", best.Name,
		"product_id", in.Item.ProductID,
		"discount_minor", bestDiscount,
	)
	return s.result(best, in), nil
}

// candidates returns the active offers for (store, currency), served from
// cache when one is configured. Cache failures fall back to the repository.
func (s *Service) candidates(ctx context.Context, storeID uuid.UUID, code currency.Code, now time.Time) ([]*offer.Offer, error) {
	key := fmt.Sprintf("%s:%s", storeID, code)
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	offers, err := s.offers.ListActive(ctx, storeID, code, now)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, offers, candidateTTL); err != nil {
			s.logger.Warn("offer cache set failed", "key", key, "error", err)
		}
	}
	return offers, nil
}

// applicable reports whether the offer applies to the line and, when it
// does, the resulting line discount in minor units used for tie-breaking.
func (s *Service) applicable(o *offer.Offer, in ResolveInput, now time.Time) (int64, bool) {
	if !o.ActiveAt(now) {
		return 0, false
	}
	if !o.Targets(in.Item, in.StoreID) {
		return 0, false
	}

	switch o.Kind {
	case offer.KindSimple:
		// always eligible once targeted
	case offer.KindBundle:
		if !o.BundleSatisfied(in.Item, in.Quantity) {
			return 0, false
		}
	case offer.KindMinimumSpend:
		threshold, ok := o.MinSpends[in.Currency]
		if !ok {
			return 0, false
		}
		if in.CartSubtotal.Amount() < threshold {
			return 0, false
		}
	default:
		return 0, false
	}

	return s.lineDiscount(o, in)
}

// lineDiscount computes the discount the offer would grant against the raw
// line subtotal. Used only to rank offers; the pricing pipeline recomputes
// against the remaining amount when stacking.
func (s *Service) lineDiscount(o *offer.Offer, in ResolveInput) (int64, bool) {
	subtotal := in.UnitPrice.MultiplyQty(in.Quantity)

	switch o.DiscountType {
	case offer.DiscountPercentage:
		if o.Percent.IsZero() || o.Percent.IsNegative() {
			return 0, false
		}
		return subtotal.Percent(o.Percent).Amount(), true
	case offer.DiscountAmount:
		perUnit, ok := o.Amounts[in.Currency]
		if !ok || perUnit <= 0 {
			return 0, false
		}
		discount := perUnit * int64(in.Quantity)
		if max, ok := o.MaxDiscounts[in.Currency]; ok && discount > max {
			discount = max
		}
		if discount > subtotal.Amount() {
			discount = subtotal.Amount()
		}
		return discount, true
	default:
		return 0, false
	}
}

// result builds the denormalized snapshot stored on the sale line.
func (s *Service) result(o *offer.Offer, in ResolveInput) *offer.Result {
	r := &offer.Result{
		OfferID:      o.ID,
		Name:         o.Name,
		DiscountType: o.DiscountType,
		Combinable:   o.Combinable,
	}
	switch o.DiscountType {
	case offer.DiscountPercentage:
		r.Percent = o.Percent
	case offer.DiscountAmount:
		discount, _ := s.lineDiscount(o, in)
		r.Amount = money.NewFromMinor(discount, in.Currency)
	}
	return r
}
