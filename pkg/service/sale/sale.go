// Package sale orchestrates the transaction engine: draft registry, line
// mutations with offer resolution, pricing refresh, lifecycle transitions
// and the side effects they publish. Every mutating operation runs inside
// one unit of work, reprices the sale and appends a version before the
// caller sees the result.
package sale

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/domain/events"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/eventbus"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/amirasaad/pos/pkg/pricing"
	"github.com/amirasaad/pos/pkg/repository"
	"github.com/amirasaad/pos/pkg/service/audit"
	offersvc "github.com/amirasaad/pos/pkg/service/offer"
	"github.com/google/uuid"
)

// Deps bundles everything the service needs.
type Deps struct {
	Uow       repository.UnitOfWork
	Stores    repository.StoreRepository
	Products  repository.ProductRepository
	Customers repository.CustomerRepository
	Resolver  *offersvc.Service
	Recorder  *audit.Service
	Bus       eventbus.EventBus
	Logger    *slog.Logger
}

// Service provides the transaction engine operations.
type Service struct {
	uow       repository.UnitOfWork
	stores    repository.StoreRepository
	products  repository.ProductRepository
	customers repository.CustomerRepository
	resolver  *offersvc.Service
	recorder  *audit.Service
	bus       eventbus.EventBus
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates a new Service with the provided dependencies.
func NewService(deps Deps) *Service {
	return &Service{
		uow:       deps.Uow,
		stores:    deps.Stores,
		products:  deps.Products,
		customers: deps.Customers,
		resolver:  deps.Resolver,
		recorder:  deps.Recorder,
		bus:       deps.Bus,
		logger:    deps.Logger,
		now:       time.Now,
	}
}

// WithClock overrides the service's clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Get loads a sale with its items and payments.
func (s *Service) Get(ctx context.Context, saleID uuid.UUID) (target *sale.Sale, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Sales()
		if err != nil {
			return err
		}
		target, err = repo.Get(ctx, saleID)
		return err
	})
	return
}

// FindOrCreateDraft returns the open draft for (store, employee), creating
// one when none exists. The currency is fixed at first creation: repeated
// calls return the existing draft regardless of the currency argument. A
// concurrent create that loses the storage-level uniqueness race retries as
// a lookup.
func (s *Service) FindOrCreateDraft(
	ctx context.Context,
	storeID, employeeID uuid.UUID,
	code currency.Code,
) (target *sale.Sale, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Sales()
		if err != nil {
			return err
		}

		target, err = repo.GetDraft(ctx, storeID, employeeID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, sale.ErrSaleNotFound) {
			return err
		}

		store, err := s.stores.Get(ctx, storeID)
		if err != nil {
			return err
		}
		if code == "" {
			code = store.Currency
		}
		target, err = sale.New().
			WithStore(storeID).
			WithEmployee(employeeID).
			WithCurrency(code).
			WithCreatedAt(s.now()).
			Build()
		if err != nil {
			return err
		}

		if err := repo.Create(ctx, target); err != nil {
			if errors.Is(err, repository.ErrDraftExists) {
				// Lost the race; the winner's draft is the answer.
				target, err = repo.GetDraft(ctx, storeID, employeeID)
			}
			return err
		}
		s.recorder.Record(ctx, uow, target, employeeID)
		s.logger.Info(
			"draft created",
			"sale_id", target.ID,
			"store_id", storeID,
			"employee_id", employeeID,
			"currency", code,
		)
		return nil
	})
	if err != nil {
		target = nil
	}
	return
}

// mutate runs fn against a loaded sale inside one unit of work, then
// reprices, saves and records a version. Every mutating operation goes
// through here so the caller-visible state is always internally consistent.
func (s *Service) mutate(
	ctx context.Context,
	saleID, actorID uuid.UUID,
	fn func(ctx context.Context, target *sale.Sale, store *catalog.Store) error,
) (result *sale.Sale, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.Sales()
		if err != nil {
			return err
		}
		target, err := repo.Get(ctx, saleID)
		if err != nil {
			return err
		}
		store, err := s.stores.Get(ctx, target.StoreID)
		if err != nil {
			return err
		}
		if err := fn(ctx, target, store); err != nil {
			return err
		}
		if err := s.reprice(target, store); err != nil {
			return err
		}
		if err := repo.Save(ctx, target); err != nil {
			return err
		}
		s.recorder.Record(ctx, uow, target, actorID)
		result = target
		return nil
	})
	if err != nil {
		result = nil
	}
	return
}

// reprice recomputes the full pricing snapshot from the sale's current
// lines and discounts.
func (s *Service) reprice(target *sale.Sale, store *catalog.Store) error {
	breakdown, err := pricing.Compute(target.PricingInput(store.TaxPercent, store.TaxInclusive))
	if err != nil {
		return err
	}
	target.ApplyBreakdown(breakdown)
	return nil
}

// resolveLine refreshes one line's offer snapshot against the current rule
// set and the cart's raw subtotal.
func (s *Service) resolveLine(ctx context.Context, target *sale.Sale, item *sale.Item) error {
	subtotal := money.Zero(target.Currency)
	for _, line := range target.Items {
		total, err := subtotal.Add(line.UnitPrice.MultiplyQty(line.Quantity))
		if err != nil {
			return err
		}
		subtotal = total
	}
	result, err := s.resolver.Resolve(ctx, offersvc.ResolveInput{
		Item:         item.Ref(),
		StoreID:      target.StoreID,
		Currency:     target.Currency,
		UnitPrice:    item.UnitPrice,
		Quantity:     item.Quantity,
		CartSubtotal: subtotal,
	})
	if err != nil {
		return err
	}
	item.Offer = result
	return nil
}

// resolveAll refreshes every line's offer snapshot. Simple offers resolve
// to the same result they already hold; only bundle and minimum-spend
// outcomes can change when the cart composition does.
func (s *Service) resolveAll(ctx context.Context, target *sale.Sale) error {
	for _, item := range target.Items {
		if err := s.resolveLine(ctx, target, item); err != nil {
			return err
		}
	}
	return nil
}

// AddItem adds a product to the draft. The unit price is snapshotted from
// the product's price in the sale's currency; an offer is resolved and
// stored on the new line.
func (s *Service) AddItem(
	ctx context.Context,
	saleID, productID uuid.UUID,
	quantity int,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		product, err := s.products.Get(ctx, productID)
		if err != nil {
			return err
		}
		price, ok := product.Prices[target.Currency]
		if !ok {
			return catalog.ErrPriceNotAvailable
		}
		item := &sale.Item{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductSKU:  product.SKU,
			ProductName: product.Name,
			CategoryID:  product.CategoryID,
			BrandID:     product.BrandID,
			Quantity:    quantity,
			UnitPrice:   money.NewFromMinor(price, target.Currency),
		}
		if err := target.AddItem(item); err != nil {
			return err
		}
		return s.resolveLine(ctx, target, item)
	})
}

// UpdateItemInput carries the optional fields of an item update. A nil
// field is left unchanged.
type UpdateItemInput struct {
	Quantity  *int
	UnitPrice *int64
}

// UpdateItem changes a line's quantity or applies a manager price override.
// A quantity change re-resolves the line's offer, since bundle rewards
// depend on it. A quantity of zero removes the line.
func (s *Service) UpdateItem(
	ctx context.Context,
	saleID, itemID uuid.UUID,
	in UpdateItemInput,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		if in.UnitPrice != nil {
			price := money.NewFromMinor(*in.UnitPrice, target.Currency)
			if err := target.OverrideItemPrice(itemID, price); err != nil {
				return err
			}
		}
		if in.Quantity != nil {
			if err := target.UpdateItemQuantity(itemID, *in.Quantity); err != nil {
				return err
			}
			if *in.Quantity == 0 {
				return s.resolveAll(ctx, target)
			}
			item, err := target.FindItem(itemID)
			if err != nil {
				return err
			}
			return s.resolveLine(ctx, target, item)
		}
		return nil
	})
}

// RemoveItem deletes a line and re-resolves the remaining ones, since a
// bundle or minimum-spend offer on another line may have depended on it.
func (s *Service) RemoveItem(
	ctx context.Context,
	saleID, itemID uuid.UUID,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		if err := target.RemoveItem(itemID); err != nil {
			return err
		}
		return s.resolveAll(ctx, target)
	})
}

// SetCustomer attaches a customer, copying its standing discount onto the
// sale, or detaches the current one when customerID is nil.
func (s *Service) SetCustomer(
	ctx context.Context,
	saleID uuid.UUID,
	customerID *uuid.UUID,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		if customerID == nil {
			return target.DetachCustomer()
		}
		customer, err := s.customers.Get(ctx, *customerID)
		if err != nil {
			return err
		}
		return target.AttachCustomer(customer.ID, customer.DiscountPercent)
	})
}

// ClearCustomerDiscount stops applying the attached customer's discount
// without detaching the customer.
func (s *Service) ClearCustomerDiscount(ctx context.Context, saleID, actorID uuid.UUID) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.ClearCustomerDiscount()
	})
}

// RestoreCustomerDiscount resumes applying the attached customer's
// discount.
func (s *Service) RestoreCustomerDiscount(ctx context.Context, saleID, actorID uuid.UUID) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.RestoreCustomerDiscount()
	})
}

// ApplyManualDiscount sets the cashier discount on the sale, replacing any
// existing one.
func (s *Service) ApplyManualDiscount(
	ctx context.Context,
	saleID uuid.UUID,
	md pricing.ManualDiscount,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.ApplyManualDiscount(md)
	})
}

// ClearManualDiscount removes the cashier discount.
func (s *Service) ClearManualDiscount(ctx context.Context, saleID, actorID uuid.UUID) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.ClearManualDiscount()
	})
}

// AddPayment records a tender on the draft. Payments may arrive in any
// order; nothing is enforced against the total until Complete.
func (s *Service) AddPayment(
	ctx context.Context,
	saleID, paymentModeID uuid.UUID,
	amountMinor int64,
	metadata map[string]string,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.AddPayment(&sale.Payment{
			ID:            uuid.New(),
			PaymentModeID: paymentModeID,
			Amount:        money.NewFromMinor(amountMinor, target.Currency),
			Metadata:      metadata,
			CreatedBy:     actorID,
			CreatedAt:     s.now(),
		})
	})
}

// RemovePayment deletes a tender from the draft.
func (s *Service) RemovePayment(ctx context.Context, saleID, paymentID, actorID uuid.UUID) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.RemovePayment(paymentID)
	})
}

// Suspend parks the draft, releasing the cashier for the next customer.
func (s *Service) Suspend(ctx context.Context, saleID, actorID uuid.UUID) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.Suspend()
	})
}

// Resume returns a suspended sale to draft.
func (s *Service) Resume(ctx context.Context, saleID, actorID uuid.UUID) (*sale.Sale, error) {
	return s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.Resume()
	})
}

// Complete finalizes the sale and requests the inventory deductions. The
// events go out only after the transaction commits.
func (s *Service) Complete(ctx context.Context, saleID, actorID uuid.UUID) (*sale.Sale, error) {
	completed, err := s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.Complete(s.now())
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, item := range completed.Items {
		s.publish(ctx, events.InventoryAdjustmentRequested{
			SaleID:     completed.ID,
			ProductID:  item.ProductID,
			StoreID:    completed.StoreID,
			Delta:      -item.Quantity,
			Reason:     events.ReasonSaleCompleted,
			OccurredAt: now,
		})
	}
	s.publish(ctx, events.SaleCompleted{
		SaleID:      completed.ID,
		StoreID:     completed.StoreID,
		EmployeeID:  completed.EmployeeID,
		GrandTotal:  completed.GrandTotal.Amount(),
		Currency:    string(completed.Currency),
		CompletedAt: now,
	})
	return completed, nil
}

// Void cancels the sale. Voiding a completed sale additionally requests the
// inventory reversal for the units still out, exactly once: refunded units
// were restocked by Refund, and a second void is rejected as an invalid
// state before any event fires.
func (s *Service) Void(ctx context.Context, saleID uuid.UUID, reason string, actorID uuid.UUID) (*sale.Sale, error) {
	wasCompleted := false
	voided, err := s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		wasCompleted = target.Status == sale.StatusCompleted
		return target.Void(reason, s.now())
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	if wasCompleted {
		for _, item := range voided.Items {
			// Refunded units were already restocked; reverse only the rest.
			delta := item.RemainingRefundable()
			if delta == 0 {
				continue
			}
			s.publish(ctx, events.InventoryAdjustmentRequested{
				SaleID:     voided.ID,
				ProductID:  item.ProductID,
				StoreID:    voided.StoreID,
				Delta:      delta,
				Reason:     events.ReasonSaleVoided,
				OccurredAt: now,
			})
		}
	}
	s.publish(ctx, events.SaleVoided{
		SaleID:       voided.ID,
		StoreID:      voided.StoreID,
		Reason:       reason,
		WasCompleted: wasCompleted,
		VoidedAt:     now,
	})
	return voided, nil
}

// Refund returns units on a completed sale and requests the matching
// inventory restock.
func (s *Service) Refund(
	ctx context.Context,
	saleID uuid.UUID,
	lines []sale.RefundLine,
	actorID uuid.UUID,
) (*sale.Sale, error) {
	refunded, err := s.mutate(ctx, saleID, actorID, func(ctx context.Context, target *sale.Sale, store *catalog.Store) error {
		return target.Refund(lines, s.now())
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	units := 0
	reason := ""
	for _, line := range lines {
		units += line.Quantity
		reason = line.Reason
		item, err := refunded.FindItem(line.ItemID)
		if err != nil {
			continue
		}
		s.publish(ctx, events.InventoryAdjustmentRequested{
			SaleID:     refunded.ID,
			ProductID:  item.ProductID,
			StoreID:    refunded.StoreID,
			Delta:      line.Quantity,
			Reason:     events.ReasonSaleRefunded,
			OccurredAt: now,
		})
	}
	s.publish(ctx, events.SaleRefunded{
		SaleID:     refunded.ID,
		StoreID:    refunded.StoreID,
		Units:      units,
		Reason:     reason,
		RefundedAt: now,
	})
	return refunded, nil
}

// publish sends one event, logging instead of failing: event delivery is
// not a correctness gate for the sale itself.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Error("event publish failed", "event", event.Type(), "error", err)
	}
}
