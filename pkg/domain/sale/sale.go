// Package sale owns the point-of-sale transaction aggregate and its
// lifecycle. All mutations go through the aggregate's methods; callers never
// assign fields directly, which keeps the pricing snapshot consistent with
// the items, discounts and payments it was computed from.
package sale

import (
	"errors"
	"fmt"
	"time"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/amirasaad/pos/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale is the transaction aggregate root.
//
// Invariants:
//   - Currency is fixed for the life of the sale; every item and payment is
//     validated against it.
//   - Structural mutation is allowed only while the status is draft.
//   - RefundedQuantity never exceeds Quantity on any line.
//   - The stored totals always equal a fresh pricing computation over the
//     current items and discounts.
type Sale struct {
	ID         uuid.UUID
	StoreID    uuid.UUID
	EmployeeID uuid.UUID
	Currency   currency.Code

	CustomerID              *uuid.UUID
	CustomerDiscountPercent decimal.Decimal
	// CustomerDiscountApplied toggles the application of the stored
	// percentage without forgetting it; "this customer normally gets a
	// discount, but not on this sale".
	CustomerDiscountApplied bool

	Manual *pricing.ManualDiscount

	Status   Status
	Items    []*Item
	Payments []*Payment

	Subtotal   money.Money
	Discount   money.Money
	Tax        money.Money
	GrandTotal money.Money

	VoidReason   string
	RefundReason string

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CompletedAt *time.Time
	VoidedAt    *time.Time
}

// Builder constructs Sale instances, following the house builder idiom for
// aggregates. Only valid drafts can be built.
type Builder struct {
	id         uuid.UUID
	storeID    uuid.UUID
	employeeID uuid.UUID
	currency   currency.Code
	createdAt  time.Time
}

// New creates a Builder with a fresh id and creation time.
func New() *Builder {
	return &Builder{id: uuid.New(), createdAt: time.Now()}
}

// WithID sets the sale id, for hydration from a data store.
func (b *Builder) WithID(id uuid.UUID) *Builder { b.id = id; return b }

// WithStore sets the selling store. Mandatory.
func (b *Builder) WithStore(id uuid.UUID) *Builder { b.storeID = id; return b }

// WithEmployee sets the operating employee. Mandatory.
func (b *Builder) WithEmployee(id uuid.UUID) *Builder { b.employeeID = id; return b }

// WithCurrency sets the transaction currency. Mandatory; immutable afterwards.
func (b *Builder) WithCurrency(code currency.Code) *Builder { b.currency = code; return b }

// WithCreatedAt sets the creation timestamp, for hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.createdAt = t; return b }

// Build validates the invariants and returns a new draft sale.
func (b *Builder) Build() (*Sale, error) {
	if b.storeID == uuid.Nil {
		return nil, errors.New("store is required")
	}
	if b.employeeID == uuid.Nil {
		return nil, errors.New("employee is required")
	}
	if !currency.IsSupported(b.currency) {
		return nil, currency.ErrUnsupportedCurrency
	}
	zero := money.Zero(b.currency)
	return &Sale{
		ID:         b.id,
		StoreID:    b.storeID,
		EmployeeID: b.employeeID,
		Currency:   b.currency,
		Status:     StatusDraft,
		Subtotal:   zero,
		Discount:   zero,
		Tax:        zero,
		GrandTotal: zero,
		CreatedAt:  b.createdAt,
		UpdatedAt:  b.createdAt,
	}, nil
}

func (s *Sale) ensureDraft() error {
	if s.Status != StatusDraft {
		return fmt.Errorf("%w: sale is %s", ErrInvalidState, s.Status)
	}
	return nil
}

func (s *Sale) touch() { s.UpdatedAt = time.Now() }

// FindItem returns the line with the given id, or ErrItemNotFound.
func (s *Sale) FindItem(itemID uuid.UUID) (*Item, error) {
	for _, item := range s.Items {
		if item.ID == itemID {
			return item, nil
		}
	}
	return nil, ErrItemNotFound
}

// FindItemByProduct returns the line holding the given product, if any.
func (s *Sale) FindItemByProduct(productID uuid.UUID) *Item {
	for _, item := range s.Items {
		if item.ProductID == productID {
			return item
		}
	}
	return nil
}

// AddItem appends a new line. One line per product: adding a product that is
// already on the sale fails; quantity changes go through UpdateItemQuantity.
func (s *Sale) AddItem(item *Item) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if item.Quantity < 1 {
		return ErrQuantityNotPositive
	}
	if item.UnitPrice.Currency() != s.Currency {
		return money.ErrCurrencyMismatch
	}
	if item.UnitPrice.IsNegative() {
		return ErrUnitPriceNegative
	}
	if s.FindItemByProduct(item.ProductID) != nil {
		return ErrDuplicateProduct
	}
	s.Items = append(s.Items, item)
	s.touch()
	return nil
}

// UpdateItemQuantity changes a line's quantity. A quantity of zero removes
// the line; a zero-quantity line is never retained.
func (s *Sale) UpdateItemQuantity(itemID uuid.UUID, quantity int) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if quantity < 0 {
		return ErrQuantityNotPositive
	}
	item, err := s.FindItem(itemID)
	if err != nil {
		return err
	}
	if quantity == 0 {
		return s.RemoveItem(itemID)
	}
	item.Quantity = quantity
	s.touch()
	return nil
}

// OverrideItemPrice sets a manager price override on a line. The override
// must not be negative and stays in the sale's currency.
func (s *Sale) OverrideItemPrice(itemID uuid.UUID, price money.Money) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if price.Currency() != s.Currency {
		return money.ErrCurrencyMismatch
	}
	if price.IsNegative() {
		return ErrUnitPriceNegative
	}
	item, err := s.FindItem(itemID)
	if err != nil {
		return err
	}
	item.UnitPrice = price
	s.touch()
	return nil
}

// SetItemOffer stores a freshly resolved offer snapshot on a line. A nil
// result clears the line's offer.
func (s *Sale) SetItemOffer(itemID uuid.UUID, result *offer.Result) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	item, err := s.FindItem(itemID)
	if err != nil {
		return err
	}
	item.Offer = result
	s.touch()
	return nil
}

// RemoveItem deletes a line.
func (s *Sale) RemoveItem(itemID uuid.UUID) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	for i, item := range s.Items {
		if item.ID == itemID {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			s.touch()
			return nil
		}
	}
	return ErrItemNotFound
}

// AttachCustomer links a customer and copies its standing discount onto the
// sale; the copy is what pricing uses from then on.
func (s *Sale) AttachCustomer(customerID uuid.UUID, discountPercent decimal.Decimal) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	s.CustomerID = &customerID
	s.CustomerDiscountPercent = discountPercent
	s.CustomerDiscountApplied = true
	s.touch()
	return nil
}

// DetachCustomer removes the customer and its discount.
func (s *Sale) DetachCustomer() error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	s.CustomerID = nil
	s.CustomerDiscountPercent = decimal.Zero
	s.CustomerDiscountApplied = false
	s.touch()
	return nil
}

// ClearCustomerDiscount stops applying the stored customer discount without
// detaching the customer or forgetting the percentage. Idempotent.
func (s *Sale) ClearCustomerDiscount() error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if s.CustomerID == nil {
		return ErrNoCustomer
	}
	s.CustomerDiscountApplied = false
	s.touch()
	return nil
}

// RestoreCustomerDiscount re-applies the stored percentage. Idempotent.
func (s *Sale) RestoreCustomerDiscount() error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if s.CustomerID == nil {
		return ErrNoCustomer
	}
	s.CustomerDiscountApplied = true
	s.touch()
	return nil
}

// ApplyManualDiscount sets the single manual discount on the sale, replacing
// any previous one. Percentages must be in (0,100]; amounts must be positive
// and in the sale's currency.
func (s *Sale) ApplyManualDiscount(md pricing.ManualDiscount) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	switch md.Type {
	case pricing.ManualPercentage:
		if !md.Percent.IsPositive() || md.Percent.GreaterThan(decimal.NewFromInt(100)) {
			return ErrDiscountOutOfRange
		}
	case pricing.ManualAmount:
		if md.Amount.Currency() != s.Currency {
			return money.ErrCurrencyMismatch
		}
		if !md.Amount.IsPositive() {
			return ErrDiscountOutOfRange
		}
	default:
		return ErrDiscountOutOfRange
	}
	s.Manual = &md
	s.touch()
	return nil
}

// ClearManualDiscount removes the manual discount. Idempotent.
func (s *Sale) ClearManualDiscount() error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	s.Manual = nil
	s.touch()
	return nil
}

// AddPayment records a tender. Payments may be added in any order; no
// running total is enforced until Complete.
func (s *Sale) AddPayment(p *Payment) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if p.Amount.Currency() != s.Currency {
		return money.ErrCurrencyMismatch
	}
	if !p.Amount.IsPositive() {
		return ErrPaymentAmountNotPositive
	}
	s.Payments = append(s.Payments, p)
	s.touch()
	return nil
}

// RemovePayment deletes a tender.
func (s *Sale) RemovePayment(paymentID uuid.UUID) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	for i, p := range s.Payments {
		if p.ID == paymentID {
			s.Payments = append(s.Payments[:i], s.Payments[i+1:]...)
			s.touch()
			return nil
		}
	}
	return ErrPaymentNotFound
}

// PaymentsTotal sums the collected tenders.
func (s *Sale) PaymentsTotal() money.Money {
	total := money.Zero(s.Currency)
	for _, p := range s.Payments {
		total, _ = total.Add(p.Amount)
	}
	return total
}

// Suspend pauses a draft. An empty draft may be suspended.
func (s *Sale) Suspend() error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	s.Status = StatusSuspended
	s.touch()
	return nil
}

// Resume returns a suspended sale to draft.
func (s *Sale) Resume() error {
	if s.Status != StatusSuspended {
		return fmt.Errorf("%w: sale is %s", ErrInvalidState, s.Status)
	}
	s.Status = StatusDraft
	s.touch()
	return nil
}

// Complete finalizes the sale. It requires at least one item and payments
// summing to the grand total exactly; over- and under-payment are rejected
// so the ledger stays exact. One-way except via Void.
func (s *Sale) Complete(now time.Time) error {
	if err := s.ensureDraft(); err != nil {
		return err
	}
	if len(s.Items) == 0 {
		return ErrEmptySale
	}
	if !s.PaymentsTotal().Equals(s.GrandTotal) {
		return fmt.Errorf("%w: paid %s, due %s",
			ErrPaymentMismatch, s.PaymentsTotal(), s.GrandTotal)
	}
	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.touch()
	return nil
}

// Void cancels the sale from any non-voided state. Voiding a completed sale
// requires a reason; inventory reversal is the caller's side effect.
func (s *Sale) Void(reason string, now time.Time) error {
	if s.Status == StatusVoided {
		return fmt.Errorf("%w: sale already voided", ErrInvalidState)
	}
	if s.Status == StatusCompleted && reason == "" {
		return ErrVoidReasonRequired
	}
	s.Status = StatusVoided
	s.VoidReason = reason
	s.VoidedAt = &now
	s.touch()
	return nil
}

// RefundLine is one requested refund: a line, a unit count and a reason.
type RefundLine struct {
	ItemID   uuid.UUID
	Quantity int
	Reason   string
}

// Refund records a partial-quantity refund against a completed sale. It is
// repeatable until every line is fully refunded. Monetary totals already
// recorded are not changed; refunds are a separate ledger so the completed
// snapshot keeps its integrity. All lines are validated before any mutation.
func (s *Sale) Refund(lines []RefundLine, now time.Time) error {
	if s.Status != StatusCompleted {
		return fmt.Errorf("%w: refund requires a completed sale, got %s",
			ErrInvalidState, s.Status)
	}
	if len(lines) == 0 {
		return ErrNothingToRefund
	}

	requested := make(map[uuid.UUID]int, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return ErrQuantityNotPositive
		}
		item, err := s.FindItem(line.ItemID)
		if err != nil {
			return err
		}
		requested[line.ItemID] += line.Quantity
		if requested[line.ItemID] > item.RemainingRefundable() {
			return fmt.Errorf("%w: item %s has %d refundable",
				ErrRefundExceedsQuantity, line.ItemID, item.RemainingRefundable())
		}
	}

	for _, line := range lines {
		item, _ := s.FindItem(line.ItemID)
		item.RefundedQuantity += line.Quantity
		s.RefundReason = line.Reason
	}
	s.touch()
	return nil
}

// RefundLevel reports how much of a completed sale has been refunded.
func (s *Sale) RefundLevel() RefundLevel {
	if len(s.Items) == 0 {
		return RefundNone
	}
	refunded, full := 0, true
	for _, item := range s.Items {
		refunded += item.RefundedQuantity
		if item.RefundedQuantity < item.Quantity {
			full = false
		}
	}
	switch {
	case refunded == 0:
		return RefundNone
	case full:
		return RefundFull
	default:
		return RefundPartial
	}
}

// PricingInput assembles the engine input from the sale's current state.
func (s *Sale) PricingInput(taxPercent decimal.Decimal, taxInclusive bool) pricing.Input {
	in := pricing.Input{
		Currency:     s.Currency,
		Lines:        make([]pricing.LineInput, len(s.Items)),
		Manual:       s.Manual,
		TaxPercent:   taxPercent,
		TaxInclusive: taxInclusive,
	}
	if s.CustomerID != nil && s.CustomerDiscountApplied {
		percent := s.CustomerDiscountPercent
		in.CustomerPercent = &percent
	}
	for i, item := range s.Items {
		in.Lines[i] = pricing.LineInput{
			ItemID:    item.ID,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Offer:     item.Offer,
		}
	}
	return in
}

// ApplyBreakdown writes a pricing result back onto the sale and its lines.
func (s *Sale) ApplyBreakdown(b pricing.Breakdown) {
	s.Subtotal = b.Subtotal
	s.Discount = b.Discount
	s.Tax = b.Tax
	s.GrandTotal = b.GrandTotal
	for _, lb := range b.Lines {
		for _, item := range s.Items {
			if item.ID == lb.ItemID {
				item.Subtotal = lb.Subtotal
				item.Discount = lb.Discount
				item.Total = lb.Total
				break
			}
		}
	}
}
