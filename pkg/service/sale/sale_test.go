package sale_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/amirasaad/pos/internal/fixtures"
	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/domain/events"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/pricing"
	"github.com/amirasaad/pos/pkg/service/audit"
	offersvc "github.com/amirasaad/pos/pkg/service/offer"
	salesvc "github.com/amirasaad/pos/pkg/service/sale"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

type env struct {
	svc        *salesvc.Service
	uow        *fixtures.UnitOfWork
	catalog    *fixtures.Catalog
	offers     *fixtures.OfferList
	bus        *fixtures.BusRecorder
	storeID    uuid.UUID
	employeeID uuid.UUID
	productID  uuid.UUID
	modeID     uuid.UUID
}

// newEnv wires the service over in-memory fakes: one USD store at 8%
// exclusive tax and one product at 19.99.
func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		uow:        fixtures.NewUnitOfWork(),
		catalog:    fixtures.NewCatalog(),
		offers:     &fixtures.OfferList{},
		bus:        &fixtures.BusRecorder{},
		storeID:    uuid.New(),
		employeeID: uuid.New(),
		productID:  uuid.New(),
		modeID:     uuid.New(),
	}
	e.catalog.Stores[e.storeID] = &catalog.Store{
		ID:         e.storeID,
		Name:       "Downtown",
		Currency:   currency.USD,
		TaxPercent: decimal.RequireFromString("8"),
	}
	e.catalog.Products[e.productID] = &catalog.Product{
		ID:     e.productID,
		SKU:    "TEE-001",
		Name:   "Plain Tee",
		Prices: map[currency.Code]int64{currency.USD: 1999},
		Active: true,
	}

	logger := slog.Default()
	clock := func() time.Time { return testNow }
	resolver := offersvc.NewService(e.offers, nil, logger).WithClock(clock)
	recorder := audit.NewService(e.uow.VersionStore, logger).WithClock(clock)
	e.svc = salesvc.NewService(salesvc.Deps{
		Uow:       e.uow,
		Stores:    e.catalog.StoreRepo(),
		Products:  e.catalog.ProductRepo(),
		Customers: e.catalog.CustomerRepo(),
		Resolver:  resolver,
		Recorder:  recorder,
		Bus:       e.bus,
		Logger:    logger,
	}).WithClock(clock)
	return e
}

func (e *env) draft(t *testing.T) *sale.Sale {
	t.Helper()
	s, err := e.svc.FindOrCreateDraft(context.Background(), e.storeID, e.employeeID, currency.USD)
	require.NoError(t, err)
	return s
}

func (e *env) payExactly(t *testing.T, s *sale.Sale) *sale.Sale {
	t.Helper()
	paid, err := e.svc.AddPayment(
		context.Background(), s.ID, e.modeID, s.GrandTotal.Amount(), nil, e.employeeID)
	require.NoError(t, err)
	return paid
}

func (e *env) inventoryEvents(reason string) []events.InventoryAdjustmentRequested {
	var out []events.InventoryAdjustmentRequested
	for _, ev := range e.bus.Events() {
		if adj, ok := ev.(events.InventoryAdjustmentRequested); ok && adj.Reason == reason {
			out = append(out, adj)
		}
	}
	return out
}

func TestFindOrCreateDraft_ReturnsExistingDraft(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	first := e.draft(t)
	// Currency drift on subsequent calls is ignored: the draft keeps the
	// currency it was created with.
	second, err := e.svc.FindOrCreateDraft(context.Background(), e.storeID, e.employeeID, currency.EUR)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, currency.USD, second.Currency)
}

func TestFindOrCreateDraft_ConcurrentCallsShareOneDraft(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	const callers = 16
	ids := make([]uuid.UUID, callers)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := e.svc.FindOrCreateDraft(
				context.Background(), e.storeID, e.employeeID, currency.USD)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = s.ID
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	for _, id := range ids {
		assert.Equal(t, ids[0], id, "every concurrent caller must land on the same draft")
	}
}

func TestFindOrCreateDraft_DistinctEmployeesGetDistinctDrafts(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	first := e.draft(t)
	other, err := e.svc.FindOrCreateDraft(context.Background(), e.storeID, uuid.New(), currency.USD)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestAddItem_SnapshotsPriceAndComputesTax(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)

	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)

	// 3 x 19.99 at 8% exclusive tax.
	assert.Equal(t, int64(5997), s.Subtotal.Amount())
	assert.Equal(t, int64(480), s.Tax.Amount())
	assert.Equal(t, int64(6477), s.GrandTotal.Amount())
	require.Len(t, s.Items, 1)
	assert.Equal(t, "TEE-001", s.Items[0].ProductSKU)
	assert.Equal(t, int64(1999), s.Items[0].UnitPrice.Amount())
}

func TestAddItem_UnknownProduct(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)

	_, err := e.svc.AddItem(context.Background(), s.ID, uuid.New(), 1, e.employeeID)
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestAddItem_NoPriceInSaleCurrency(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	eurOnly := uuid.New()
	e.catalog.Products[eurOnly] = &catalog.Product{
		ID:     eurOnly,
		SKU:    "EUR-001",
		Name:   "Import",
		Prices: map[currency.Code]int64{currency.EUR: 500},
		Active: true,
	}
	s := e.draft(t)

	_, err := e.svc.AddItem(context.Background(), s.ID, eurOnly, 1, e.employeeID)
	assert.ErrorIs(t, err, catalog.ErrPriceNotAvailable)
}

func TestAddItem_ResolvesOffer(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.offers.Offers = []*offer.Offer{{
		ID:           uuid.New(),
		Name:         "five off",
		Kind:         offer.KindSimple,
		Status:       offer.StatusActive,
		StartsAt:     testNow.Add(-time.Hour),
		Combinable:   true,
		DiscountType: offer.DiscountPercentage,
		Percent:      decimal.RequireFromString("5"),
	}}
	s := e.draft(t)

	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 1, e.employeeID)
	require.NoError(t, err)
	require.NotNil(t, s.Items[0].Offer)
	assert.Equal(t, "five off", s.Items[0].Offer.Name)
	assert.Equal(t, int64(100), s.Items[0].Discount.Amount(), "5% of 19.99 rounds to 1.00")
}

func TestUpdateItem_QuantityChangeReresolvesBundle(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.offers.Offers = []*offer.Offer{{
		ID:              uuid.New(),
		Name:            "buy three save 30",
		Kind:            offer.KindBundle,
		Status:          offer.StatusActive,
		StartsAt:        testNow.Add(-time.Hour),
		Combinable:      true,
		DiscountType:    offer.DiscountPercentage,
		Percent:         decimal.RequireFromString("30"),
		BundleQuantity:  3,
		BundleProductID: &e.productID,
	}}
	s := e.draft(t)

	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 2, e.employeeID)
	require.NoError(t, err)
	assert.Nil(t, s.Items[0].Offer, "two units must not unlock the bundle")

	qty := 3
	s, err = e.svc.UpdateItem(
		context.Background(), s.ID, s.Items[0].ID,
		salesvc.UpdateItemInput{Quantity: &qty}, e.employeeID)
	require.NoError(t, err)
	require.NotNil(t, s.Items[0].Offer)
	assert.Equal(t, "buy three save 30", s.Items[0].Offer.Name)

	qty = 2
	s, err = e.svc.UpdateItem(
		context.Background(), s.ID, s.Items[0].ID,
		salesvc.UpdateItemInput{Quantity: &qty}, e.employeeID)
	require.NoError(t, err)
	assert.Nil(t, s.Items[0].Offer, "dropping below the bundle quantity loses the reward")
}

func TestUpdateItem_PriceOverride(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 1, e.employeeID)
	require.NoError(t, err)

	override := int64(1500)
	s, err = e.svc.UpdateItem(
		context.Background(), s.ID, s.Items[0].ID,
		salesvc.UpdateItemInput{UnitPrice: &override}, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), s.Items[0].UnitPrice.Amount())
	assert.Equal(t, int64(1500), s.Subtotal.Amount())
}

func TestRemoveItem_RepricesRemaining(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	other := uuid.New()
	e.catalog.Products[other] = &catalog.Product{
		ID:     other,
		SKU:    "MUG-001",
		Name:   "Mug",
		Prices: map[currency.Code]int64{currency.USD: 1000},
		Active: true,
	}
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 1, e.employeeID)
	require.NoError(t, err)
	s, err = e.svc.AddItem(context.Background(), s.ID, other, 1, e.employeeID)
	require.NoError(t, err)
	require.Len(t, s.Items, 2)

	s, err = e.svc.RemoveItem(context.Background(), s.ID, s.Items[0].ID, e.employeeID)
	require.NoError(t, err)
	require.Len(t, s.Items, 1)
	assert.Equal(t, int64(1000), s.Subtotal.Amount())
}

func TestCustomerAndOfferStackMultiplicatively(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	// Zero-tax store keeps the discount arithmetic visible in the total.
	e.catalog.Stores[e.storeID].TaxPercent = decimal.Zero
	customerID := uuid.New()
	e.catalog.Customers[customerID] = &catalog.Customer{
		ID:              customerID,
		Name:            "Regular",
		DiscountPercent: decimal.RequireFromString("10"),
	}
	e.offers.Offers = []*offer.Offer{{
		ID:           uuid.New(),
		Name:         "five off",
		Kind:         offer.KindSimple,
		Status:       offer.StatusActive,
		StartsAt:     testNow.Add(-time.Hour),
		Combinable:   true,
		DiscountType: offer.DiscountPercentage,
		Percent:      decimal.RequireFromString("5"),
	}}
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	s, err = e.svc.SetCustomer(context.Background(), s.ID, &customerID, e.employeeID)
	require.NoError(t, err)

	// 59.97 x 0.90 x 0.95 = 51.27, not the additive 50.97.
	assert.Equal(t, int64(5127), s.GrandTotal.Amount())

	s, err = e.svc.ClearCustomerDiscount(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(5697), s.GrandTotal.Amount(), "offer only once the customer discount is cleared")
	require.NotNil(t, s.CustomerID, "clearing the discount must not detach the customer")

	s, err = e.svc.RestoreCustomerDiscount(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(5127), s.GrandTotal.Amount())
}

func TestManualDiscountApplyAndClear(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)

	s, err = e.svc.ApplyManualDiscount(context.Background(), s.ID, pricing.ManualDiscount{
		Type:    pricing.ManualPercentage,
		Percent: decimal.RequireFromString("10"),
	}, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(600), s.Discount.Amount(), "10% of 59.97 rounds to 6.00")

	s, err = e.svc.ClearManualDiscount(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), s.Discount.Amount())
}

func TestComplete_RejectsOneCentMismatch(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	require.Equal(t, int64(6477), s.GrandTotal.Amount())

	s, err = e.svc.AddPayment(
		context.Background(), s.ID, e.modeID, 6476, nil, e.employeeID)
	require.NoError(t, err)

	_, err = e.svc.Complete(context.Background(), s.ID, e.employeeID)
	assert.ErrorIs(t, err, sale.ErrPaymentMismatch)

	reloaded, err := e.svc.Get(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusDraft, reloaded.Status, "failed completion leaves the draft intact")
	assert.Empty(t, e.bus.Events(), "no events until completion succeeds")

	// Topping up the missing cent makes completion succeed.
	_, err = e.svc.AddPayment(context.Background(), s.ID, e.modeID, 1, nil, e.employeeID)
	require.NoError(t, err)
	completed, err := e.svc.Complete(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusCompleted, completed.Status)
}

func TestComplete_PublishesInventoryDeductions(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	s = e.payExactly(t, s)

	_, err = e.svc.Complete(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)

	deductions := e.inventoryEvents(events.ReasonSaleCompleted)
	require.Len(t, deductions, 1)
	assert.Equal(t, -3, deductions[0].Delta)
	assert.Equal(t, e.productID, deductions[0].ProductID)
}

func TestVoid_CompletedReversesInventoryExactlyOnce(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	s = e.payExactly(t, s)
	_, err = e.svc.Complete(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)

	_, err = e.svc.Void(context.Background(), s.ID, "", e.employeeID)
	assert.ErrorIs(t, err, sale.ErrVoidReasonRequired)

	voided, err := e.svc.Void(context.Background(), s.ID, "customer walked out", e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusVoided, voided.Status)

	reversals := e.inventoryEvents(events.ReasonSaleVoided)
	require.Len(t, reversals, 1)
	assert.Equal(t, 3, reversals[0].Delta)

	// A second void is rejected before any further event fires.
	_, err = e.svc.Void(context.Background(), s.ID, "again", e.employeeID)
	assert.ErrorIs(t, err, sale.ErrInvalidState)
	assert.Len(t, e.inventoryEvents(events.ReasonSaleVoided), 1)
}

func TestVoid_AfterPartialRefundReversesOnlyRemainingUnits(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	s = e.payExactly(t, s)
	s, err = e.svc.Complete(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	itemID := s.Items[0].ID

	_, err = e.svc.Refund(context.Background(), s.ID, []sale.RefundLine{
		{ItemID: itemID, Quantity: 1, Reason: "damaged"},
	}, e.employeeID)
	require.NoError(t, err)

	_, err = e.svc.Void(context.Background(), s.ID, "register error", e.employeeID)
	require.NoError(t, err)

	restocks := e.inventoryEvents(events.ReasonSaleRefunded)
	require.Len(t, restocks, 1)
	assert.Equal(t, 1, restocks[0].Delta)

	// The refunded unit is already back in stock; the void reverses the rest.
	reversals := e.inventoryEvents(events.ReasonSaleVoided)
	require.Len(t, reversals, 1)
	assert.Equal(t, 2, reversals[0].Delta)
}

func TestVoid_AfterFullRefundEmitsNoReversal(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	s = e.payExactly(t, s)
	s, err = e.svc.Complete(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	itemID := s.Items[0].ID

	_, err = e.svc.Refund(context.Background(), s.ID, []sale.RefundLine{
		{ItemID: itemID, Quantity: 3, Reason: "recall"},
	}, e.employeeID)
	require.NoError(t, err)

	voided, err := e.svc.Void(context.Background(), s.ID, "recall cleanup", e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusVoided, voided.Status)
	assert.Empty(t, e.inventoryEvents(events.ReasonSaleVoided))
}

func TestRefund_PartialThenFullRestocks(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 3, e.employeeID)
	require.NoError(t, err)
	s = e.payExactly(t, s)
	s, err = e.svc.Complete(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	itemID := s.Items[0].ID

	refunded, err := e.svc.Refund(context.Background(), s.ID, []sale.RefundLine{
		{ItemID: itemID, Quantity: 1, Reason: "damaged"},
	}, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.RefundPartial, refunded.RefundLevel())

	refunded, err = e.svc.Refund(context.Background(), s.ID, []sale.RefundLine{
		{ItemID: itemID, Quantity: 2, Reason: "damaged"},
	}, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.RefundFull, refunded.RefundLevel())

	_, err = e.svc.Refund(context.Background(), s.ID, []sale.RefundLine{
		{ItemID: itemID, Quantity: 1, Reason: "damaged"},
	}, e.employeeID)
	assert.ErrorIs(t, err, sale.ErrRefundExceedsQuantity)

	restocks := e.inventoryEvents(events.ReasonSaleRefunded)
	require.Len(t, restocks, 2)
	assert.Equal(t, 1, restocks[0].Delta)
	assert.Equal(t, 2, restocks[1].Delta)
}

func TestSuspendResume_TotalsMatchStraightThrough(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 2, e.employeeID)
	require.NoError(t, err)

	suspended, err := e.svc.Suspend(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusSuspended, suspended.Status)

	resumed, err := e.svc.Resume(context.Background(), s.ID, e.employeeID)
	require.NoError(t, err)
	assert.Equal(t, sale.StatusDraft, resumed.Status)
	assert.Equal(t, s.GrandTotal.Amount(), resumed.GrandTotal.Amount(),
		"a suspend/resume cycle must not change the totals")
}

func TestVersions_RecordedPerMutation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 2, e.employeeID)
	require.NoError(t, err)
	qty := 4
	_, err = e.svc.UpdateItem(
		context.Background(), s.ID, s.Items[0].ID,
		salesvc.UpdateItemInput{Quantity: &qty}, e.employeeID)
	require.NoError(t, err)

	versions, err := e.uow.VersionStore.ListBySale(context.Background(), s.ID)
	require.NoError(t, err)
	require.Len(t, versions, 3, "creation plus two mutations")
	assert.Equal(t, 3, versions[0].Number, "newest first")
	assert.Equal(t, 4, versions[0].Snapshot.Items[0].Quantity)
	assert.Equal(t, 2, versions[1].Snapshot.Items[0].Quantity)
}

func TestVersions_RecordingFailureDoesNotFailMutation(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	s := e.draft(t)
	e.uow.VersionStore.FailCreates = true

	s, err := e.svc.AddItem(context.Background(), s.ID, e.productID, 1, e.employeeID)
	require.NoError(t, err, "audit recording is best-effort")
	assert.Len(t, s.Items, 1)
}
