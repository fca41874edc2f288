package webapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amirasaad/pos/internal/fixtures"
	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/service/audit"
	offersvc "github.com/amirasaad/pos/pkg/service/offer"
	salesvc "github.com/amirasaad/pos/pkg/service/sale"
	"github.com/amirasaad/pos/webapi"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	app        *fiber.App
	storeID    uuid.UUID
	employeeID uuid.UUID
	productID  uuid.UUID
	modeID     uuid.UUID
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	uow := fixtures.NewUnitOfWork()
	cat := fixtures.NewCatalog()
	storeID := uuid.New()
	productID := uuid.New()
	cat.Stores[storeID] = &catalog.Store{
		ID:         storeID,
		Name:       "Downtown",
		Currency:   currency.USD,
		TaxPercent: decimal.RequireFromString("8"),
	}
	cat.Products[productID] = &catalog.Product{
		ID:     productID,
		SKU:    "TEE-001",
		Name:   "Plain Tee",
		Prices: map[currency.Code]int64{currency.USD: 1999},
		Active: true,
	}

	logger := slog.Default()
	resolver := offersvc.NewService(&fixtures.OfferList{}, nil, logger)
	recorder := audit.NewService(uow.VersionStore, logger)
	svc := salesvc.NewService(salesvc.Deps{
		Uow:       uow,
		Stores:    cat.StoreRepo(),
		Products:  cat.ProductRepo(),
		Customers: cat.CustomerRepo(),
		Resolver:  resolver,
		Recorder:  recorder,
		Bus:       &fixtures.BusRecorder{},
		Logger:    logger,
	})
	return &testApp{
		app:        webapi.NewApp(svc, recorder),
		storeID:    storeID,
		employeeID: uuid.New(),
		productID:  productID,
		modeID:     uuid.New(),
	}
}

func (a *testApp) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	req.Header.Set("X-Actor-ID", a.employeeID.String())
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeSale(t *testing.T, resp *http.Response) webapi.SaleDTO {
	t.Helper()
	defer resp.Body.Close() //nolint: errcheck
	var envelope struct {
		Data webapi.SaleDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Data
}

func (a *testApp) openDraft(t *testing.T) webapi.SaleDTO {
	t.Helper()
	resp := a.request(t, fiber.MethodPost, "/sales/draft", webapi.DraftRequest{
		StoreID:    a.storeID.String(),
		EmployeeID: a.employeeID.String(),
		Currency:   "USD",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	return decodeSale(t, resp)
}

func TestSaleFlow_DraftAddItemPayComplete(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	draft := a.openDraft(t)
	assert.Equal(t, "draft", draft.Status)

	resp := a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/items", webapi.AddItemRequest{
		ProductID: a.productID.String(),
		Quantity:  3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	s := decodeSale(t, resp)
	assert.Equal(t, int64(5997), s.Subtotal)
	assert.Equal(t, int64(6477), s.GrandTotal)

	resp = a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/payments", webapi.AddPaymentRequest{
		PaymentModeID: a.modeID.String(),
		Amount:        6477,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint: errcheck

	resp = a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/complete", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	s = decodeSale(t, resp)
	assert.Equal(t, "completed", s.Status)
}

func TestSaleFlow_PaymentMismatchIsUnprocessable(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	draft := a.openDraft(t)

	resp := a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/items", webapi.AddItemRequest{
		ProductID: a.productID.String(),
		Quantity:  3,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint: errcheck

	resp = a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/payments", webapi.AddPaymentRequest{
		PaymentModeID: a.modeID.String(),
		Amount:        6476,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint: errcheck

	resp = a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/complete", nil)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "application/problem+json", resp.Header.Get(fiber.HeaderContentType))
}

func TestSaleFlow_UnknownSaleIsNotFound(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)

	resp := a.request(t, fiber.MethodGet, "/sales/"+uuid.NewString(), nil)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSaleFlow_ValidationRejectsBadBody(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	draft := a.openDraft(t)

	resp := a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/items", webapi.AddItemRequest{
		ProductID: "not-a-uuid",
		Quantity:  1,
	})
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSaleFlow_VersionsAndDiff(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	draft := a.openDraft(t)

	resp := a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/items", webapi.AddItemRequest{
		ProductID: a.productID.String(),
		Quantity:  2,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp.Body.Close() //nolint: errcheck

	resp = a.request(t, fiber.MethodGet, "/sales/"+draft.ID+"/versions", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var list struct {
		Data []webapi.VersionDTO `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close() //nolint: errcheck
	require.Len(t, list.Data, 2)
	assert.Equal(t, 2, list.Data[0].Number)

	resp = a.request(t, fiber.MethodGet,
		fmt.Sprintf("/sales/%s/versions/diff?from=1&to=2", draft.ID), nil)
	defer resp.Body.Close() //nolint: errcheck
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSaleFlow_SuspendResume(t *testing.T) {
	t.Parallel()
	a := newTestApp(t)
	draft := a.openDraft(t)

	resp := a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/suspend", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	s := decodeSale(t, resp)
	assert.Equal(t, "suspended", s.Status)

	resp = a.request(t, fiber.MethodPost, "/sales/"+draft.ID+"/resume", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	s = decodeSale(t, resp)
	assert.Equal(t, "draft", s.Status)
}
