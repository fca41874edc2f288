// SaleRoutes registers the transaction engine's HTTP surface.
//
// Routes:
//   - POST   /sales/draft                      : Find or create the open draft for (store, employee).
//   - GET    /sales/:id                        : Fetch a sale with items and payments.
//   - POST   /sales/:id/items                  : Add a product line.
//   - PATCH  /sales/:id/items/:itemId          : Change quantity or override the unit price.
//   - DELETE /sales/:id/items/:itemId          : Remove a line.
//   - PUT    /sales/:id/customer               : Attach a customer.
//   - DELETE /sales/:id/customer               : Detach the customer.
//   - POST   /sales/:id/customer-discount/clear   : Stop applying the customer discount.
//   - POST   /sales/:id/customer-discount/restore : Resume applying it.
//   - PUT    /sales/:id/discount               : Apply a manual discount.
//   - DELETE /sales/:id/discount               : Clear the manual discount.
//   - POST   /sales/:id/payments               : Add a tender.
//   - DELETE /sales/:id/payments/:paymentId    : Remove a tender.
//   - POST   /sales/:id/suspend                : Park the draft.
//   - POST   /sales/:id/resume                 : Bring it back.
//   - POST   /sales/:id/complete               : Finalize; payments must equal the total exactly.
//   - POST   /sales/:id/void                   : Cancel; a completed sale requires a reason.
//   - POST   /sales/:id/refund                 : Refund units on a completed sale.
//   - GET    /sales/:id/versions               : List audit versions, newest first.
//   - GET    /sales/:id/versions/diff          : Diff two versions (?from=&to=).
package webapi

import (
	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/amirasaad/pos/pkg/pricing"
	"github.com/amirasaad/pos/pkg/service/audit"
	salesvc "github.com/amirasaad/pos/pkg/service/sale"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DraftRequest struct {
	StoreID    string `json:"store_id" validate:"required,uuid"`
	EmployeeID string `json:"employee_id" validate:"required,uuid"`
	Currency   string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type AddItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateItemRequest struct {
	Quantity  *int   `json:"quantity" validate:"omitempty,gte=0"`
	UnitPrice *int64 `json:"unit_price" validate:"omitempty,gte=0"`
}

type SetCustomerRequest struct {
	CustomerID string `json:"customer_id" validate:"required,uuid"`
}

type ManualDiscountRequest struct {
	Type    string `json:"type" validate:"required,oneof=percentage amount"`
	Percent string `json:"percent" validate:"omitempty"`
	Amount  int64  `json:"amount" validate:"omitempty,gt=0"`
}

type AddPaymentRequest struct {
	PaymentModeID string            `json:"payment_mode_id" validate:"required,uuid"`
	Amount        int64             `json:"amount" validate:"required,gt=0"`
	Metadata      map[string]string `json:"metadata"`
}

type VoidRequest struct {
	Reason string `json:"reason"`
}

type RefundRequest struct {
	Lines []RefundLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type RefundLineRequest struct {
	ItemID   string `json:"item_id" validate:"required,uuid"`
	Quantity int    `json:"quantity" validate:"required,gt=0"`
	Reason   string `json:"reason"`
}

// SaleRoutes registers the sale endpoints on the app.
func SaleRoutes(app *fiber.App, svc *salesvc.Service, auditSvc *audit.Service) {
	app.Post("/sales/draft", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[DraftRequest](c)
		if input == nil || err != nil {
			return nil
		}
		storeID, _ := uuid.Parse(input.StoreID)
		employeeID, _ := uuid.Parse(input.EmployeeID)
		s, err := svc.FindOrCreateDraft(
			c.UserContext(), storeID, employeeID, currency.Code(input.Currency))
		if err != nil {
			return DomainErrorJSON(c, "Draft failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Draft ready", ToSaleDTO(s))
	})

	app.Get("/sales/:id", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.Get(c.UserContext(), saleID)
		if err != nil {
			return DomainErrorJSON(c, "Sale lookup failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Sale", ToSaleDTO(s))
	})

	app.Post("/sales/:id/items", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[AddItemRequest](c)
		if input == nil || err != nil {
			return nil
		}
		productID, _ := uuid.Parse(input.ProductID)
		s, err := svc.AddItem(c.UserContext(), saleID, productID, input.Quantity, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Add item failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Item added", ToSaleDTO(s))
	})

	app.Patch("/sales/:id/items/:itemId", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		itemID, ok := parseUUIDParam(c, "itemId")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[UpdateItemRequest](c)
		if input == nil || err != nil {
			return nil
		}
		s, err := svc.UpdateItem(c.UserContext(), saleID, itemID, salesvc.UpdateItemInput{
			Quantity:  input.Quantity,
			UnitPrice: input.UnitPrice,
		}, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Update item failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Item updated", ToSaleDTO(s))
	})

	app.Delete("/sales/:id/items/:itemId", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		itemID, ok := parseUUIDParam(c, "itemId")
		if !ok {
			return nil
		}
		s, err := svc.RemoveItem(c.UserContext(), saleID, itemID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Remove item failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Item removed", ToSaleDTO(s))
	})

	app.Put("/sales/:id/customer", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[SetCustomerRequest](c)
		if input == nil || err != nil {
			return nil
		}
		customerID, _ := uuid.Parse(input.CustomerID)
		s, err := svc.SetCustomer(c.UserContext(), saleID, &customerID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Set customer failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Customer attached", ToSaleDTO(s))
	})

	app.Delete("/sales/:id/customer", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.SetCustomer(c.UserContext(), saleID, nil, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Detach customer failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Customer detached", ToSaleDTO(s))
	})

	app.Post("/sales/:id/customer-discount/clear", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.ClearCustomerDiscount(c.UserContext(), saleID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Clear customer discount failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Customer discount cleared", ToSaleDTO(s))
	})

	app.Post("/sales/:id/customer-discount/restore", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.RestoreCustomerDiscount(c.UserContext(), saleID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Restore customer discount failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Customer discount restored", ToSaleDTO(s))
	})

	app.Put("/sales/:id/discount", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[ManualDiscountRequest](c)
		if input == nil || err != nil {
			return nil
		}
		md, err := manualDiscountFromRequest(input, svc, saleID, c)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid discount", err.Error())
		}
		s, err := svc.ApplyManualDiscount(c.UserContext(), saleID, md, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Apply discount failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Discount applied", ToSaleDTO(s))
	})

	app.Delete("/sales/:id/discount", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.ClearManualDiscount(c.UserContext(), saleID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Clear discount failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Discount cleared", ToSaleDTO(s))
	})

	app.Post("/sales/:id/payments", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[AddPaymentRequest](c)
		if input == nil || err != nil {
			return nil
		}
		modeID, _ := uuid.Parse(input.PaymentModeID)
		s, err := svc.AddPayment(
			c.UserContext(), saleID, modeID, input.Amount, input.Metadata, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Add payment failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Payment added", ToSaleDTO(s))
	})

	app.Delete("/sales/:id/payments/:paymentId", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		paymentID, ok := parseUUIDParam(c, "paymentId")
		if !ok {
			return nil
		}
		s, err := svc.RemovePayment(c.UserContext(), saleID, paymentID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Remove payment failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Payment removed", ToSaleDTO(s))
	})

	app.Post("/sales/:id/suspend", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.Suspend(c.UserContext(), saleID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Suspend failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Sale suspended", ToSaleDTO(s))
	})

	app.Post("/sales/:id/resume", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.Resume(c.UserContext(), saleID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Resume failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Sale resumed", ToSaleDTO(s))
	})

	app.Post("/sales/:id/complete", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		s, err := svc.Complete(c.UserContext(), saleID, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Complete failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Sale completed", ToSaleDTO(s))
	})

	app.Post("/sales/:id/void", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[VoidRequest](c)
		if input == nil || err != nil {
			return nil
		}
		s, err := svc.Void(c.UserContext(), saleID, input.Reason, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Void failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Sale voided", ToSaleDTO(s))
	})

	app.Post("/sales/:id/refund", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		input, err := BindAndValidate[RefundRequest](c)
		if input == nil || err != nil {
			return nil
		}
		lines := make([]sale.RefundLine, 0, len(input.Lines))
		for _, l := range input.Lines {
			itemID, _ := uuid.Parse(l.ItemID)
			lines = append(lines, sale.RefundLine{
				ItemID:   itemID,
				Quantity: l.Quantity,
				Reason:   l.Reason,
			})
		}
		s, err := svc.Refund(c.UserContext(), saleID, lines, actorID(c))
		if err != nil {
			return DomainErrorJSON(c, "Refund failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Refund recorded", ToSaleDTO(s))
	})

	app.Get("/sales/:id/versions", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		versions, err := auditSvc.ListVersions(c.UserContext(), saleID)
		if err != nil {
			return DomainErrorJSON(c, "Version list failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Versions", ToVersionDTOs(versions))
	})

	app.Get("/sales/:id/versions/diff", func(c *fiber.Ctx) error {
		saleID, ok := parseUUIDParam(c, "id")
		if !ok {
			return nil
		}
		from := c.QueryInt("from")
		to := c.QueryInt("to")
		if from < 1 || to < 1 {
			return ErrorResponseJSON(c, fiber.StatusBadRequest,
				"Invalid version range", "from and to must be positive version numbers")
		}
		changes, err := auditSvc.Diff(c.UserContext(), saleID, from, to)
		if err != nil {
			return DomainErrorJSON(c, "Diff failed", err)
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Diff", changes)
	})
}

// manualDiscountFromRequest converts the wire discount into the pricing
// type. Amounts need the sale's currency, so the sale is loaded first.
func manualDiscountFromRequest(
	input *ManualDiscountRequest,
	svc *salesvc.Service,
	saleID uuid.UUID,
	c *fiber.Ctx,
) (pricing.ManualDiscount, error) {
	md := pricing.ManualDiscount{Type: pricing.ManualDiscountType(input.Type)}
	switch md.Type {
	case pricing.ManualPercentage:
		percent, err := decimal.NewFromString(input.Percent)
		if err != nil {
			return md, err
		}
		md.Percent = percent
	case pricing.ManualAmount:
		s, err := svc.Get(c.UserContext(), saleID)
		if err != nil {
			return md, err
		}
		md.Amount = money.NewFromMinor(input.Amount, s.Currency)
	}
	return md, nil
}
