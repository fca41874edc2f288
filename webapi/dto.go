package webapi

import (
	"time"

	"github.com/amirasaad/pos/pkg/domain/sale"
)

// ItemDTO is the API response representation of a sale line.
type ItemDTO struct {
	ID               string `json:"id"`
	ProductID        string `json:"product_id"`
	ProductSKU       string `json:"product_sku"`
	ProductName      string `json:"product_name"`
	Quantity         int    `json:"quantity"`
	UnitPrice        int64  `json:"unit_price"`
	OfferID          string `json:"offer_id,omitempty"`
	OfferName        string `json:"offer_name,omitempty"`
	RefundedQuantity int    `json:"refunded_quantity,omitempty"`
	Subtotal         int64  `json:"subtotal"`
	Discount         int64  `json:"discount"`
	Total            int64  `json:"total"`
}

// PaymentDTO is the API response representation of a tender.
type PaymentDTO struct {
	ID            string `json:"id"`
	PaymentModeID string `json:"payment_mode_id"`
	Amount        int64  `json:"amount"`
}

// SaleDTO is the API response representation of a sale. All monetary
// amounts are minor units in the sale's currency.
type SaleDTO struct {
	ID                      string       `json:"id"`
	StoreID                 string       `json:"store_id"`
	EmployeeID              string       `json:"employee_id"`
	Status                  string       `json:"status"`
	RefundLevel             string       `json:"refund_level"`
	Currency                string       `json:"currency"`
	CustomerID              string       `json:"customer_id,omitempty"`
	CustomerDiscountPercent string       `json:"customer_discount_percent,omitempty"`
	CustomerDiscountApplied bool         `json:"customer_discount_applied"`
	Items                   []ItemDTO    `json:"items"`
	Payments                []PaymentDTO `json:"payments"`
	Subtotal                int64        `json:"subtotal"`
	Discount                int64        `json:"discount"`
	Tax                     int64        `json:"tax"`
	GrandTotal              int64        `json:"grand_total"`
	VoidReason              string       `json:"void_reason,omitempty"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}

// ToSaleDTO maps a sale aggregate to its API representation.
func ToSaleDTO(s *sale.Sale) *SaleDTO {
	if s == nil {
		return nil
	}
	dto := &SaleDTO{
		ID:                      s.ID.String(),
		StoreID:                 s.StoreID.String(),
		EmployeeID:              s.EmployeeID.String(),
		Status:                  string(s.Status),
		RefundLevel:             string(s.RefundLevel()),
		Currency:                string(s.Currency),
		CustomerDiscountApplied: s.CustomerDiscountApplied,
		Items:                   make([]ItemDTO, 0, len(s.Items)),
		Payments:                make([]PaymentDTO, 0, len(s.Payments)),
		Subtotal:                s.Subtotal.Amount(),
		Discount:                s.Discount.Amount(),
		Tax:                     s.Tax.Amount(),
		GrandTotal:              s.GrandTotal.Amount(),
		VoidReason:              s.VoidReason,
		CreatedAt:               s.CreatedAt,
		UpdatedAt:               s.UpdatedAt,
	}
	if s.CustomerID != nil {
		dto.CustomerID = s.CustomerID.String()
		dto.CustomerDiscountPercent = s.CustomerDiscountPercent.String()
	}
	for _, item := range s.Items {
		i := ItemDTO{
			ID:               item.ID.String(),
			ProductID:        item.ProductID.String(),
			ProductSKU:       item.ProductSKU,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice.Amount(),
			RefundedQuantity: item.RefundedQuantity,
			Subtotal:         item.Subtotal.Amount(),
			Discount:         item.Discount.Amount(),
			Total:            item.Total.Amount(),
		}
		if item.Offer != nil {
			i.OfferID = item.Offer.OfferID.String()
			i.OfferName = item.Offer.Name
		}
		dto.Items = append(dto.Items, i)
	}
	for _, p := range s.Payments {
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:            p.ID.String(),
			PaymentModeID: p.PaymentModeID.String(),
			Amount:        p.Amount.Amount(),
		})
	}
	return dto
}

// VersionDTO is the API response representation of an audit version.
type VersionDTO struct {
	Number    int           `json:"number"`
	ActorID   string        `json:"actor_id"`
	Snapshot  sale.Snapshot `json:"snapshot"`
	CreatedAt time.Time     `json:"created_at"`
}

// ToVersionDTOs maps audit versions to their API representation.
func ToVersionDTOs(versions []*sale.Version) []VersionDTO {
	out := make([]VersionDTO, 0, len(versions))
	for _, v := range versions {
		out = append(out, VersionDTO{
			Number:    v.Number,
			ActorID:   v.ActorID.String(),
			Snapshot:  v.Snapshot,
			CreatedAt: v.CreatedAt,
		})
	}
	return out
}
