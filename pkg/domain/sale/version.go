package sale

import (
	"fmt"
	"sort"
	"time"

	"github.com/amirasaad/pos/pkg/pricing"
	"github.com/google/uuid"
)

// Version is one entry in a sale's append-only audit ledger: a full snapshot
// of the mutable fields taken after a mutating operation. Versions are never
// updated or deleted once written.
type Version struct {
	ID        uuid.UUID
	SaleID    uuid.UUID
	Number    int
	ActorID   uuid.UUID
	Snapshot  Snapshot
	CreatedAt time.Time
}

// Snapshot captures every mutable field of a sale. It is stored as JSON by
// the version repository.
type Snapshot struct {
	Status                  Status            `json:"status"`
	Currency                string            `json:"currency"`
	CustomerID              *uuid.UUID        `json:"customer_id,omitempty"`
	CustomerDiscountPercent string            `json:"customer_discount_percent"`
	CustomerDiscountApplied bool              `json:"customer_discount_applied"`
	ManualDiscountType      string            `json:"manual_discount_type,omitempty"`
	ManualDiscountValue     string            `json:"manual_discount_value,omitempty"`
	Subtotal                int64             `json:"subtotal"`
	Discount                int64             `json:"discount"`
	Tax                     int64             `json:"tax"`
	GrandTotal              int64             `json:"grand_total"`
	VoidReason              string            `json:"void_reason,omitempty"`
	RefundReason            string            `json:"refund_reason,omitempty"`
	Items                   []ItemSnapshot    `json:"items"`
	Payments                []PaymentSnapshot `json:"payments"`
}

// ItemSnapshot is a line's state inside a version.
type ItemSnapshot struct {
	ItemID           uuid.UUID  `json:"item_id"`
	ProductID        uuid.UUID  `json:"product_id"`
	ProductSKU       string     `json:"product_sku"`
	ProductName      string     `json:"product_name"`
	Quantity         int        `json:"quantity"`
	UnitPrice        int64      `json:"unit_price"`
	OfferID          *uuid.UUID `json:"offer_id,omitempty"`
	Discount         int64      `json:"discount"`
	Total            int64      `json:"total"`
	RefundedQuantity int        `json:"refunded_quantity"`
}

// PaymentSnapshot is a tender's state inside a version.
type PaymentSnapshot struct {
	PaymentID     uuid.UUID `json:"payment_id"`
	PaymentModeID uuid.UUID `json:"payment_mode_id"`
	Amount        int64     `json:"amount"`
}

// TakeSnapshot captures the sale's current mutable state.
func TakeSnapshot(s *Sale) Snapshot {
	snap := Snapshot{
		Status:                  s.Status,
		Currency:                s.Currency.String(),
		CustomerID:              s.CustomerID,
		CustomerDiscountPercent: s.CustomerDiscountPercent.String(),
		CustomerDiscountApplied: s.CustomerDiscountApplied,
		Subtotal:                s.Subtotal.Amount(),
		Discount:                s.Discount.Amount(),
		Tax:                     s.Tax.Amount(),
		GrandTotal:              s.GrandTotal.Amount(),
		VoidReason:              s.VoidReason,
		RefundReason:            s.RefundReason,
		Items:                   make([]ItemSnapshot, len(s.Items)),
		Payments:                make([]PaymentSnapshot, len(s.Payments)),
	}
	if s.Manual != nil {
		snap.ManualDiscountType = string(s.Manual.Type)
		if s.Manual.Type == pricing.ManualPercentage {
			snap.ManualDiscountValue = s.Manual.Percent.String()
		} else {
			snap.ManualDiscountValue = s.Manual.Amount.String()
		}
	}
	for i, item := range s.Items {
		is := ItemSnapshot{
			ItemID:           item.ID,
			ProductID:        item.ProductID,
			ProductSKU:       item.ProductSKU,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice.Amount(),
			Discount:         item.Discount.Amount(),
			Total:            item.Total.Amount(),
			RefundedQuantity: item.RefundedQuantity,
		}
		if item.Offer != nil {
			offerID := item.Offer.OfferID
			is.OfferID = &offerID
		}
		snap.Items[i] = is
	}
	for i, p := range s.Payments {
		snap.Payments[i] = PaymentSnapshot{
			PaymentID:     p.ID,
			PaymentModeID: p.PaymentModeID,
			Amount:        p.Amount.Amount(),
		}
	}
	return snap
}

// Change is one field-level difference between two snapshots.
type Change struct {
	Field string `json:"field"`
	From  string `json:"from"`
	To    string `json:"to"`
}

// Diff compares two snapshots and returns the changed fields, sorted by
// field name. Items and payments are addressed by id so line mutations show
// as changes to that line rather than positional noise.
func Diff(a, b Snapshot) []Change {
	left := flatten(a)
	right := flatten(b)

	fields := make(map[string]struct{}, len(left)+len(right))
	for k := range left {
		fields[k] = struct{}{}
	}
	for k := range right {
		fields[k] = struct{}{}
	}

	var changes []Change
	for field := range fields {
		from, to := left[field], right[field]
		if from != to {
			changes = append(changes, Change{Field: field, From: from, To: to})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

func flatten(s Snapshot) map[string]string {
	out := map[string]string{
		"status":                    string(s.Status),
		"currency":                  s.Currency,
		"customer_discount_percent": s.CustomerDiscountPercent,
		"customer_discount_applied": fmt.Sprintf("%t", s.CustomerDiscountApplied),
		"manual_discount_type":      s.ManualDiscountType,
		"manual_discount_value":     s.ManualDiscountValue,
		"subtotal":                  fmt.Sprintf("%d", s.Subtotal),
		"discount":                  fmt.Sprintf("%d", s.Discount),
		"tax":                       fmt.Sprintf("%d", s.Tax),
		"grand_total":               fmt.Sprintf("%d", s.GrandTotal),
		"void_reason":               s.VoidReason,
		"refund_reason":             s.RefundReason,
	}
	if s.CustomerID != nil {
		out["customer_id"] = s.CustomerID.String()
	} else {
		out["customer_id"] = ""
	}
	for _, item := range s.Items {
		prefix := "item." + item.ItemID.String()
		out[prefix+".product"] = item.ProductSKU
		out[prefix+".quantity"] = fmt.Sprintf("%d", item.Quantity)
		out[prefix+".unit_price"] = fmt.Sprintf("%d", item.UnitPrice)
		out[prefix+".discount"] = fmt.Sprintf("%d", item.Discount)
		out[prefix+".total"] = fmt.Sprintf("%d", item.Total)
		out[prefix+".refunded_quantity"] = fmt.Sprintf("%d", item.RefundedQuantity)
		if item.OfferID != nil {
			out[prefix+".offer"] = item.OfferID.String()
		}
	}
	for _, p := range s.Payments {
		prefix := "payment." + p.PaymentID.String()
		out[prefix+".mode"] = p.PaymentModeID.String()
		out[prefix+".amount"] = fmt.Sprintf("%d", p.Amount)
	}
	return out
}
