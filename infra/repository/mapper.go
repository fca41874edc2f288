package repository

import (
	"encoding/json"
	"fmt"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/catalog"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/amirasaad/pos/pkg/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// offerRecord is the JSON shape of an item's denormalized offer snapshot.
type offerRecord struct {
	OfferID      uuid.UUID `json:"offer_id"`
	Name         string    `json:"name"`
	DiscountType string    `json:"discount_type"`
	Percent      string    `json:"percent"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Combinable   bool      `json:"combinable"`
}

// offerPayload is the JSON shape of an offer's rule configuration.
type offerPayload struct {
	Priority     int                    `json:"priority"`
	Combinable   bool                   `json:"combinable"`
	DiscountType string                 `json:"discount_type"`
	Percent      string                 `json:"percent"`
	Amounts      map[currency.Code]int64 `json:"amounts,omitempty"`
	MaxDiscounts map[currency.Code]int64 `json:"max_discounts,omitempty"`
	MinSpends    map[currency.Code]int64 `json:"min_spends,omitempty"`

	StoreIDs    []uuid.UUID `json:"store_ids,omitempty"`
	ProductIDs  []uuid.UUID `json:"product_ids,omitempty"`
	CategoryIDs []uuid.UUID `json:"category_ids,omitempty"`
	BrandIDs    []uuid.UUID `json:"brand_ids,omitempty"`

	BundleQuantity   int        `json:"bundle_quantity,omitempty"`
	BundleProductID  *uuid.UUID `json:"bundle_product_id,omitempty"`
	BundleCategoryID *uuid.UUID `json:"bundle_category_id,omitempty"`
}

func toSaleModel(s *sale.Sale) (*Sale, error) {
	m := &Sale{
		ID:                      s.ID,
		StoreID:                 s.StoreID,
		EmployeeID:              s.EmployeeID,
		Status:                  string(s.Status),
		Currency:                string(s.Currency),
		CustomerID:              s.CustomerID,
		CustomerDiscountPercent: s.CustomerDiscountPercent.String(),
		CustomerDiscountApplied: s.CustomerDiscountApplied,
		Subtotal:                s.Subtotal.Amount(),
		Discount:                s.Discount.Amount(),
		Tax:                     s.Tax.Amount(),
		GrandTotal:              s.GrandTotal.Amount(),
		VoidReason:              s.VoidReason,
		RefundReason:            s.RefundReason,
		CompletedAt:             s.CompletedAt,
		VoidedAt:                s.VoidedAt,
	}
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
	if s.Manual != nil {
		m.ManualDiscountType = string(s.Manual.Type)
		switch s.Manual.Type {
		case pricing.ManualPercentage:
			m.ManualDiscountValue = s.Manual.Percent.String()
		case pricing.ManualAmount:
			m.ManualDiscountValue = fmt.Sprintf("%d", s.Manual.Amount.Amount())
		}
	}
	for _, item := range s.Items {
		im, err := toItemModel(s.ID, item)
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, *im)
	}
	for _, p := range s.Payments {
		pm, err := toPaymentModel(s.ID, p)
		if err != nil {
			return nil, err
		}
		m.Payments = append(m.Payments, *pm)
	}
	return m, nil
}

func toItemModel(saleID uuid.UUID, item *sale.Item) (*SaleItem, error) {
	m := &SaleItem{
		ID:               item.ID,
		SaleID:           saleID,
		ProductID:        item.ProductID,
		ProductSKU:       item.ProductSKU,
		ProductName:      item.ProductName,
		CategoryID:       item.CategoryID,
		BrandID:          item.BrandID,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice.Amount(),
		RefundedQuantity: item.RefundedQuantity,
		Subtotal:         item.Subtotal.Amount(),
		Discount:         item.Discount.Amount(),
		Total:            item.Total.Amount(),
	}
	if item.Offer != nil {
		data, err := json.Marshal(offerRecord{
			OfferID:      item.Offer.OfferID,
			Name:         item.Offer.Name,
			DiscountType: string(item.Offer.DiscountType),
			Percent:      item.Offer.Percent.String(),
			Amount:       item.Offer.Amount.Amount(),
			Currency:     string(item.Offer.Amount.Currency()),
			Combinable:   item.Offer.Combinable,
		})
		if err != nil {
			return nil, err
		}
		m.Offer = data
	}
	return m, nil
}

func toPaymentModel(saleID uuid.UUID, p *sale.Payment) (*SalePayment, error) {
	m := &SalePayment{
		ID:            p.ID,
		SaleID:        saleID,
		PaymentModeID: p.PaymentModeID,
		Amount:        p.Amount.Amount(),
		CreatedBy:     p.CreatedBy,
	}
	m.CreatedAt = p.CreatedAt
	if len(p.Metadata) > 0 {
		data, err := json.Marshal(p.Metadata)
		if err != nil {
			return nil, err
		}
		m.Metadata = data
	}
	return m, nil
}

func toSaleDomain(m *Sale) (*sale.Sale, error) {
	code := currency.Code(m.Currency)
	customerPercent, err := decimal.NewFromString(orZero(m.CustomerDiscountPercent))
	if err != nil {
		return nil, fmt.Errorf("sale %s: bad customer discount: %w", m.ID, err)
	}
	s := &sale.Sale{
		ID:                      m.ID,
		StoreID:                 m.StoreID,
		EmployeeID:              m.EmployeeID,
		Currency:                code,
		CustomerID:              m.CustomerID,
		CustomerDiscountPercent: customerPercent,
		CustomerDiscountApplied: m.CustomerDiscountApplied,
		Status:                  sale.Status(m.Status),
		Subtotal:                money.NewFromMinor(m.Subtotal, code),
		Discount:                money.NewFromMinor(m.Discount, code),
		Tax:                     money.NewFromMinor(m.Tax, code),
		GrandTotal:              money.NewFromMinor(m.GrandTotal, code),
		VoidReason:              m.VoidReason,
		RefundReason:            m.RefundReason,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
		CompletedAt:             m.CompletedAt,
		VoidedAt:                m.VoidedAt,
	}
	if m.ManualDiscountType != "" {
		md := &pricing.ManualDiscount{Type: pricing.ManualDiscountType(m.ManualDiscountType)}
		switch md.Type {
		case pricing.ManualPercentage:
			md.Percent, err = decimal.NewFromString(orZero(m.ManualDiscountValue))
			if err != nil {
				return nil, fmt.Errorf("sale %s: bad manual discount: %w", m.ID, err)
			}
		case pricing.ManualAmount:
			var minor int64
			if _, err := fmt.Sscanf(m.ManualDiscountValue, "%d", &minor); err != nil {
				return nil, fmt.Errorf("sale %s: bad manual discount: %w", m.ID, err)
			}
			md.Amount = money.NewFromMinor(minor, code)
		}
		s.Manual = md
	}
	for i := range m.Items {
		item, err := toItemDomain(&m.Items[i], code)
		if err != nil {
			return nil, err
		}
		s.Items = append(s.Items, item)
	}
	for i := range m.Payments {
		p, err := toPaymentDomain(&m.Payments[i], code)
		if err != nil {
			return nil, err
		}
		s.Payments = append(s.Payments, p)
	}
	return s, nil
}

func toItemDomain(m *SaleItem, code currency.Code) (*sale.Item, error) {
	item := &sale.Item{
		ID:               m.ID,
		ProductID:        m.ProductID,
		ProductSKU:       m.ProductSKU,
		ProductName:      m.ProductName,
		CategoryID:       m.CategoryID,
		BrandID:          m.BrandID,
		Quantity:         m.Quantity,
		UnitPrice:        money.NewFromMinor(m.UnitPrice, code),
		RefundedQuantity: m.RefundedQuantity,
		Subtotal:         money.NewFromMinor(m.Subtotal, code),
		Discount:         money.NewFromMinor(m.Discount, code),
		Total:            money.NewFromMinor(m.Total, code),
	}
	if len(m.Offer) > 0 {
		var rec offerRecord
		if err := json.Unmarshal(m.Offer, &rec); err != nil {
			return nil, fmt.Errorf("item %s: bad offer snapshot: %w", m.ID, err)
		}
		percent, err := decimal.NewFromString(orZero(rec.Percent))
		if err != nil {
			return nil, fmt.Errorf("item %s: bad offer percent: %w", m.ID, err)
		}
		item.Offer = &offer.Result{
			OfferID:      rec.OfferID,
			Name:         rec.Name,
			DiscountType: offer.DiscountType(rec.DiscountType),
			Percent:      percent,
			Amount:       money.NewFromMinor(rec.Amount, currency.Code(rec.Currency)),
			Combinable:   rec.Combinable,
		}
	}
	return item, nil
}

func toPaymentDomain(m *SalePayment, code currency.Code) (*sale.Payment, error) {
	p := &sale.Payment{
		ID:            m.ID,
		PaymentModeID: m.PaymentModeID,
		Amount:        money.NewFromMinor(m.Amount, code),
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt,
	}
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("payment %s: bad metadata: %w", m.ID, err)
		}
	}
	return p, nil
}

func toVersionModel(v *sale.Version) (*SaleVersion, error) {
	snapshot, err := json.Marshal(v.Snapshot)
	if err != nil {
		return nil, err
	}
	return &SaleVersion{
		ID:        v.ID,
		SaleID:    v.SaleID,
		Number:    v.Number,
		ActorID:   v.ActorID,
		Snapshot:  snapshot,
		CreatedAt: v.CreatedAt,
	}, nil
}

func toVersionDomain(m *SaleVersion) (*sale.Version, error) {
	v := &sale.Version{
		ID:        m.ID,
		SaleID:    m.SaleID,
		Number:    m.Number,
		ActorID:   m.ActorID,
		CreatedAt: m.CreatedAt,
	}
	if err := json.Unmarshal(m.Snapshot, &v.Snapshot); err != nil {
		return nil, fmt.Errorf("version %s: bad snapshot: %w", m.ID, err)
	}
	return v, nil
}

func toOfferDomain(m *Offer) (*offer.Offer, error) {
	var p offerPayload
	if err := json.Unmarshal(m.Payload, &p); err != nil {
		return nil, fmt.Errorf("offer %s: bad payload: %w", m.ID, err)
	}
	percent := decimal.Zero
	if p.Percent != "" {
		var err error
		percent, err = decimal.NewFromString(p.Percent)
		if err != nil {
			return nil, fmt.Errorf("offer %s: bad percent: %w", m.ID, err)
		}
	}
	o := &offer.Offer{
		ID:           m.ID,
		Name:         m.Name,
		Kind:         offer.Kind(m.Kind),
		Status:       offer.Status(m.Status),
		StartsAt:     m.StartsAt,
		Priority:     p.Priority,
		Combinable:   p.Combinable,
		DiscountType: offer.DiscountType(p.DiscountType),
		Percent:      percent,
		Amounts:      p.Amounts,
		MaxDiscounts: p.MaxDiscounts,
		MinSpends:    p.MinSpends,
		Targeting: offer.Targeting{
			StoreIDs:    p.StoreIDs,
			ProductIDs:  p.ProductIDs,
			CategoryIDs: p.CategoryIDs,
			BrandIDs:    p.BrandIDs,
		},
		BundleQuantity:   p.BundleQuantity,
		BundleProductID:  p.BundleProductID,
		BundleCategoryID: p.BundleCategoryID,
	}
	if m.EndsAt != nil {
		o.EndsAt = *m.EndsAt
	}
	return o, nil
}

func toProductDomain(m *Product) (*catalog.Product, error) {
	p := &catalog.Product{
		ID:         m.ID,
		SKU:        m.SKU,
		Name:       m.Name,
		CategoryID: m.CategoryID,
		BrandID:    m.BrandID,
		Active:     m.Active,
	}
	if len(m.Prices) > 0 {
		if err := json.Unmarshal(m.Prices, &p.Prices); err != nil {
			return nil, fmt.Errorf("product %s: bad prices: %w", m.ID, err)
		}
	}
	return p, nil
}

func toStoreDomain(m *Store) (*catalog.Store, error) {
	taxPercent, err := decimal.NewFromString(orZero(m.TaxPercent))
	if err != nil {
		return nil, fmt.Errorf("store %s: bad tax percent: %w", m.ID, err)
	}
	return &catalog.Store{
		ID:           m.ID,
		Name:         m.Name,
		Currency:     currency.Code(m.Currency),
		TaxPercent:   taxPercent,
		TaxInclusive: m.TaxInclusive,
	}, nil
}

func toCustomerDomain(m *Customer) (*catalog.Customer, error) {
	percent, err := decimal.NewFromString(orZero(m.DiscountPercent))
	if err != nil {
		return nil, fmt.Errorf("customer %s: bad discount percent: %w", m.ID, err)
	}
	return &catalog.Customer{
		ID:              m.ID,
		Name:            m.Name,
		DiscountPercent: percent,
	}, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
