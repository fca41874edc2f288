package repository

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sale represents a sale record in the database. The open-draft uniqueness
// for (store, employee) is a partial unique index created in Migrate, not a
// gorm tag, because it only covers rows with status = 'draft'.
type Sale struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	StoreID    uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     string    `gorm:"type:varchar(16);not null;default:'draft';index"`
	Currency   string    `gorm:"type:varchar(3);not null"`

	CustomerID              *uuid.UUID `gorm:"type:uuid"`
	CustomerDiscountPercent string     `gorm:"type:varchar(32)"`
	CustomerDiscountApplied bool

	ManualDiscountType  string `gorm:"type:varchar(16)"`
	ManualDiscountValue string `gorm:"type:varchar(32)"`

	Subtotal   int64
	Discount   int64
	Tax        int64
	GrandTotal int64

	VoidReason   string
	RefundReason string

	CompletedAt *time.Time
	VoidedAt    *time.Time

	Items    []SaleItem    `gorm:"foreignKey:SaleID"`
	Payments []SalePayment `gorm:"foreignKey:SaleID"`
}

// SaleItem represents a sale line record in the database. The offer snapshot
// is denormalized JSON so later offer edits cannot rewrite history.
type SaleItem struct {
	gorm.Model
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	SaleID      uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID `gorm:"type:uuid;not null"`
	ProductSKU  string    `gorm:"type:varchar(64)"`
	ProductName string    `gorm:"type:varchar(255)"`
	CategoryID  uuid.UUID `gorm:"type:uuid"`
	BrandID     uuid.UUID `gorm:"type:uuid"`

	Quantity  int `gorm:"not null"`
	UnitPrice int64
	Offer     []byte `gorm:"type:jsonb"`

	RefundedQuantity int

	Subtotal int64
	Discount int64
	Total    int64
}

// SalePayment represents a tender record in the database.
type SalePayment struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	SaleID        uuid.UUID `gorm:"type:uuid;not null;index"`
	PaymentModeID uuid.UUID `gorm:"type:uuid;not null"`
	Amount        int64
	Metadata      []byte    `gorm:"type:jsonb"`
	CreatedBy     uuid.UUID `gorm:"type:uuid"`
}

// SaleVersion is one append-only audit snapshot. Rows are only ever
// inserted; there is no soft delete.
type SaleVersion struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	SaleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_sale_version,priority:1"`
	Number    int       `gorm:"not null;uniqueIndex:idx_sale_version,priority:2"`
	ActorID   uuid.UUID `gorm:"type:uuid"`
	Snapshot  []byte    `gorm:"type:jsonb;not null"`
	CreatedAt time.Time
}

// Offer represents an offer record in the database. The window and status
// columns are what ListActive filters on; the rule payload (targeting,
// amounts per currency, bundle fields) travels as JSON.
type Offer struct {
	gorm.Model
	ID       uuid.UUID `gorm:"type:uuid;primary_key"`
	Name     string    `gorm:"type:varchar(255);not null"`
	Kind     string    `gorm:"type:varchar(16);not null"`
	Status   string    `gorm:"type:varchar(16);not null;index"`
	StartsAt time.Time `gorm:"index"`
	EndsAt   *time.Time
	Payload  []byte `gorm:"type:jsonb;not null"`
}

// Product represents a product record in the database.
type Product struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	SKU        string    `gorm:"uniqueIndex;not null;size:64"`
	Name       string    `gorm:"type:varchar(255);not null"`
	CategoryID uuid.UUID `gorm:"type:uuid"`
	BrandID    uuid.UUID `gorm:"type:uuid"`
	Prices     []byte    `gorm:"type:jsonb"`
	Active     bool      `gorm:"not null;default:true"`
}

// Store represents a store record in the database.
type Store struct {
	gorm.Model
	ID           uuid.UUID `gorm:"type:uuid;primary_key"`
	Name         string    `gorm:"type:varchar(255);not null"`
	Currency     string    `gorm:"type:varchar(3);not null;default:'USD'"`
	TaxPercent   string    `gorm:"type:varchar(32);not null;default:'0'"`
	TaxInclusive bool
}

// Customer represents a customer record in the database.
type Customer struct {
	gorm.Model
	ID              uuid.UUID `gorm:"type:uuid;primary_key"`
	Name            string    `gorm:"type:varchar(255);not null"`
	DiscountPercent string    `gorm:"type:varchar(32);not null;default:'0'"`
}
