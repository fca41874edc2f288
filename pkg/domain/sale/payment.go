package sale

import (
	"time"

	"github.com/amirasaad/pos/pkg/money"
	"github.com/google/uuid"
)

// Payment is one tender collected against the sale. Metadata carries
// payment-mode-specific details (card reference numbers, voucher codes)
// without the engine interpreting them.
type Payment struct {
	ID            uuid.UUID
	PaymentModeID uuid.UUID
	Amount        money.Money
	Metadata      map[string]string
	CreatedBy     uuid.UUID
	CreatedAt     time.Time
}
