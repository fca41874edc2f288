package sale

import "errors"

var (
	// ErrInvalidState is returned when an operation is attempted against a
	// sale whose status does not permit it. The sale is left untouched.
	ErrInvalidState = errors.New("operation not allowed in current sale status")

	// ErrSaleNotFound is returned when a sale id cannot be resolved.
	ErrSaleNotFound = errors.New("sale not found")
	// ErrItemNotFound is returned when an item id does not belong to the sale.
	ErrItemNotFound = errors.New("item not found on sale")
	// ErrPaymentNotFound is returned when a payment id does not belong to the sale.
	ErrPaymentNotFound = errors.New("payment not found on sale")

	// ErrDuplicateProduct is returned when adding a product already present
	// on the sale; quantity changes go through the existing line.
	ErrDuplicateProduct = errors.New("product already on sale")
	// ErrQuantityNotPositive is returned for a zero or negative quantity.
	ErrQuantityNotPositive = errors.New("quantity must be at least 1")
	// ErrUnitPriceNegative is returned for a negative price override.
	ErrUnitPriceNegative = errors.New("unit price must not be negative")
	// ErrDiscountOutOfRange is returned for a manual discount value outside
	// its permitted range.
	ErrDiscountOutOfRange = errors.New("discount value out of range")
	// ErrNoCustomer is returned when toggling the customer discount on a
	// sale with no customer attached.
	ErrNoCustomer = errors.New("no customer attached to sale")
	// ErrPaymentAmountNotPositive is returned for a non-positive payment.
	ErrPaymentAmountNotPositive = errors.New("payment amount must be positive")

	// ErrEmptySale is returned when completing a sale with no items.
	ErrEmptySale = errors.New("cannot complete a sale with no items")
	// ErrPaymentMismatch is returned when completing a sale whose payments
	// do not equal the grand total exactly. Over- and under-payment are both
	// rejected; the ledger is never silently adjusted.
	ErrPaymentMismatch = errors.New("payments must equal grand total exactly")
	// ErrVoidReasonRequired is returned when voiding a completed sale
	// without a reason.
	ErrVoidReasonRequired = errors.New("void reason required for completed sale")
	// ErrRefundExceedsQuantity is returned when a refund asks for more units
	// than remain refundable on a line.
	ErrRefundExceedsQuantity = errors.New("refund exceeds remaining quantity")
	// ErrNothingToRefund is returned for a refund with no lines.
	ErrNothingToRefund = errors.New("refund requires at least one line")

	// ErrVersionNotFound is returned when a requested audit version number
	// does not exist for the sale.
	ErrVersionNotFound = errors.New("version not found for sale")
)
