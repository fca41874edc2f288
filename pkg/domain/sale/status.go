package sale

// Status is the sale's lifecycle state.
//
// The machine is:
//
//	draft -> draft       (any item/customer/discount/payment mutation)
//	draft -> suspended   (suspend) and suspended -> draft (resume)
//	draft -> completed   (complete; one-way)
//	any non-voided -> voided (void; terminal)
//
// completed is terminal for structural mutation but still accepts refunds;
// refund tracking is orthogonal to Status (see RefundLevel).
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSuspended Status = "suspended"
	StatusCompleted Status = "completed"
	StatusVoided    Status = "voided"
)

// RefundLevel tracks how much of a completed sale has been refunded.
type RefundLevel string

const (
	RefundNone    RefundLevel = "none"
	RefundPartial RefundLevel = "partial"
	RefundFull    RefundLevel = "full"
)
