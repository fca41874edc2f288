// Package pricing computes per-line and transaction-level totals for a sale.
//
// Discount stacking is an ordered pipeline of stages
// (customer -> offer -> manual), each a pure function on the line's remaining
// amount. Stages compose left to right and each applies to the already
// discounted remainder, never to the original price, so stacked percentages
// multiply rather than add. Amounts stay unrounded decimals through the
// pipeline; rounding happens once at the line boundary, half to even.
package pricing

import (
	"errors"
	"fmt"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/offer"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrCurrencyMismatch is returned when a line or discount is not in the
// transaction's currency.
var ErrCurrencyMismatch = errors.New("pricing input not in transaction currency")

// ManualDiscountType discriminates cashier-applied discounts.
type ManualDiscountType string

const (
	// ManualPercentage is a percentage off every eligible line.
	ManualPercentage ManualDiscountType = "percentage"
	// ManualAmount is a fixed amount apportioned pro-rata across eligible
	// lines by subtotal share.
	ManualAmount ManualDiscountType = "amount"
)

// ManualDiscount is a discretionary cashier discount. Exactly one of Percent
// or Amount is meaningful depending on Type.
type ManualDiscount struct {
	Type    ManualDiscountType
	Percent decimal.Decimal
	Amount  money.Money
}

// LineInput is one sale line to price.
type LineInput struct {
	ItemID    uuid.UUID
	UnitPrice money.Money
	Quantity  int
	Offer     *offer.Result
}

// Input is everything the engine needs to price a transaction.
type Input struct {
	Currency currency.Code
	Lines    []LineInput
	// CustomerPercent is the customer's standing discount; nil when detached
	// or cleared for this sale.
	CustomerPercent *decimal.Decimal
	Manual          *ManualDiscount
	TaxPercent      decimal.Decimal
	TaxInclusive    bool
}

// LineBreakdown is the priced result for one line.
type LineBreakdown struct {
	ItemID   uuid.UUID
	Subtotal money.Money
	Discount money.Money
	Total    money.Money
}

// Breakdown is the priced result for the whole transaction.
type Breakdown struct {
	Subtotal   money.Money
	Discount   money.Money
	Tax        money.Money
	GrandTotal money.Money
	Lines      []LineBreakdown
}

// stage transforms a line's remaining amount (unrounded minor units).
type stage func(remaining decimal.Decimal) decimal.Decimal

var hundred = decimal.NewFromInt(100)

func percentStage(p decimal.Decimal) stage {
	return func(remaining decimal.Decimal) decimal.Decimal {
		return floorZero(remaining.Sub(remaining.Mul(p).Div(hundred)))
	}
}

func amountStage(amount decimal.Decimal) stage {
	return func(remaining decimal.Decimal) decimal.Decimal {
		return floorZero(remaining.Sub(amount))
	}
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// offerStage builds the stage for a resolved offer.
func offerStage(result *offer.Result) stage {
	if result.DiscountType == offer.DiscountPercentage {
		return percentStage(result.Percent)
	}
	return amountStage(result.Amount.Decimal())
}

// Compute prices the transaction. It is pure: identical inputs always yield
// identical breakdowns.
func Compute(in Input) (Breakdown, error) {
	zero := money.Zero(in.Currency)
	out := Breakdown{
		Subtotal:   zero,
		Discount:   zero,
		Tax:        zero,
		GrandTotal: zero,
		Lines:      make([]LineBreakdown, len(in.Lines)),
	}

	if in.Manual != nil && in.Manual.Type == ManualAmount &&
		in.Manual.Amount.Currency() != in.Currency {
		return Breakdown{}, fmt.Errorf("%w: manual discount %s",
			ErrCurrencyMismatch, in.Manual.Amount.Currency())
	}

	subtotals := make([]money.Money, len(in.Lines))
	remainders := make([]decimal.Decimal, len(in.Lines))
	manualEligible := make([]bool, len(in.Lines))

	for i, line := range in.Lines {
		if line.UnitPrice.Currency() != in.Currency {
			return Breakdown{}, fmt.Errorf("%w: line %s priced in %s",
				ErrCurrencyMismatch, line.ItemID, line.UnitPrice.Currency())
		}
		subtotals[i] = line.UnitPrice.MultiplyQty(line.Quantity)

		stages, eligible := lineStages(line, in.CustomerPercent, in.Manual)
		manualEligible[i] = eligible

		remaining := subtotals[i].Decimal()
		for _, apply := range stages {
			remaining = apply(remaining)
		}
		remainders[i] = remaining
	}

	applyManualAmount(in, subtotals, remainders, manualEligible)

	for i := range in.Lines {
		total := subtotals[i].FromDecimal(remainders[i]).ClampZero()
		discount, err := subtotals[i].Subtract(total)
		if err != nil {
			return Breakdown{}, err
		}
		out.Lines[i] = LineBreakdown{
			ItemID:   in.Lines[i].ItemID,
			Subtotal: subtotals[i],
			Discount: discount,
			Total:    total,
		}
		if out.Subtotal, err = out.Subtotal.Add(subtotals[i]); err != nil {
			return Breakdown{}, err
		}
		if out.Discount, err = out.Discount.Add(discount); err != nil {
			return Breakdown{}, err
		}
	}

	taxable, err := out.Subtotal.Subtract(out.Discount)
	if err != nil {
		return Breakdown{}, err
	}
	taxable = taxable.ClampZero()

	if in.TaxInclusive {
		// Tax is already embedded in prices; back it out for display.
		out.GrandTotal = taxable
		out.Tax = taxable.BackOutPercent(in.TaxPercent)
		return out, nil
	}
	out.Tax = taxable.Percent(in.TaxPercent)
	if out.GrandTotal, err = taxable.Add(out.Tax); err != nil {
		return Breakdown{}, err
	}
	return out, nil
}

// lineStages assembles the per-line pipeline. A non-combinable offer owns the
// line exclusively: no customer or manual discount may stack with it. The
// returned bool reports whether a manual amount discount may touch the line.
func lineStages(
	line LineInput,
	customerPercent *decimal.Decimal,
	manual *ManualDiscount,
) ([]stage, bool) {
	if line.Offer != nil && !line.Offer.Combinable {
		return []stage{offerStage(line.Offer)}, false
	}

	var stages []stage
	if customerPercent != nil && customerPercent.IsPositive() {
		stages = append(stages, percentStage(*customerPercent))
	}
	if line.Offer != nil {
		stages = append(stages, offerStage(line.Offer))
	}
	if manual != nil && manual.Type == ManualPercentage {
		stages = append(stages, percentStage(manual.Percent))
	}
	return stages, true
}

// applyManualAmount apportions a fixed manual discount pro-rata across
// eligible lines by subtotal share. The last eligible line takes the
// remainder so the shares sum exactly to the requested amount; each share is
// clamped at the line's remaining value.
func applyManualAmount(
	in Input,
	subtotals []money.Money,
	remainders []decimal.Decimal,
	eligible []bool,
) {
	if in.Manual == nil || in.Manual.Type != ManualAmount {
		return
	}

	totalEligible := decimal.Zero
	last := -1
	for i := range subtotals {
		if eligible[i] {
			totalEligible = totalEligible.Add(subtotals[i].Decimal())
			last = i
		}
	}
	if last < 0 || !totalEligible.IsPositive() {
		return
	}

	amount := in.Manual.Amount.Decimal()
	distributed := decimal.Zero
	for i := range subtotals {
		if !eligible[i] {
			continue
		}
		share := amount.Mul(subtotals[i].Decimal()).Div(totalEligible)
		if i == last {
			share = amount.Sub(distributed)
		}
		distributed = distributed.Add(share)
		remainders[i] = floorZero(remainders[i].Sub(share))
	}
}
