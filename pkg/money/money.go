// Package money provides the fixed-precision monetary value type used across
// the POS engine.
//
// Invariants:
//   - Amounts are stored as int64 in the smallest currency unit (e.g. cents).
//   - Arithmetic never touches binary floating point; percentage and rate
//     application go through shopspring/decimal.
//   - Rounding is round-half-to-even at the currency's decimal places and is
//     applied only when producing a final line/total value, never between
//     intermediate steps of one computation.
package money

import (
	"errors"
	"fmt"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/shopspring/decimal"
)

var (
	// ErrCurrencyMismatch is returned when an operation mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrInvalidAmount is returned when an amount cannot be represented in
	// the currency's decimal places.
	ErrInvalidAmount = errors.New("invalid amount for currency")
)

// Money represents a monetary value in a specific currency.
type Money struct {
	amount   int64
	currency currency.Code
}

// Zero returns a zero value in the given currency.
func Zero(code currency.Code) Money {
	return Money{currency: code}
}

// NewFromMinor creates Money from an amount already expressed in the
// currency's smallest unit.
func NewFromMinor(amount int64, code currency.Code) Money {
	return Money{amount: amount, currency: code}
}

// NewFromString parses a decimal string (e.g. "19.99") into Money, rejecting
// amounts with more decimal places than the currency allows.
func NewFromString(value string, code currency.Code) (Money, error) {
	meta, err := currency.Get(code)
	if err != nil {
		return Money{}, err
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmount, value)
	}
	minor := d.Shift(int32(meta.Decimals))
	if !minor.IsInteger() {
		return Money{}, fmt.Errorf("%w: %q has more than %d decimal places",
			ErrInvalidAmount, value, meta.Decimals)
	}
	return Money{amount: minor.IntPart(), currency: code}, nil
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() int64 { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// Decimal returns the amount in minor units as a decimal, for callers that
// need to carry an unrounded intermediate value through a computation.
func (m Money) Decimal() decimal.Decimal { return decimal.NewFromInt(m.amount) }

// FromDecimal produces a Money in m's currency from a minor-unit decimal,
// rounding half to even to a whole minor unit. This is the single place a
// computation's result crosses back into a concrete amount.
func (m Money) FromDecimal(d decimal.Decimal) Money {
	return Money{amount: d.RoundBank(0).IntPart(), currency: m.currency}
}

// Add adds another Money value. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract subtracts another Money value. Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// MultiplyQty multiplies the amount by an integer quantity.
func (m Money) MultiplyQty(qty int) Money {
	return Money{amount: m.amount * int64(qty), currency: m.currency}
}

// Percent returns p percent of the amount, rounded half to even at the
// currency's decimal places. p is expressed as a percentage (10 means 10%).
func (m Money) Percent(p decimal.Decimal) Money {
	result := m.Decimal().Mul(p).Div(decimal.NewFromInt(100))
	return m.FromDecimal(result)
}

// BackOutPercent returns the tax portion embedded in a tax-inclusive amount
// for the given percentage rate: amount - amount/(1+rate/100).
func (m Money) BackOutPercent(p decimal.Decimal) Money {
	divisor := decimal.NewFromInt(1).Add(p.Div(decimal.NewFromInt(100)))
	net := m.Decimal().DivRound(divisor, 8)
	return m.FromDecimal(m.Decimal().Sub(net))
}

// Compare returns -1, 0 or 1 comparing m to other. Currencies must match.
func (m Money) Compare(other Money) (int, error) {
	if !m.IsSameCurrency(other) {
		return 0, ErrCurrencyMismatch
	}
	switch {
	case m.amount < other.amount:
		return -1, nil
	case m.amount > other.amount:
		return 1, nil
	default:
		return 0, nil
	}
}

// Equals checks amount and currency equality.
func (m Money) Equals(other Money) bool {
	return m.IsSameCurrency(other) && m.amount == other.amount
}

// IsSameCurrency checks whether other is in the same currency.
func (m Money) IsSameCurrency(other Money) bool { return m.currency == other.currency }

// IsPositive returns true if the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative returns true if the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// ClampZero floors a negative amount at zero. Discount arithmetic uses this
// so a discount can never push a line below zero.
func (m Money) ClampZero() Money {
	if m.amount < 0 {
		return Money{currency: m.currency}
	}
	return m
}

// String renders the amount with the currency's symbol and decimal places,
// e.g. "$19.99".
func (m Money) String() string {
	meta, err := currency.Get(m.currency)
	if err != nil {
		return fmt.Sprintf("%d %s", m.amount, m.currency)
	}
	value := decimal.New(m.amount, -int32(meta.Decimals))
	return meta.Symbol + value.StringFixed(int32(meta.Decimals))
}
