package money_test

import (
	"testing"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustFromString(t *testing.T, value string, code currency.Code) money.Money {
	t.Helper()
	m, err := money.NewFromString(value, code)
	require.NoError(t, err)
	return m
}

func TestNewFromString(t *testing.T) {
	t.Parallel()

	m := mustFromString(t, "19.99", currency.USD)
	assert.Equal(t, int64(1999), m.Amount())
	assert.Equal(t, currency.USD, m.Currency())

	// JPY has zero decimal places.
	y := mustFromString(t, "500", currency.JPY)
	assert.Equal(t, int64(500), y.Amount())

	_, err := money.NewFromString("19.999", currency.USD)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.NewFromString("1.5", currency.JPY)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)

	_, err = money.NewFromString("abc", currency.USD)
	assert.ErrorIs(t, err, money.ErrInvalidAmount)
}

func TestAddSubtract(t *testing.T) {
	t.Parallel()

	a := mustFromString(t, "10.00", currency.USD)
	b := mustFromString(t, "2.50", currency.USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Amount())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(750), diff.Amount())

	e := mustFromString(t, "1.00", currency.EUR)
	_, err = a.Add(e)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
	_, err = a.Subtract(e)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestMultiplyQty(t *testing.T) {
	t.Parallel()

	m := mustFromString(t, "19.99", currency.USD)
	assert.Equal(t, int64(5997), m.MultiplyQty(3).Amount())
}

func TestPercentRoundsHalfToEven(t *testing.T) {
	t.Parallel()

	// 8% of 59.97 = 4.7976 -> 4.80
	m := mustFromString(t, "59.97", currency.USD)
	assert.Equal(t, int64(480), m.Percent(decimal.NewFromInt(8)).Amount())

	// Half-to-even ties: 2.5 -> 2, 3.5 -> 4 (minor units).
	a := money.NewFromMinor(25, currency.USD)
	assert.Equal(t, int64(2), a.Percent(decimal.NewFromInt(10)).Amount())

	b := money.NewFromMinor(35, currency.USD)
	assert.Equal(t, int64(4), b.Percent(decimal.NewFromInt(10)).Amount())
}

func TestBackOutPercent(t *testing.T) {
	t.Parallel()

	// 110.00 inclusive of 10% tax embeds 10.00 of tax.
	m := mustFromString(t, "110.00", currency.USD)
	assert.Equal(t, int64(1000), m.BackOutPercent(decimal.NewFromInt(10)).Amount())
}

func TestCompare(t *testing.T) {
	t.Parallel()

	a := mustFromString(t, "10.00", currency.USD)
	b := mustFromString(t, "2.50", currency.USD)

	cmp, err := a.Compare(b)
	require.NoError(t, err)
	assert.Equal(t, 1, cmp)

	cmp, err = b.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = a.Compare(a)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp)

	_, err = a.Compare(mustFromString(t, "10.00", currency.EUR))
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)
}

func TestClampZero(t *testing.T) {
	t.Parallel()

	a := mustFromString(t, "2.00", currency.USD)
	b := mustFromString(t, "5.00", currency.USD)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.True(t, diff.IsNegative())
	assert.True(t, diff.ClampZero().IsZero())
	assert.Equal(t, a, a.ClampZero())
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "$19.99", mustFromString(t, "19.99", currency.USD).String())
	assert.Equal(t, "¥500", mustFromString(t, "500", currency.JPY).String())
	assert.Equal(t, "$0.00", money.Zero(currency.USD).String())
}
