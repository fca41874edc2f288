package sale_test

import (
	"testing"

	"github.com/amirasaad/pos/pkg/currency"
	"github.com/amirasaad/pos/pkg/domain/sale"
	"github.com/amirasaad/pos/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeSnapshot(t *testing.T) {
	t.Parallel()

	s := newDraft(t)
	item := newItem(t, "19.99", 3)
	require.NoError(t, s.AddItem(item))
	require.NoError(t, s.AttachCustomer(uuid.New(), decimal.NewFromInt(10)))
	reprice(t, s, 8)

	snap := sale.TakeSnapshot(s)
	assert.Equal(t, sale.StatusDraft, snap.Status)
	assert.Equal(t, "USD", snap.Currency)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, item.ID, snap.Items[0].ItemID)
	assert.Equal(t, int64(1999), snap.Items[0].UnitPrice)
	assert.Equal(t, s.GrandTotal.Amount(), snap.GrandTotal)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	s := newDraft(t)
	item := newItem(t, "10.00", 2)
	require.NoError(t, s.AddItem(item))
	reprice(t, s, 0)
	before := sale.TakeSnapshot(s)

	require.NoError(t, s.UpdateItemQuantity(item.ID, 4))
	reprice(t, s, 0)
	after := sale.TakeSnapshot(s)

	changes := sale.Diff(before, after)
	require.NotEmpty(t, changes)

	fields := make(map[string]sale.Change, len(changes))
	for _, c := range changes {
		fields[c.Field] = c
	}

	qty, ok := fields["item."+item.ID.String()+".quantity"]
	require.True(t, ok)
	assert.Equal(t, "2", qty.From)
	assert.Equal(t, "4", qty.To)

	total, ok := fields["grand_total"]
	require.True(t, ok)
	assert.Equal(t, "2000", total.From)
	assert.Equal(t, "4000", total.To)
}

func TestDiffIdenticalSnapshots(t *testing.T) {
	t.Parallel()

	s := newDraft(t)
	require.NoError(t, s.AddItem(newItem(t, "5.00", 1)))
	reprice(t, s, 0)

	snap := sale.TakeSnapshot(s)
	assert.Empty(t, sale.Diff(snap, snap))
}

func TestSnapshotRemovedPaymentShowsInDiff(t *testing.T) {
	t.Parallel()

	s := newDraft(t)
	amount, err := money.NewFromString("5.00", currency.USD)
	require.NoError(t, err)
	p := &sale.Payment{ID: uuid.New(), PaymentModeID: uuid.New(), Amount: amount}
	require.NoError(t, s.AddPayment(p))
	before := sale.TakeSnapshot(s)

	require.NoError(t, s.RemovePayment(p.ID))
	after := sale.TakeSnapshot(s)

	changes := sale.Diff(before, after)
	require.NotEmpty(t, changes)
	var found bool
	for _, c := range changes {
		if c.Field == "payment."+p.ID.String()+".amount" {
			found = true
			assert.Equal(t, "500", c.From)
			assert.Equal(t, "", c.To)
		}
	}
	assert.True(t, found)
}
