package service

import (
	"testing"

	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/stretchr/testify/require"
)

func TestLedgerCreditDebit(t *testing.T) {
	e := newEnv(t)
	v := e.vendor("acme")
	id := *v.VendorID

	_, err := e.ledger.Credit(e.ctx, id, dec("100.00"))
	require.NoError(t, err)

	_, err = e.ledger.Debit(e.ctx, id, dec("150.00"))
	require.ErrorIs(t, err, ErrInsufficientBalance)

	earning, err := e.ledger.Debit(e.ctx, id, dec("60.00"))
	require.NoError(t, err)
	requireAmount(t, "40.00", earning.Balance)
	requireAmount(t, "60.00", earning.TotalWithdrawn)

	_, err = e.ledger.Credit(e.ctx, id, dec("0"))
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = e.ledger.Debit(e.ctx, id, dec("-5"))
	require.ErrorIs(t, err, ErrInvalidAmount)

	balance, withdrawn := e.balance(v)
	requireAmount(t, "40.00", balance)
	requireAmount(t, "60.00", withdrawn)
}

func TestLedgerDebitSequenceNeverNegative(t *testing.T) {
	e := newEnv(t)
	v := e.vendor("acme")
	id := *v.VendorID

	steps := []struct {
		credit bool
		amount string
		ok     bool
	}{
		{true, "10.00", true},
		{false, "10.01", false},
		{false, "9.99", true},
		{false, "0.02", false},
		{true, "0.05", true},
		{false, "0.06", true},
		{false, "0.01", false},
	}

	for _, s := range steps {
		before, _ := e.balance(v)
		var err error
		if s.credit {
			_, err = e.ledger.Credit(e.ctx, id, dec(s.amount))
		} else {
			_, err = e.ledger.Debit(e.ctx, id, dec(s.amount))
		}
		after, _ := e.balance(v)

		if s.ok {
			require.NoError(t, err)
		} else {
			require.ErrorIs(t, err, ErrInsufficientBalance)
			require.True(t, after.Equal(before))
		}
		require.False(t, after.IsNegative())
	}

	balance, withdrawn := e.balance(v)
	require.True(t, balance.IsZero())
	requireAmount(t, "10.05", withdrawn)
}

func TestGetEarningAccess(t *testing.T) {
	e := newEnv(t)
	v := e.vendor("acme")
	other := e.vendor("other")
	testutil.SeedBalance(t, e.db, *v.VendorID, "12.50")

	st, err := e.ledger.GetEarning(e.ctx, v, *v.VendorID)
	require.NoError(t, err)
	requireAmount(t, "12.50", st.Balance)

	st, err = e.ledger.GetEarning(e.ctx, admin(), *v.VendorID)
	require.NoError(t, err)
	requireAmount(t, "12.50", st.Balance)

	_, err = e.ledger.GetEarning(e.ctx, other, *v.VendorID)
	require.ErrorIs(t, err, ErrForbidden)
	_, err = e.ledger.GetEarning(e.ctx, e.customer("buyer"), *v.VendorID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestGetEarningListsEntries(t *testing.T) {
	e := newEnv(t)
	buyer := e.customer("buyer")
	v := e.vendor("acme")
	o := e.placeOrder(buyer, v, "10.00")
	e.gw.succeed(o.TransactionRef, "10.00")

	_, err := e.payments.HandleWebhook(e.ctx, chargeSuccess(o.TransactionRef), "")
	require.NoError(t, err)

	st, err := e.ledger.GetEarning(e.ctx, v, *v.VendorID)
	require.NoError(t, err)
	requireAmount(t, "9.00", st.Balance)
	require.Len(t, st.Entries, 1)
	require.Equal(t, o.ID, st.Entries[0].OrderID)
	requireAmount(t, "9.00", st.Entries[0].Amount)
}
