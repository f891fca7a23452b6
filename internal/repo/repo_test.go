package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestResolveProduct(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()

	_, vendor := testutil.SeedVendor(t, db, "acme")
	p := testutil.SeedProduct(t, db, vendor.ID, "mug", "10.00")

	info, err := r.ResolveProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, vendor.ID, info.VendorID)
	require.True(t, info.Price.Equal(dec("10")))
	require.True(t, info.Active)

	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("active", false).Error)
	_, err = r.ResolveProduct(ctx, p.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = r.ResolveProduct(ctx, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVendorEmail(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)

	_, vendor := testutil.SeedVendor(t, db, "acme")
	email, err := r.VendorEmail(context.Background(), vendor.ID)
	require.NoError(t, err)
	require.Equal(t, "acme@example.com", email)

	_, err = r.VendorEmail(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestGetOrCreateCartIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	userID := uuid.New()

	first, err := r.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	second, err := r.GetOrCreateCart(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	var n int64
	require.NoError(t, db.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCartItems(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()

	cart, err := r.GetOrCreateCart(ctx, uuid.New())
	require.NoError(t, err)
	other, err := r.GetOrCreateCart(ctx, uuid.New())
	require.NoError(t, err)

	productID := uuid.New()
	a := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: 1}
	b := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: 2}
	require.NoError(t, r.AddCartItem(ctx, a))
	require.NoError(t, r.AddCartItem(ctx, b))

	items, err := r.CartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	require.ErrorIs(t, r.DeleteCartItem(ctx, other.ID, a.ID), gorm.ErrRecordNotFound)
	require.NoError(t, r.DeleteCartItem(ctx, cart.ID, a.ID))
	require.ErrorIs(t, r.DeleteCartItem(ctx, cart.ID, a.ID), gorm.ErrRecordNotFound)

	n, err := r.DeleteCartItems(ctx, cart.ID, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	n, err = r.ClearCart(ctx, cart.ID)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func newOrder(userID, vendorID uuid.UUID, txRef, total string) *models.Order {
	return &models.Order{
		UserID:         userID,
		VendorID:       vendorID,
		TotalPrice:     dec(total),
		Commission:     dec(total).Mul(dec("0.1")).Round(2),
		Status:         models.OrderStatusPending,
		TransactionRef: txRef,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Quantity: 1, Price: dec(total)},
		},
	}
}

func TestOrders(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()

	buyer := uuid.New()
	v1, v2 := uuid.New(), uuid.New()
	o1 := newOrder(buyer, v1, "tx1", "20.00")
	o2 := newOrder(buyer, v2, "tx1", "5.00")
	o3 := newOrder(uuid.New(), v1, "tx2", "7.00")
	require.NoError(t, r.CreateOrders(ctx, []*models.Order{o1, o2, o3}))

	got, err := r.GetOrder(ctx, o1.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	require.True(t, got.TotalPrice.Equal(dec("20")))

	total, list, err := r.ListOrders(ctx, OrderFilter{UserID: &buyer}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, list, 2)

	total, _, err = r.ListOrders(ctx, OrderFilter{VendorID: &v1}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	pending, err := r.PendingOrdersByRef(ctx, "tx1")
	require.NoError(t, err)
	require.Len(t, pending, 2)

	require.NoError(t, r.SetPaymentRef(ctx, o3.ID, "tx2-abc"))
	pending, err = r.PendingOrdersByRef(ctx, "tx2-abc")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, o3.ID, pending[0].ID)

	ok, err := r.UpdateOrderStatus(ctx, o1.ID, models.OrderStatusPending, models.OrderStatusPaid)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.UpdateOrderStatus(ctx, o1.ID, models.OrderStatusPending, models.OrderStatusPaid)
	require.NoError(t, err)
	require.False(t, ok)

	pending, err = r.PendingCheckoutOrders(ctx, buyer, "tx1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, o2.ID, pending[0].ID)

	require.ErrorIs(t, r.SetPaymentRef(ctx, uuid.New(), "x"), gorm.ErrRecordNotFound)
}

func TestApplyEarning(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	vendorID := uuid.New()

	e, err := r.GetEarning(ctx, vendorID)
	require.NoError(t, err)
	require.True(t, e.Balance.IsZero())

	err = r.Transaction(ctx, func(tx *GormRepo) error {
		_, err := tx.ApplyEarning(ctx, vendorID, func(e *models.VendorEarning) error {
			return e.Credit(dec("100.00"))
		})
		return err
	})
	require.NoError(t, err)

	err = r.Transaction(ctx, func(tx *GormRepo) error {
		_, err := tx.ApplyEarning(ctx, vendorID, func(e *models.VendorEarning) error {
			return e.Debit(dec("150.00"))
		})
		return err
	})
	require.ErrorIs(t, err, models.ErrInsufficientBalance)

	e, err = r.GetEarning(ctx, vendorID)
	require.NoError(t, err)
	assert.True(t, e.Balance.Equal(dec("100")))
	assert.EqualValues(t, 1, e.Version)
}

func TestApplyEarningRollsBackWithTransaction(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	vendorID := uuid.New()
	boom := errors.New("boom")

	err := r.Transaction(ctx, func(tx *GormRepo) error {
		if _, err := tx.ApplyEarning(ctx, vendorID, func(e *models.VendorEarning) error {
			return e.Credit(dec("5"))
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	e, err := r.GetEarning(ctx, vendorID)
	require.NoError(t, err)
	require.True(t, e.Balance.IsZero())
}

func TestInsertEarningEntryOncePerOrder(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	vendorID, orderID := uuid.New(), uuid.New()

	ok, err := r.InsertEarningEntry(ctx, &models.EarningEntry{VendorID: vendorID, OrderID: orderID, Amount: dec("18")})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = r.InsertEarningEntry(ctx, &models.EarningEntry{VendorID: vendorID, OrderID: orderID, Amount: dec("18")})
	require.NoError(t, err)
	require.False(t, ok)

	entries, err := r.EarningEntries(ctx, vendorID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestWithdrawals(t *testing.T) {
	db := testutil.NewDB(t)
	r := New(db)
	ctx := context.Background()
	vendorID := uuid.New()

	w := &models.WithdrawalRequest{VendorID: vendorID, Amount: dec("60"), Status: models.WithdrawalPending}
	require.NoError(t, r.CreateWithdrawal(ctx, w))
	require.NoError(t, r.CreateWithdrawal(ctx, &models.WithdrawalRequest{VendorID: uuid.New(), Amount: dec("1"), Status: models.WithdrawalPending}))

	total, list, err := r.ListWithdrawals(ctx, WithdrawalFilter{VendorID: &vendorID}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, w.ID, list[0].ID)

	now := time.Now().UTC()
	ok, err := r.UpdateWithdrawalStatus(ctx, w.ID, models.WithdrawalPending, models.WithdrawalApproved, now)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = r.UpdateWithdrawalStatus(ctx, w.ID, models.WithdrawalPending, models.WithdrawalRejected, now)
	require.NoError(t, err)
	require.False(t, ok)

	got, err := r.GetWithdrawal(ctx, w.ID)
	require.NoError(t, err)
	require.Equal(t, models.WithdrawalApproved, got.Status)
	require.NotNil(t, got.ProcessedAt)

	status := models.WithdrawalPending
	total, _, err = r.ListWithdrawals(ctx, WithdrawalFilter{Status: &status}, 0, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	_, err = r.LockWithdrawal(ctx, uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
