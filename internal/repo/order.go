package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	UserID   *uuid.UUID
	VendorID *uuid.UUID
	Status   *models.OrderStatus
}

func (f OrderFilter) apply(q *gorm.DB) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.VendorID != nil {
		q = q.Where("vendor_id = ?", *f.VendorID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}

// CreateOrders inserts the orders together with their items.
func (r *GormRepo) CreateOrders(ctx context.Context, orders []*models.Order) error {
	for _, o := range orders {
		if err := r.DB.WithContext(ctx).Create(o).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Order{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Order{})).
		Preload("Items").
		Order("created_at DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// UpdateOrderStatus moves an order only if it is still in from. It reports
// false when another writer got there first.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) SetPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Updates(map[string]any{"payment_ref": ref, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PendingOrdersByRef finds the pending orders a gateway reference pays for:
// either a whole checkout (transaction_ref) or a single order (payment_ref).
func (r *GormRepo) PendingOrdersByRef(ctx context.Context, ref string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("status = ?", models.OrderStatusPending).
		Where("(transaction_ref = ? OR payment_ref = ?)", ref, ref).
		Order("vendor_id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *GormRepo) PendingCheckoutOrders(ctx context.Context, userID uuid.UUID, txRef string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND transaction_ref = ? AND status = ?", userID, txRef, models.OrderStatusPending).
		Order("vendor_id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
