package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WithdrawalFilter struct {
	VendorID *uuid.UUID
	Status   *models.WithdrawalStatus
}

func (f WithdrawalFilter) apply(q *gorm.DB) *gorm.DB {
	if f.VendorID != nil {
		q = q.Where("vendor_id = ?", *f.VendorID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	return q
}

func (r *GormRepo) CreateWithdrawal(ctx context.Context, w *models.WithdrawalRequest) error {
	return r.DB.WithContext(ctx).Create(w).Error
}

func (r *GormRepo) GetWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormRepo) LockWithdrawal(ctx context.Context, id uuid.UUID) (*models.WithdrawalRequest, error) {
	var w models.WithdrawalRequest
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&w).Error; err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *GormRepo) ListWithdrawals(ctx context.Context, f WithdrawalFilter, offset, limit int) (int64, []models.WithdrawalRequest, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.WithdrawalRequest{})).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var out []models.WithdrawalRequest
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.WithdrawalRequest{})).Order("created_at DESC, id ASC").Offset(offset).Limit(limit).Find(&out).Error; err != nil {
		return 0, nil, err
	}
	return total, out, nil
}

// UpdateWithdrawalStatus reports false when the request has left from.
func (r *GormRepo) UpdateWithdrawalStatus(ctx context.Context, id uuid.UUID, from, to models.WithdrawalStatus, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).
		Model(&models.WithdrawalRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to, "processed_at": at})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
