package repo

import (
	"context"
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (r *GormRepo) ensureEarning(ctx context.Context, vendorID uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "vendor_id"}}, DoNothing: true}).
		Create(models.NewVendorEarning(vendorID)).Error
}

// GetEarning returns the vendor's ledger row, creating an empty one on first use.
func (r *GormRepo) GetEarning(ctx context.Context, vendorID uuid.UUID) (*models.VendorEarning, error) {
	if err := r.ensureEarning(ctx, vendorID); err != nil {
		return nil, err
	}
	var e models.VendorEarning
	if err := r.DB.WithContext(ctx).Where("vendor_id = ?", vendorID).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ApplyEarning locks the vendor's ledger row, lets fn mutate it through the
// model's Credit/Debit and writes it back guarded by the row version. Run it
// inside Transaction. An error from fn leaves the row untouched.
func (r *GormRepo) ApplyEarning(ctx context.Context, vendorID uuid.UUID, fn func(e *models.VendorEarning) error) (*models.VendorEarning, error) {
	if err := r.ensureEarning(ctx, vendorID); err != nil {
		return nil, err
	}

	var e models.VendorEarning
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("vendor_id = ?", vendorID).
		First(&e).Error; err != nil {
		return nil, err
	}

	if err := fn(&e); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res := r.DB.WithContext(ctx).
		Model(&models.VendorEarning{}).
		Where("vendor_id = ? AND version = ?", vendorID, e.Version).
		Updates(map[string]any{
			"balance":         e.Balance,
			"total_withdrawn": e.TotalWithdrawn,
			"version":         e.Version + 1,
			"updated_at":      now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrStaleVersion
	}

	e.Version++
	e.UpdatedAt = now
	return &e, nil
}

// InsertEarningEntry journals a credit. It reports false, without error,
// when the order already has an entry.
func (r *GormRepo) InsertEarningEntry(ctx context.Context, entry *models.EarningEntry) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(entry)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) EarningEntries(ctx context.Context, vendorID uuid.UUID) ([]models.EarningEntry, error) {
	var entries []models.EarningEntry
	if err := r.DB.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
