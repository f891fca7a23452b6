package repo

import (
	"context"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductInfo is what checkout needs from the catalog: the live price and
// the owning vendor.
type ProductInfo struct {
	ID       uuid.UUID
	VendorID uuid.UUID
	Name     string
	Price    decimal.Decimal
	Active   bool
}

// ResolveProduct returns gorm.ErrRecordNotFound for missing or inactive products.
func (r *GormRepo) ResolveProduct(ctx context.Context, id uuid.UUID) (*ProductInfo, error) {
	var p models.Product
	if err := r.DB.WithContext(ctx).Where("id = ? AND active = ?", id, true).First(&p).Error; err != nil {
		return nil, err
	}
	return &ProductInfo{ID: p.ID, VendorID: p.VendorID, Name: p.Name, Price: p.Price, Active: p.Active}, nil
}

func (r *GormRepo) ResolveVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var v models.ProductVariant
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *GormRepo) UserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Select("email").Where("id = ?", userID).First(&u).Error; err != nil {
		return "", err
	}
	return u.Email, nil
}

// VendorEmail returns the e-mail of the user that owns the storefront.
func (r *GormRepo) VendorEmail(ctx context.Context, vendorID uuid.UUID) (string, error) {
	var emails []string
	err := r.DB.WithContext(ctx).
		Model(&models.Vendor{}).
		Joins("JOIN users ON users.id = vendors.user_id").
		Where("vendors.id = ?", vendorID).
		Limit(1).
		Pluck("users.email", &emails).Error
	if err != nil {
		return "", err
	}
	if len(emails) == 0 {
		return "", gorm.ErrRecordNotFound
	}
	return emails[0], nil
}
