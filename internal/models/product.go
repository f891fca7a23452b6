package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	VendorID  uuid.UUID       `gorm:"type:uuid;index;not null"        json:"vendor_id"`
	Name      string          `gorm:"not null"                        json:"name"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"price"`
	Active    bool            `gorm:"default:false"                   json:"is_active"`
	CreatedAt time.Time       `json:"created_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type ProductVariant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null"    json:"product_id"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
}

func (v *ProductVariant) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
