package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"          json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CartItem lines are never merged: adding the same product twice yields two lines.
type CartItem struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"          json:"id"`
	CartID    uuid.UUID  `gorm:"type:uuid;index;not null"      json:"cart_id"`
	ProductID uuid.UUID  `gorm:"type:uuid;not null"            json:"product_id"`
	VariantID *uuid.UUID `gorm:"type:uuid"                     json:"variant_id,omitempty"`
	Quantity  uint       `gorm:"not null;check:quantity>0"     json:"quantity"`
	CreatedAt time.Time  `json:"created_at"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}
