package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleVendor   Role = "vendor"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// User and Vendor are owned by the accounts service; this module only reads them.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Username  string    `gorm:"uniqueIndex;not null"        json:"username"`
	Email     string    `gorm:"not null"                    json:"email"`
	Role      Role      `gorm:"type:varchar(20);not null"   json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Vendor struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex"       json:"user_id"`
	StoreName string    `gorm:"not null"                    json:"store_name"`
	Verified  bool      `gorm:"default:false"               json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
