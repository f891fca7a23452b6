package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// VendorEarning is the per-vendor ledger. Credit and Debit are the only
// mutators; Version guards the compare-and-swap write in the repository.
type VendorEarning struct {
	VendorID       uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"vendor_id"`
	Balance        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"balance"`
	TotalWithdrawn decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"total_withdrawn"`
	Version        int64           `gorm:"not null;default:0"                   json:"-"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewVendorEarning(vendorID uuid.UUID) *VendorEarning {
	return &VendorEarning{
		VendorID:       vendorID,
		Balance:        decimal.Zero,
		TotalWithdrawn: decimal.Zero,
	}
}

func (e *VendorEarning) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: credit must be > 0, got %s", ErrInvalidAmount, amount.StringFixed(2))
	}
	e.Balance = e.Balance.Add(amount)
	return nil
}

func (e *VendorEarning) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: debit must be > 0, got %s", ErrInvalidAmount, amount.StringFixed(2))
	}
	if amount.GreaterThan(e.Balance) {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, e.Balance.StringFixed(2), amount.StringFixed(2))
	}
	e.Balance = e.Balance.Sub(amount)
	e.TotalWithdrawn = e.TotalWithdrawn.Add(amount)
	return nil
}

// EarningEntry journals every credit. OrderID is unique, so an order can be
// credited at most once no matter how many webhook deliveries race.
type EarningEntry struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"            json:"id"`
	VendorID  uuid.UUID       `gorm:"type:uuid;index;not null"        json:"vendor_id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null"  json:"order_id"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null"     json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

func (e *EarningEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
