package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

var withdrawalTransitions = map[WithdrawalStatus][]WithdrawalStatus{
	WithdrawalPending:  {WithdrawalApproved, WithdrawalRejected},
	WithdrawalApproved: {WithdrawalPaid},
}

func (s WithdrawalStatus) Valid() bool {
	switch s {
	case WithdrawalPending, WithdrawalApproved, WithdrawalRejected, WithdrawalPaid:
		return true
	}
	return false
}

func (s WithdrawalStatus) CanTransition(to WithdrawalStatus) bool {
	for _, next := range withdrawalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

type WithdrawalRequest struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey"               json:"id"`
	VendorID    uuid.UUID        `gorm:"type:uuid;index;not null"           json:"vendor_id"`
	Amount      decimal.Decimal  `gorm:"type:numeric(12,2);not null"        json:"amount"`
	Status      WithdrawalStatus `gorm:"type:varchar(20);index;not null"    json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}

func (w *WithdrawalRequest) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Transition moves the request along the table and stamps ProcessedAt.
func (w *WithdrawalRequest) Transition(to WithdrawalStatus, at time.Time) error {
	if !w.Status.CanTransition(to) {
		return fmt.Errorf("%w: withdrawal %s -> %s", ErrInvalidTransition, w.Status, to)
	}
	w.Status = to
	w.ProcessedAt = &at
	return nil
}
