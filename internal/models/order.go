package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"                 json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;index;not null"             json:"user_id"`
	VendorID       uuid.UUID       `gorm:"type:uuid;index;not null"             json:"vendor_id"`
	TotalPrice     decimal.Decimal `gorm:"type:numeric(12,2);not null"          json:"total_price"`
	Commission     decimal.Decimal `gorm:"type:numeric(12,2);not null"          json:"commission"`
	Status         OrderStatus     `gorm:"type:varchar(20);index;not null"      json:"status"`
	TransactionRef string          `gorm:"type:varchar(100);index;not null"     json:"transaction_ref"`
	PaymentRef     *string         `gorm:"type:varchar(120);uniqueIndex"        json:"payment_ref,omitempty"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// VendorNet is what the vendor is credited once the order is paid.
func (o *Order) VendorNet() decimal.Decimal {
	return o.TotalPrice.Sub(o.Commission)
}

func (o *Order) Transition(to OrderStatus) error {
	if !o.Status.CanTransition(to) {
		return fmt.Errorf("%w: order %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	o.Status = to
	return nil
}

// OrderItem snapshots the unit price at checkout; later catalog changes never reach it.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"      json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"            json:"product_id"`
	VariantID *uuid.UUID      `gorm:"type:uuid"                     json:"variant_id,omitempty"`
	Quantity  uint            `gorm:"not null;check:quantity>0"     json:"quantity"`
	Price     decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"price"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
