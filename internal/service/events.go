package service

import (
	"time"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/google/uuid"
)

const (
	TopicOrders      = "order_events"
	TopicWithdrawals = "withdrawal_events"

	EventOrderCreated       = "order_created"
	EventOrderPaid          = "order_paid"
	EventOrderStatusChanged = "order_status_changed"

	EventWithdrawalRequested = "withdrawal_requested"
	EventWithdrawalApproved  = "withdrawal_approved"
	EventWithdrawalRejected  = "withdrawal_rejected"
	EventWithdrawalPaid      = "withdrawal_paid"
)

type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        uuid.UUID          `json:"order_id"`
	UserID         uuid.UUID          `json:"user_id"`
	VendorID       uuid.UUID          `json:"vendor_id"`
	TransactionRef string             `json:"transaction_ref"`
	Status         models.OrderStatus `json:"status"`
	Total          string             `json:"total_price"`
	Commission     string             `json:"commission"`
	At             time.Time          `json:"at"`
}

func newOrderEvent(typ string, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:           typ,
		OrderID:        o.ID,
		UserID:         o.UserID,
		VendorID:       o.VendorID,
		TransactionRef: o.TransactionRef,
		Status:         o.Status,
		Total:          o.TotalPrice.StringFixed(2),
		Commission:     o.Commission.StringFixed(2),
		At:             time.Now().UTC(),
	}
}

type WithdrawalEvent struct {
	Type         string                  `json:"type"`
	WithdrawalID uuid.UUID               `json:"withdrawal_id"`
	VendorID     uuid.UUID               `json:"vendor_id"`
	Amount       string                  `json:"amount"`
	Status       models.WithdrawalStatus `json:"status"`
	At           time.Time               `json:"at"`
}

func newWithdrawalEvent(typ string, w *models.WithdrawalRequest) WithdrawalEvent {
	return WithdrawalEvent{
		Type:         typ,
		WithdrawalID: w.ID,
		VendorID:     w.VendorID,
		Amount:       w.Amount.StringFixed(2),
		Status:       w.Status,
		At:           time.Now().UTC(),
	}
}
