package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AddCartItemRequest struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id"`
	Quantity  int        `json:"quantity"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

type CreateWithdrawalRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
