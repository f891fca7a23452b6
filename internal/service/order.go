package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/google/uuid"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type OrderList struct {
	Total  int64          `json:"total"`
	Page   util.Page      `json:"page"`
	Orders []models.Order `json:"orders"`
}

// ListOrders shows admins everything, vendors their storefront's orders and
// customers their own purchases, newest first.
func (s *OrderService) ListOrders(ctx context.Context, actor Actor, page util.Page, status *models.OrderStatus) (*OrderList, error) {
	f := repo.OrderFilter{Status: status}
	switch {
	case actor.IsAdmin():
	case actor.Role == models.RoleVendor:
		if actor.VendorID == nil {
			return nil, fmt.Errorf("%w: vendor account without storefront", ErrForbidden)
		}
		f.VendorID = actor.VendorID
	default:
		f.UserID = &actor.UserID
	}

	offset, limit := page.Calculate()
	total, orders, err := s.Repo.ListOrders(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	return &OrderList{Total: total, Page: page, Orders: orders}, nil
}

func (s *OrderService) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, translate(err, "order "+id.String())
	}
	if !CanViewOrder(actor, o) {
		return nil, fmt.Errorf("%w: order %s", ErrForbidden, id)
	}
	return o, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, to models.OrderStatus) (*models.Order, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}

	o, err := s.Repo.GetOrder(ctx, id)
	if err != nil {
		return nil, translate(err, "order "+id.String())
	}
	if err := CheckOrderTransition(actor, o, to); err != nil {
		return nil, err
	}

	ok, err := s.Repo.UpdateOrderStatus(ctx, o.ID, o.Status, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: order %s changed concurrently", ErrConflict, id)
	}
	o.Status = to

	metrics.OrdersTotal.WithLabelValues(string(to)).Inc()
	sideEffects{Events: s.Events}.publish(ctx, TopicOrders, o.ID.String(), newOrderEvent(EventOrderStatusChanged, o))
	return o, nil
}
