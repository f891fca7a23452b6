package service

import (
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller. Every operation receives it explicitly.
type Actor struct {
	UserID   uuid.UUID
	Role     models.Role
	VendorID *uuid.UUID
	Email    string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// IsVendor is true only for vendor accounts that own a storefront.
func (a Actor) IsVendor() bool {
	return a.Role == models.RoleVendor && a.VendorID != nil
}

func (a Actor) OwnsVendor(vendorID uuid.UUID) bool {
	return a.IsVendor() && *a.VendorID == vendorID
}

// OrderBelongsTo is the single buyer-ownership check.
func OrderBelongsTo(o *models.Order, a Actor) bool {
	return o.UserID == a.UserID
}

func OrderSoldBy(o *models.Order, a Actor) bool {
	return a.OwnsVendor(o.VendorID)
}

func CanViewOrder(a Actor, o *models.Order) bool {
	return a.IsAdmin() || OrderBelongsTo(o, a) || OrderSoldBy(o, a)
}

// CheckOrderTransition decides whether a may move o to the target status.
// A missing edge is ErrInvalidState; an edge the role may not take is
// ErrForbidden. Nobody but the payment webhook sets paid.
func CheckOrderTransition(a Actor, o *models.Order, to models.OrderStatus) error {
	if !CanViewOrder(a, o) {
		return fmt.Errorf("%w: order %s", ErrForbidden, o.ID)
	}
	if !o.Status.CanTransition(to) {
		return fmt.Errorf("%w: order %s cannot go %s -> %s", ErrInvalidState, o.ID, o.Status, to)
	}
	if to == models.OrderStatusPaid {
		return fmt.Errorf("%w: paid is set by payment confirmation only", ErrForbidden)
	}

	if a.IsAdmin() {
		return nil
	}
	if OrderSoldBy(o, a) && (to == models.OrderStatusShipped || to == models.OrderStatusDelivered) {
		return nil
	}
	if OrderBelongsTo(o, a) && o.Status == models.OrderStatusPending && to == models.OrderStatusCancelled {
		return nil
	}
	return fmt.Errorf("%w: %s may not set %s", ErrForbidden, a.Role, to)
}
