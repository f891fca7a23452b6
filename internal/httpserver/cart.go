package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/labstack/echo/v4"
)

type CartHTTP struct {
	Svc      *service.CartService
	Checkout *service.CheckoutService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}

	cart, err := h.Svc.GetCart(ctx, actor)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	var req transport.AddCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_item_error", "invalid body", err)
	}

	item, err := h.Svc.AddItem(ctx, actor, service.AddItemInput{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return fail(l, "add_item_error", err)
	}

	l.Info("add_item_success", "item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "remove_item_error", err)
	}
	itemID, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "remove_item_error", "invalid id", err)
	}

	if err := h.Svc.RemoveItem(ctx, actor, itemID); err != nil {
		return fail(l, "remove_item_error", err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}

	if err := h.Svc.ClearCart(ctx, actor); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("cart successfully cleared")
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) CheckoutCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	res, err := h.Checkout.Checkout(ctx, actor)
	if err != nil {
		return fail(l, "checkout_error", err)
	}

	l.Info("checkout_success", "transaction_ref", res.TransactionRef, "orders", len(res.Orders))
	return c.JSON(http.StatusCreated, res)
}
