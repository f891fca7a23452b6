package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/labstack/echo/v4"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func pageFrom(c echo.Context) util.Page {
	return util.NewPage(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}

	var status *models.OrderStatus
	if s := c.QueryParam("status"); s != "" {
		st := models.OrderStatus(s)
		if !st.Valid() {
			return badRequest(l, "list_orders_error", "invalid status", nil)
		}
		status = &st
	}

	list, err := h.Svc.ListOrders(ctx, actor, pageFrom(c), status)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", "invalid id", err)
	}

	o, err := h.Svc.GetOrder(ctx, actor, id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "update_status_error", err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", "invalid id", err)
	}

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	o, err := h.Svc.UpdateStatus(ctx, actor, id, models.OrderStatus(req.Status))
	if err != nil {
		return fail(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", o.ID, "to", o.Status)
	return c.JSON(http.StatusOK, o)
}
