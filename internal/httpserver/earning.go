package httpserver

import (
	"net/http"

	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/labstack/echo/v4"
)

type EarningHTTP struct {
	Svc *service.LedgerService
}

func (h *EarningHTTP) Mine(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "earning.mine")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "get_earning_error", err)
	}
	if actor.VendorID == nil {
		return fail(l, "get_earning_error", service.ErrForbidden)
	}

	st, err := h.Svc.GetEarning(ctx, actor, *actor.VendorID)
	if err != nil {
		return fail(l, "get_earning_error", err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *EarningHTTP) ForVendor(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "earning.for_vendor")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "get_earning_error", err)
	}
	vendorID, err := paramUUID(c, "vendor_id")
	if err != nil {
		return badRequest(l, "get_earning_error", "invalid vendor_id", err)
	}

	st, err := h.Svc.GetEarning(ctx, actor, vendorID)
	if err != nil {
		return fail(l, "get_earning_error", err)
	}
	return c.JSON(http.StatusOK, st)
}
