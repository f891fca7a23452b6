package httpserver

import (
	"io"
	"net/http"

	"github.com/Skotchmaster/marketplace/internal/gateway"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/labstack/echo/v4"
)

const maxWebhookBody = 1 << 20

type PaymentHTTP struct {
	Svc *service.PaymentService
}

func (h *PaymentHTTP) InitializeOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.initialize_order")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "initialize_payment_error", err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "initialize_payment_error", "invalid id", err)
	}

	pi, err := h.Svc.InitializeOrder(ctx, actor, id)
	if err != nil {
		return fail(l, "initialize_payment_error", err)
	}

	l.Info("initialize_payment_success", "reference", pi.Reference)
	return c.JSON(http.StatusOK, pi)
}

func (h *PaymentHTTP) InitializeCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.initialize_checkout")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "initialize_payment_error", err)
	}

	pi, err := h.Svc.InitializeCheckout(ctx, actor, c.Param("ref"))
	if err != nil {
		return fail(l, "initialize_payment_error", err)
	}

	l.Info("initialize_payment_success", "reference", pi.Reference)
	return c.JSON(http.StatusOK, pi)
}

// Webhook acknowledges every delivery it could evaluate, processed or not,
// so the gateway stops retrying. Only internal failures answer 500.
func (h *PaymentHTTP) Webhook(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(l, "webhook_error", "unreadable body", err)
	}

	res, err := h.Svc.HandleWebhook(ctx, body, c.Request().Header.Get(gateway.SignatureHeader))
	if err != nil {
		l.Error("webhook_error", "status", http.StatusInternalServerError, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.MessageResponse{Message: "retry later"})
	}
	return c.JSON(http.StatusOK, res)
}
