package httpserver

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/service"
	"github.com/Skotchmaster/marketplace/internal/transport"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type WithdrawalHTTP struct {
	Svc *service.WithdrawalService
}

func (h *WithdrawalHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "withdrawal.create")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "create_withdrawal_error", err)
	}

	var req transport.CreateWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_withdrawal_error", "invalid body", err)
	}

	w, err := h.Svc.Create(ctx, actor, req.Amount)
	if err != nil {
		return fail(l, "create_withdrawal_error", err)
	}

	l.Info("create_withdrawal_success", "withdrawal_id", w.ID)
	return c.JSON(http.StatusCreated, w)
}

func (h *WithdrawalHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "withdrawal.list")

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "list_withdrawals_error", err)
	}

	var status *models.WithdrawalStatus
	if s := c.QueryParam("status"); s != "" {
		st := models.WithdrawalStatus(s)
		if !st.Valid() {
			return badRequest(l, "list_withdrawals_error", "invalid status", nil)
		}
		status = &st
	}

	list, err := h.Svc.List(ctx, actor, pageFrom(c), status)
	if err != nil {
		return fail(l, "list_withdrawals_error", err)
	}
	return c.JSON(http.StatusOK, list)
}

type withdrawalAction func(ctx context.Context, actor service.Actor, id uuid.UUID) (*models.WithdrawalRequest, error)

func (h *WithdrawalHTTP) Approve(c echo.Context) error {
	return h.decide(c, "withdrawal.approve", h.Svc.Approve)
}

func (h *WithdrawalHTTP) Reject(c echo.Context) error {
	return h.decide(c, "withdrawal.reject", h.Svc.Reject)
}

func (h *WithdrawalHTTP) MarkPaid(c echo.Context) error {
	return h.decide(c, "withdrawal.mark_paid", h.Svc.MarkPaid)
}

func (h *WithdrawalHTTP) decide(c echo.Context, name string, action withdrawalAction) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", name)

	actor, err := actorFrom(c)
	if err != nil {
		return fail(l, "withdrawal_decision_error", err)
	}
	id, err := paramUUID(c, "id")
	if err != nil {
		return badRequest(l, "withdrawal_decision_error", "invalid id", err)
	}

	w, err := action(ctx, actor, id)
	if err != nil {
		return fail(l, "withdrawal_decision_error", err)
	}

	l.Info("withdrawal_decision_success", "withdrawal_id", w.ID, "status", w.Status)
	return c.JSON(http.StatusOK, w)
}
