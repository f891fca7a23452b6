package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/marketplace/internal/gateway"
	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/money"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const webhookLockTTL = 30 * time.Second

type PaymentService struct {
	Repo    *repo.GormRepo
	Gateway Gateway

	// Optional collaborators.
	Notifier Notifier
	Events   EventPublisher
	Locker   Locker

	WebhookSecret string
	CallbackURL   string
	Currency      string
}

type PaymentInit struct {
	Reference        string          `json:"reference"`
	AuthorizationURL string          `json:"authorization_url"`
	AccessCode       string          `json:"access_code"`
	Amount           decimal.Decimal `json:"amount"`
	Orders           []uuid.UUID     `json:"orders"`
}

type WebhookOutcome string

const (
	OutcomeProcessed        WebhookOutcome = "processed"
	OutcomeInvalidSignature WebhookOutcome = "invalid_signature"
	OutcomeMalformed        WebhookOutcome = "malformed"
	OutcomeIgnoredEvent     WebhookOutcome = "ignored_event"
	OutcomeInFlight         WebhookOutcome = "in_flight"
	OutcomeNotVerified      WebhookOutcome = "not_verified"
	OutcomeAmountMismatch   WebhookOutcome = "amount_mismatch"
	OutcomeNothingPending   WebhookOutcome = "nothing_pending"
)

type WebhookResult struct {
	Outcome    WebhookOutcome `json:"outcome"`
	Reference  string         `json:"reference,omitempty"`
	OrdersPaid int            `json:"orders_paid"`
}

// PaymentRef is the gateway reference for paying a single order.
func PaymentRef(o *models.Order) string {
	return o.TransactionRef + "-" + o.ID.String()[:8]
}

// InitializeOrder starts a charge for one pending order of the actor. The
// order status does not change here; only the verified webhook marks it paid.
func (s *PaymentService) InitializeOrder(ctx context.Context, actor Actor, orderID uuid.UUID) (*PaymentInit, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, translate(err, "order "+orderID.String())
	}
	if !OrderBelongsTo(o, actor) {
		return nil, fmt.Errorf("%w: order %s", ErrForbidden, orderID)
	}
	if o.Status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: order %s is %s", ErrInvalidState, orderID, o.Status)
	}

	ref := PaymentRef(o)
	if err := s.Repo.SetPaymentRef(ctx, o.ID, ref); err != nil {
		return nil, translate(err, "order "+orderID.String())
	}
	return s.initialize(ctx, actor, ref, []models.Order{*o})
}

// InitializeCheckout starts one charge covering every pending order of a
// checkout.
func (s *PaymentService) InitializeCheckout(ctx context.Context, actor Actor, txRef string) (*PaymentInit, error) {
	if strings.TrimSpace(txRef) == "" {
		return nil, fmt.Errorf("%w: transaction reference required", ErrValidation)
	}
	orders, err := s.Repo.PendingCheckoutOrders(ctx, actor.UserID, txRef)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("%w: no pending orders for %s", ErrNotFound, txRef)
	}
	return s.initialize(ctx, actor, txRef, orders)
}

func (s *PaymentService) initialize(ctx context.Context, actor Actor, ref string, orders []models.Order) (*PaymentInit, error) {
	amount := decimal.Zero
	ids := make([]uuid.UUID, 0, len(orders))
	for _, o := range orders {
		amount = amount.Add(o.TotalPrice)
		ids = append(ids, o.ID)
	}
	minor, err := money.ToMinorUnits(amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	res, err := s.Gateway.Initialize(ctx, gateway.InitializeRequest{
		AmountMinor: minor,
		Reference:   ref,
		Email:       actorEmail(ctx, s.Repo, actor),
		CallbackURL: s.CallbackURL,
		Currency:    s.Currency,
	})
	if err != nil {
		return nil, translate(err, "initialize payment")
	}

	return &PaymentInit{
		Reference:        ref,
		AuthorizationURL: res.AuthorizationURL,
		AccessCode:       res.AccessCode,
		Amount:           amount,
		Orders:           ids,
	}, nil
}

// HandleWebhook processes one gateway delivery. The payload is never trusted:
// it only names a reference, which is re-verified with the gateway before any
// write. Deliveries that do not check out are acknowledged with a non-processed
// outcome and change nothing. A returned error means the delivery should be
// retried. Re-delivering a processed payment pays nothing again.
func (s *PaymentService) HandleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	l := logging.FromContext(ctx).With("svc", "payment.webhook")

	res, err := s.handleWebhook(ctx, body, signature)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues("error").Inc()
		l.Error("webhook_failed", "error", err)
		return nil, err
	}
	metrics.WebhooksTotal.WithLabelValues(string(res.Outcome)).Inc()
	l.Info("webhook_handled", "outcome", res.Outcome, "reference", res.Reference, "orders_paid", res.OrdersPaid)
	return res, nil
}

func (s *PaymentService) handleWebhook(ctx context.Context, body []byte, signature string) (*WebhookResult, error) {
	if s.WebhookSecret != "" && !gateway.VerifySignature(body, signature, s.WebhookSecret) {
		return &WebhookResult{Outcome: OutcomeInvalidSignature}, nil
	}

	var ev gateway.WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return &WebhookResult{Outcome: OutcomeMalformed}, nil
	}
	ref := strings.TrimSpace(ev.Data.Reference)
	if ev.Event != gateway.EventChargeSuccess {
		return &WebhookResult{Outcome: OutcomeIgnoredEvent, Reference: ref}, nil
	}
	if ref == "" {
		return &WebhookResult{Outcome: OutcomeMalformed}, nil
	}

	if s.Locker != nil {
		release, ok, err := s.Locker.TryLock(ctx, "webhook:"+ref, webhookLockTTL)
		switch {
		case err != nil:
			logging.FromContext(ctx).Warn("webhook_lock_unavailable", "reference", ref, "error", err)
		case !ok:
			return &WebhookResult{Outcome: OutcomeInFlight, Reference: ref}, nil
		default:
			defer release(context.WithoutCancel(ctx))
		}
	}

	// Rejected lookups (unknown reference, status false) are acknowledged;
	// only ErrUnavailable goes back to the gateway as a retry.
	v, err := s.Gateway.Verify(ctx, ref)
	if errors.Is(err, gateway.ErrRejected) {
		logging.FromContext(ctx).Warn("webhook_verify_rejected", "reference", ref, "error", err)
		return &WebhookResult{Outcome: OutcomeNotVerified, Reference: ref}, nil
	}
	if err != nil {
		return nil, translate(err, "verify payment")
	}
	if !v.Succeeded() || (v.Reference != "" && v.Reference != ref) {
		return &WebhookResult{Outcome: OutcomeNotVerified, Reference: ref}, nil
	}
	if s.Currency != "" && v.Currency != "" && !strings.EqualFold(v.Currency, s.Currency) {
		return &WebhookResult{Outcome: OutcomeAmountMismatch, Reference: ref}, nil
	}
	paidAmount := money.FromMinorUnits(v.AmountMinor)

	outcome := OutcomeProcessed
	var paid []models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		pending, err := tx.PendingOrdersByRef(ctx, ref)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			outcome = OutcomeNothingPending
			return nil
		}

		due := decimal.Zero
		for _, o := range pending {
			due = due.Add(o.TotalPrice)
		}
		if paidAmount.LessThan(due) {
			outcome = OutcomeAmountMismatch
			return nil
		}
		if paidAmount.GreaterThan(due) {
			logging.FromContext(ctx).Warn("webhook_amount_over",
				"reference", ref, "paid", paidAmount.String(), "due", due.String())
		}

		for i := range pending {
			o := pending[i]
			ok, err := tx.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPending, models.OrderStatusPaid)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			o.Status = models.OrderStatusPaid

			net := money.Net(o.TotalPrice, o.Commission)
			inserted, err := tx.InsertEarningEntry(ctx, &models.EarningEntry{VendorID: o.VendorID, OrderID: o.ID, Amount: net})
			if err != nil {
				return err
			}
			if inserted && net.IsPositive() {
				if err := applyTx(ctx, tx, o.VendorID, func(e *models.VendorEarning) error { return e.Credit(net) }); err != nil {
					return err
				}
			}
			paid = append(paid, o)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err, "apply payment "+ref)
	}
	if outcome == OutcomeAmountMismatch {
		logging.FromContext(ctx).Warn("webhook_amount_short", "reference", ref, "paid", paidAmount.StringFixed(2))
	}

	if len(paid) > 0 {
		metrics.ObservePayment(paidAmount)
		metrics.OrdersTotal.WithLabelValues(string(models.OrderStatusPaid)).Add(float64(len(paid)))
		s.afterPayment(ctx, ref, paid)
	}
	return &WebhookResult{Outcome: outcome, Reference: ref, OrdersPaid: len(paid)}, nil
}

func (s *PaymentService) afterPayment(ctx context.Context, ref string, paid []models.Order) {
	fx := sideEffects{Notifier: s.Notifier, Events: s.Events}

	byBuyer := make(map[uuid.UUID][]models.Order)
	for i := range paid {
		o := &paid[i]
		fx.publish(ctx, TopicOrders, o.ID.String(), newOrderEvent(EventOrderPaid, o))
		byBuyer[o.UserID] = append(byBuyer[o.UserID], *o)
	}

	for buyer, orders := range byBuyer {
		email, err := s.Repo.UserEmail(ctx, buyer)
		if err != nil {
			logging.FromContext(ctx).Warn("payment_notification_skipped", "user_id", buyer, "error", err)
			continue
		}

		var b strings.Builder
		fmt.Fprintf(&b, "We received your payment %s.\n\n", ref)
		for _, o := range orders {
			fmt.Fprintf(&b, "Order %s: %s\n", o.ID, o.TotalPrice.StringFixed(2))
		}
		fx.notify(ctx, notify.Message{
			Subject:    "Payment confirmed: " + ref,
			Body:       b.String(),
			Recipients: recipients(email),
		})
	}
}
