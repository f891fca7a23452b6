package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Skotchmaster/marketplace/internal/metrics"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/money"
	"github.com/Skotchmaster/marketplace/internal/notify"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/Skotchmaster/marketplace/internal/util"
	"github.com/Skotchmaster/marketplace/pkg/logging"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WithdrawalService struct {
	Repo *repo.GormRepo

	Notifier Notifier
	Events   EventPublisher
}

type WithdrawalList struct {
	Total       int64                      `json:"total"`
	Page        util.Page                  `json:"page"`
	Withdrawals []models.WithdrawalRequest `json:"withdrawals"`
}

// Create files a payout request. The balance is checked but not reserved;
// MarkPaid's debit is what finally enforces it.
func (s *WithdrawalService) Create(ctx context.Context, actor Actor, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	if !actor.IsVendor() {
		return nil, fmt.Errorf("%w: only vendors can request withdrawals", ErrForbidden)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrInvalidAmount)
	}
	if _, err := money.ToMinorUnits(amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}

	earning, err := s.Repo.GetEarning(ctx, *actor.VendorID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(earning.Balance) {
		return nil, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance,
			earning.Balance.StringFixed(2), amount.StringFixed(2))
	}

	w := &models.WithdrawalRequest{
		VendorID: *actor.VendorID,
		Amount:   amount,
		Status:   models.WithdrawalPending,
	}
	if err := s.Repo.CreateWithdrawal(ctx, w); err != nil {
		return nil, err
	}

	metrics.WithdrawalsTotal.WithLabelValues(string(w.Status)).Inc()
	sideEffects{Events: s.Events}.publish(ctx, TopicWithdrawals, w.VendorID.String(), newWithdrawalEvent(EventWithdrawalRequested, w))
	return w, nil
}

func (s *WithdrawalService) Approve(ctx context.Context, actor Actor, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return s.decide(ctx, actor, id, models.WithdrawalApproved, EventWithdrawalApproved)
}

func (s *WithdrawalService) Reject(ctx context.Context, actor Actor, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return s.decide(ctx, actor, id, models.WithdrawalRejected, EventWithdrawalRejected)
}

// MarkPaid debits the ledger and closes an approved request in one
// transaction. On insufficient balance the request stays approved.
func (s *WithdrawalService) MarkPaid(ctx context.Context, actor Actor, id uuid.UUID) (*models.WithdrawalRequest, error) {
	return s.transition(ctx, actor, id, models.WithdrawalPaid, EventWithdrawalPaid, func(tx *repo.GormRepo, w *models.WithdrawalRequest) error {
		return applyTx(ctx, tx, w.VendorID, func(e *models.VendorEarning) error { return e.Debit(w.Amount) })
	})
}

func (s *WithdrawalService) decide(ctx context.Context, actor Actor, id uuid.UUID, to models.WithdrawalStatus, event string) (*models.WithdrawalRequest, error) {
	return s.transition(ctx, actor, id, to, event, nil)
}

func (s *WithdrawalService) transition(
	ctx context.Context,
	actor Actor,
	id uuid.UUID,
	to models.WithdrawalStatus,
	event string,
	inTx func(tx *repo.GormRepo, w *models.WithdrawalRequest) error,
) (*models.WithdrawalRequest, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin only", ErrForbidden)
	}

	var out *models.WithdrawalRequest
	err := s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		w, err := tx.LockWithdrawal(ctx, id)
		if err != nil {
			return err
		}
		from := w.Status
		now := time.Now().UTC()
		if err := w.Transition(to, now); err != nil {
			return err
		}
		if inTx != nil {
			if err := inTx(tx, w); err != nil {
				return err
			}
		}
		ok, err := tx.UpdateWithdrawalStatus(ctx, w.ID, from, to, now)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: withdrawal %s changed concurrently", ErrConflict, id)
		}
		out = w
		return nil
	})
	if err != nil {
		return nil, translate(err, "withdrawal "+id.String())
	}

	metrics.WithdrawalsTotal.WithLabelValues(string(to)).Inc()
	s.afterTransition(ctx, out, event)
	return out, nil
}

func (s *WithdrawalService) afterTransition(ctx context.Context, w *models.WithdrawalRequest, event string) {
	fx := sideEffects{Notifier: s.Notifier, Events: s.Events}
	fx.publish(ctx, TopicWithdrawals, w.VendorID.String(), newWithdrawalEvent(event, w))

	email, err := s.Repo.VendorEmail(ctx, w.VendorID)
	if err != nil {
		logging.FromContext(ctx).Warn("withdrawal_notification_skipped", "vendor_id", w.VendorID, "error", err)
		return
	}
	fx.notify(ctx, notify.Message{
		Subject:    fmt.Sprintf("Withdrawal %s", w.Status),
		Body:       fmt.Sprintf("Your withdrawal request %s for %s is now %s.", w.ID, w.Amount.StringFixed(2), w.Status),
		Recipients: recipients(email),
	})
}

// List shows vendors their own requests and admins everyone's.
func (s *WithdrawalService) List(ctx context.Context, actor Actor, page util.Page, status *models.WithdrawalStatus) (*WithdrawalList, error) {
	f := repo.WithdrawalFilter{Status: status}
	switch {
	case actor.IsAdmin():
	case actor.IsVendor():
		f.VendorID = actor.VendorID
	default:
		return nil, fmt.Errorf("%w: withdrawals", ErrForbidden)
	}

	offset, limit := page.Calculate()
	total, items, err := s.Repo.ListWithdrawals(ctx, f, offset, limit)
	if err != nil {
		return nil, err
	}
	return &WithdrawalList{Total: total, Page: page, Withdrawals: items}, nil
}
