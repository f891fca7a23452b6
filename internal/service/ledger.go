package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxLedgerAttempts = 3

type LedgerService struct {
	Repo *repo.GormRepo
}

// EarningStatement is a vendor's balance with its credit journal.
type EarningStatement struct {
	VendorID       uuid.UUID             `json:"vendor_id"`
	Balance        decimal.Decimal       `json:"balance"`
	TotalWithdrawn decimal.Decimal       `json:"total_withdrawn"`
	Entries        []models.EarningEntry `json:"entries"`
}

func (s *LedgerService) Credit(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal) (*models.VendorEarning, error) {
	return s.run(ctx, vendorID, func(e *models.VendorEarning) error { return e.Credit(amount) })
}

func (s *LedgerService) Debit(ctx context.Context, vendorID uuid.UUID, amount decimal.Decimal) (*models.VendorEarning, error) {
	return s.run(ctx, vendorID, func(e *models.VendorEarning) error { return e.Debit(amount) })
}

func (s *LedgerService) GetEarning(ctx context.Context, actor Actor, vendorID uuid.UUID) (*EarningStatement, error) {
	if !actor.IsAdmin() && !actor.OwnsVendor(vendorID) {
		return nil, fmt.Errorf("%w: earnings of vendor %s", ErrForbidden, vendorID)
	}

	e, err := s.Repo.GetEarning(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	entries, err := s.Repo.EarningEntries(ctx, vendorID)
	if err != nil {
		return nil, err
	}

	return &EarningStatement{
		VendorID:       e.VendorID,
		Balance:        e.Balance,
		TotalWithdrawn: e.TotalWithdrawn,
		Entries:        entries,
	}, nil
}

// run applies fn in its own transaction and retries when a concurrent
// writer bumped the row version first.
func (s *LedgerService) run(ctx context.Context, vendorID uuid.UUID, fn func(e *models.VendorEarning) error) (*models.VendorEarning, error) {
	var out *models.VendorEarning
	var err error
	for attempt := 0; attempt < maxLedgerAttempts; attempt++ {
		err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
			e, err := tx.ApplyEarning(ctx, vendorID, fn)
			out = e
			return err
		})
		if !errors.Is(err, repo.ErrStaleVersion) {
			break
		}
	}
	if err != nil {
		return nil, translate(err, "vendor earning")
	}
	return out, nil
}

// applyTx is run for ledger writes that belong to a larger transaction.
func applyTx(ctx context.Context, tx *repo.GormRepo, vendorID uuid.UUID, fn func(e *models.VendorEarning) error) error {
	var err error
	for attempt := 0; attempt < maxLedgerAttempts; attempt++ {
		_, err = tx.ApplyEarning(ctx, vendorID, fn)
		if !errors.Is(err, repo.ErrStaleVersion) {
			return err
		}
	}
	return err
}
