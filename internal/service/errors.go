package service

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/marketplace/internal/gateway"
	"github.com/Skotchmaster/marketplace/internal/models"
	"github.com/Skotchmaster/marketplace/internal/repo"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")                 // 404
	ErrInvalidState        = errors.New("invalid state")             // 409
	ErrConflict            = errors.New("conflict")                  // 409
	ErrInvalidAmount       = models.ErrInvalidAmount                 // 422
	ErrInsufficientBalance = models.ErrInsufficientBalance           // 422
	ErrEmptyCart           = errors.New("cart is empty")             // 422
	ErrForbidden           = errors.New("forbidden")                 // 403
	ErrValidation          = errors.New("validation")                // 400
	ErrGateway             = errors.New("payment gateway error")     // 502
)

// translate maps storage and model errors onto the service taxonomy.
func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	case errors.Is(err, repo.ErrStaleVersion):
		return fmt.Errorf("%w: %s: %v", ErrConflict, what, err)
	case errors.Is(err, models.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	case errors.Is(err, gateway.ErrUnavailable), errors.Is(err, gateway.ErrRejected):
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	return err
}
