// Package money holds the fixed-point currency arithmetic shared by checkout,
// payments and the ledger. Amounts carry two fractional digits.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const Places = 2

var (
	CommissionRate = decimal.RequireFromString("0.10")

	ErrNegative  = errors.New("money: negative amount")
	ErrPrecision = errors.New("money: more than two fractional digits")
)

// Commission is the platform's cut, rounded half away from zero.
func Commission(total decimal.Decimal) decimal.Decimal {
	return total.Mul(CommissionRate).Round(Places)
}

func Net(total, commission decimal.Decimal) decimal.Decimal {
	return total.Sub(commission)
}

func LineTotal(price decimal.Decimal, qty uint) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(qty)))
}

func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	if len(amounts) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(amounts[0], amounts[1:]...)
}

// ToMinorUnits converts 12.34 to 1234. It refuses to round.
func ToMinorUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() {
		return 0, fmt.Errorf("%w: %s", ErrNegative, amount)
	}
	if !amount.Equal(amount.Round(Places)) {
		return 0, fmt.Errorf("%w: %s", ErrPrecision, amount)
	}
	return amount.Shift(Places).IntPart(), nil
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -Places)
}

// Parse reads a user-supplied amount such as "60" or "60.50".
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("money: parse %q: %w", s, err)
	}
	if !d.Equal(d.Round(Places)) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrPrecision, s)
	}
	return d, nil
}
