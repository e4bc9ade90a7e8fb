package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmountPlaces is the number of fractional digits money is stored with.
const maxAmountPlaces = 2

// ValidateAmount accepts strictly positive amounts with at most two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() || !hasMoneyPrecision(amount) {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, amount.String())
	}
	return nil
}

// ParseAmount parses a decimal string and validates it.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

func hasMoneyPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(maxAmountPlaces))
}
