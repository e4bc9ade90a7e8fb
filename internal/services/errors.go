package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

var (
	// ErrInvalidAmount is returned for zero, negative, unparseable or over-precise amounts.
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")
	// ErrAccountNotFound is matched by every AccountNotFoundError.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInsufficientFunds is matched by every InsufficientFundsError.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrDuplicateEmail is returned when registering an email that is already taken.
	ErrDuplicateEmail = models.ErrDuplicateEmail
	// ErrSameAccount is returned for a transfer whose source and destination coincide.
	ErrSameAccount = errors.New("cannot transfer to the same account")
	// ErrUnexpected wraps storage failures; the operation was abandoned and rolled back.
	ErrUnexpected = errors.New("unexpected storage failure")
	// ErrInvalidCredentials is returned when email or password do not match.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidAccount is returned when registration data fails validation.
	ErrInvalidAccount = errors.New("invalid account data")
)

// AccountNotFoundError names every requested account id that does not exist.
type AccountNotFoundError struct {
	IDs []int64
}

func (e *AccountNotFoundError) Error() string {
	ids := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		ids[i] = fmt.Sprint(id)
	}
	return fmt.Sprintf("%s: %s", ErrAccountNotFound, strings.Join(ids, ", "))
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// InsufficientFundsError reports the shortfall of a withdrawal or transfer.
type InsufficientFundsError struct {
	AccountID int64
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s on account %d: required %s, available %s",
		ErrInsufficientFunds, e.AccountID, e.Required.StringFixed(2), e.Available.StringFixed(2))
}

func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// unexpected marks err as a storage failure unless it already carries a ledger outcome.
func unexpected(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, models.ErrAmountOutOfRange) {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	if errors.Is(err, ErrUnexpected) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInsufficientFunds) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnexpected, err)
}
