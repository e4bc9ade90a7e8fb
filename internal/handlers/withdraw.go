package handlers

//go:generate mockgen -source=withdraw.go -destination=withdraw_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Withdrawer defines the interface that the ledger service must implement.
type Withdrawer interface {
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.Account, error)
}

// NewWithdrawHandler returns an HTTP handler for withdrawing funds from the caller's account.
// @Summary Withdraw funds
// @Description Removes funds from the caller's account. A rejected withdrawal is still recorded as FAILED.
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body handlers.AmountRequest true "Withdraw Request"
// @Success 200 {object} handlers.BalanceResponse "Withdrawal completed"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 422 {object} handlers.ErrorResponse "Insufficient funds"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/withdraw [post]
// @Security BearerAuth
func NewWithdrawHandler(svc Withdrawer, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		amount, ok := decodeAmount(w, r)
		if !ok {
			return
		}

		account, err := svc.Withdraw(r.Context(), accountID, amount)
		if err != nil {
			logger.Log.Warnw("withdrawal failed", "account_id", accountID, "amount", amount.String(), "error", err)
			writeLedgerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{
			Message: "Withdrawal completed",
			Account: newAccountResponse(*account),
		})
	}
}
