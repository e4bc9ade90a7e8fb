package handlers

//go:generate mockgen -source=deposit.go -destination=deposit_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
	"github.com/shopspring/decimal"
)

// Depositor defines the interface that the ledger service must implement.
type Depositor interface {
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.Account, error)
}

// AmountRequest represents the JSON body for a deposit or withdrawal
// swagger:model AmountRequest
type AmountRequest struct {
	// Positive amount with at most two decimals
	// required: true
	// default: 50.00
	Amount string `json:"amount"`
}

// BalanceResponse represents a successful balance change
// swagger:model BalanceResponse
type BalanceResponse struct {
	// Success message
	// default: Deposit completed
	Message string `json:"message"`

	// Account after the operation
	Account AccountResponse `json:"account"`
}

// NewDepositHandler returns an HTTP handler for depositing funds into the caller's account.
// @Summary Deposit funds
// @Description Adds funds to the caller's account and records a DEPOSIT transaction.
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body handlers.AmountRequest true "Deposit Request"
// @Success 200 {object} handlers.BalanceResponse "Deposit completed"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/deposit [post]
// @Security BearerAuth
func NewDepositHandler(svc Depositor, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		amount, ok := decodeAmount(w, r)
		if !ok {
			return
		}

		account, err := svc.Deposit(r.Context(), accountID, amount)
		if err != nil {
			logger.Log.Errorw("deposit failed", "account_id", accountID, "amount", amount.String(), "error", err)
			writeLedgerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BalanceResponse{
			Message: "Deposit completed",
			Account: newAccountResponse(*account),
		})
	}
}

// decodeAmount reads an AmountRequest and writes 400 when it is unusable.
func decodeAmount(w http.ResponseWriter, r *http.Request) (decimal.Decimal, bool) {
	var req AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Errorw("failed to decode amount request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return decimal.Zero, false
	}
	amount, err := services.ParseAmount(req.Amount)
	if err != nil {
		logger.Log.Warnw("invalid amount", "amount", req.Amount)
		writeError(w, http.StatusBadRequest, "Invalid amount")
		return decimal.Zero, false
	}
	return amount, true
}
