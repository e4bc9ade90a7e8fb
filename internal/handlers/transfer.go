package handlers

//go:generate mockgen -source=transfer.go -destination=transfer_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
	"github.com/shopspring/decimal"
)

// Transferrer defines the interface that the ledger service must implement.
type Transferrer interface {
	Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*services.TransferResult, error)
}

// TransferRequest represents the JSON body for a transfer
// swagger:model TransferRequest
type TransferRequest struct {
	// Destination account id
	// required: true
	// default: 1002
	ToAccount int64 `json:"to_account"`

	// Positive amount with at most two decimals
	// required: true
	// default: 40.00
	Amount string `json:"amount"`
}

// TransferResponse represents a successful transfer
// swagger:model TransferResponse
type TransferResponse struct {
	// Success message
	// default: Transfer completed
	Message string `json:"message"`

	// Source account after the transfer
	From AccountResponse `json:"from"`

	// Destination account after the transfer
	To AccountResponse `json:"to"`
}

// NewTransferHandler returns an HTTP handler for moving funds to another account.
// @Summary Transfer funds
// @Description Atomically moves funds from the caller's account to another account.
// @Tags ledger
// @Accept json
// @Produce json
// @Param request body handlers.TransferRequest true "Transfer Request"
// @Success 200 {object} handlers.TransferResponse "Transfer completed"
// @Failure 400 {object} handlers.ErrorResponse "Invalid amount or same account"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 422 {object} handlers.ErrorResponse "Insufficient funds"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/transfer [post]
// @Security BearerAuth
func NewTransferHandler(svc Transferrer, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fromID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		var req TransferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode transfer request", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		amount, err := services.ParseAmount(req.Amount)
		if err != nil {
			logger.Log.Warnw("invalid transfer amount", "amount", req.Amount)
			writeError(w, http.StatusBadRequest, "Invalid amount")
			return
		}

		res, err := svc.Transfer(r.Context(), fromID, req.ToAccount, amount)
		if err != nil {
			logger.Log.Warnw("transfer failed",
				"from", fromID, "to", req.ToAccount, "amount", amount.String(), "error", err)
			writeLedgerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, TransferResponse{
			Message: "Transfer completed",
			From:    newAccountResponse(res.From),
			To:      newAccountResponse(res.To),
		})
	}
}
