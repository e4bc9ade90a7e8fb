package handlers

//go:generate mockgen -source=transactions.go -destination=transactions_mock.go -package=handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// HistoryReader defines the interface that the report service must implement.
type HistoryReader interface {
	History(ctx context.Context, accountID int64, limit int) ([]models.TransactionRecord, error)
}

// NewTransactionsHandler returns an HTTP handler with the caller's recent transactions.
// @Summary Transaction history
// @Description Returns the caller's transactions, newest first. Failed attempts are included.
// @Tags ledger
// @Produce json
// @Param limit query int false "Maximum number of records" default(10)
// @Success 200 {array} handlers.TransactionResponse "Transactions"
// @Failure 400 {object} handlers.ErrorResponse "Invalid limit"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/transactions [get]
// @Security BearerAuth
func NewTransactionsHandler(svc HistoryReader, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		limit := 0
		if s := r.URL.Query().Get("limit"); s != "" {
			v, err := strconv.Atoi(s)
			if err != nil || v < 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = v
		}

		records, err := svc.History(r.Context(), accountID, limit)
		if err != nil {
			logger.Log.Errorw("failed to read history", "account_id", accountID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, newTransactionResponses(records))
	}
}
