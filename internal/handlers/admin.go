package handlers

//go:generate mockgen -source=admin.go -destination=admin_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// AccountLister lists every account.
type AccountLister interface {
	ListAll(ctx context.Context) ([]models.Account, error)
}

// TransactionLister lists the whole audit log.
type TransactionLister interface {
	ListAll(ctx context.Context) ([]models.TransactionRecord, error)
}

// NewAdminAccountsHandler returns an HTTP handler listing all accounts.
// @Summary All accounts
// @Description Administrator view of every account and its balance.
// @Tags admin
// @Produce json
// @Success 200 {array} handlers.AccountResponse "Accounts"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/accounts [get]
// @Security BearerAuth
func NewAdminAccountsHandler(svc AccountLister, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authenticateAdmin(w, r, tokenGetter) {
			return
		}

		accounts, err := svc.ListAll(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to list accounts", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, newAccountResponses(accounts))
	}
}

// NewAdminTransactionsHandler returns an HTTP handler listing the whole audit log.
// @Summary All transactions
// @Description Administrator view of every recorded transaction, newest first.
// @Tags admin
// @Produce json
// @Success 200 {array} handlers.TransactionResponse "Transactions"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 403 {object} handlers.ErrorResponse "Forbidden"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /admin/transactions [get]
// @Security BearerAuth
func NewAdminTransactionsHandler(svc TransactionLister, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authenticateAdmin(w, r, tokenGetter) {
			return
		}

		records, err := svc.ListAll(r.Context())
		if err != nil {
			logger.Log.Errorw("failed to list transactions", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, newTransactionResponses(records))
	}
}
