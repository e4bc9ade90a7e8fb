package handlers

//go:generate mockgen -source=account.go -destination=account_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// AccountGetter defines the interface that the account service must implement.
type AccountGetter interface {
	Get(ctx context.Context, id int64) (*models.Account, error)
}

// RecipientLister lists the accounts a caller can transfer to.
type RecipientLister interface {
	ListExcluding(ctx context.Context, id int64) ([]models.Account, error)
}

// RecipientResponse is a transfer target without its balance
// swagger:model RecipientResponse
type RecipientResponse struct {
	// Account id
	// default: 1002
	ID int64 `json:"id"`

	// Account holder
	// default: Bob
	OwnerName string `json:"owner_name"`
}

// NewAccountHandler returns an HTTP handler that shows the caller's account.
// @Summary Current account
// @Description Returns the caller's account with its current balance.
// @Tags accounts
// @Produce json
// @Success 200 {object} handlers.AccountResponse "Account"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me [get]
// @Security BearerAuth
func NewAccountHandler(svc AccountGetter, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		account, err := svc.Get(r.Context(), accountID)
		if err != nil {
			logger.Log.Errorw("failed to get account", "account_id", accountID, "error", err)
			writeLedgerError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, newAccountResponse(*account))
	}
}

// NewRecipientsHandler returns an HTTP handler listing every other account.
// @Summary Transfer recipients
// @Description Lists all accounts except the caller's, by id.
// @Tags accounts
// @Produce json
// @Success 200 {array} handlers.RecipientResponse "Recipients"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/recipients [get]
// @Security BearerAuth
func NewRecipientsHandler(svc RecipientLister, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		accounts, err := svc.ListExcluding(r.Context(), accountID)
		if err != nil {
			logger.Log.Errorw("failed to list recipients", "account_id", accountID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		resp := make([]RecipientResponse, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, RecipientResponse{ID: a.ID, OwnerName: a.OwnerName})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
