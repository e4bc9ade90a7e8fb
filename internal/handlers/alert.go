package handlers

//go:generate mockgen -source=alert.go -destination=alert_mock.go -package=handlers

import (
	"context"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// BalanceAlerter defines the interface that the alert service must implement.
type BalanceAlerter interface {
	Evaluate(ctx context.Context, account models.Account) bool
	Threshold() decimal.Decimal
}

// AlertCheckResponse reports the outcome of an on-demand balance check
// swagger:model AlertCheckResponse
type AlertCheckResponse struct {
	// Current balance
	// default: 40.00
	Balance string `json:"balance"`

	// Alert threshold
	// default: 100.00
	Threshold string `json:"threshold"`

	// Whether an alert email was attempted
	AlertSent bool `json:"alert_sent"`
}

// NewAlertCheckHandler returns an HTTP handler that checks the caller's balance against the alert threshold.
// @Summary Check low balance
// @Description Sends a low-balance email when the balance is below the threshold and no alert was sent recently.
// @Tags alerts
// @Produce json
// @Success 200 {object} handlers.AlertCheckResponse "Check result"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/alerts/check [post]
// @Security BearerAuth
func NewAlertCheckHandler(accounts AccountGetter, alerts BalanceAlerter, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		account, err := accounts.Get(r.Context(), accountID)
		if err != nil {
			logger.Log.Errorw("failed to get account for alert check", "account_id", accountID, "error", err)
			writeLedgerError(w, err)
			return
		}

		sent := alerts.Evaluate(r.Context(), *account)

		writeJSON(w, http.StatusOK, AlertCheckResponse{
			Balance:   account.Balance.StringFixed(2),
			Threshold: alerts.Threshold().StringFixed(2),
			AlertSent: sent,
		})
	}
}
