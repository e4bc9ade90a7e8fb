package handlers

//go:generate mockgen -source=report.go -destination=report_mock.go -package=handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
)

// ReportGenerator defines the interface that the report service must implement.
type ReportGenerator interface {
	Generate(ctx context.Context, accountID int64) (string, error)
}

// NewReportHandler returns an HTTP handler that downloads the caller's account report.
// @Summary Account report
// @Description Plain-text account summary with the latest transactions.
// @Tags ledger
// @Produce plain
// @Success 200 {string} string "Report"
// @Failure 401 {object} handlers.ErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ErrorResponse "Account not found"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /accounts/me/report [get]
// @Security BearerAuth
func NewReportHandler(svc ReportGenerator, tokenGetter Tokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := authenticateAccount(w, r, tokenGetter)
		if !ok {
			return
		}

		report, err := svc.Generate(r.Context(), accountID)
		if err != nil {
			logger.Log.Errorw("failed to generate report", "account_id", accountID, "error", err)
			writeLedgerError(w, err)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="account_%d.txt"`, accountID))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(report)); err != nil {
			logger.Log.Errorw("failed to write report", "account_id", accountID, "error", err)
		}
	}
}
