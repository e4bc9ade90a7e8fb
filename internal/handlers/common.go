package handlers

//go:generate mockgen -source=common.go -destination=common_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sbilibin2017/gw-bank-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
)

// Tokener defines only the token methods needed by the handlers.
type Tokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// ErrorResponse represents an error response
// swagger:model ErrorResponse
type ErrorResponse struct {
	// Error message
	// default: Invalid amount
	Error string `json:"error"`
}

// AccountResponse represents an account snapshot
// swagger:model AccountResponse
type AccountResponse struct {
	// Account id
	// default: 1001
	ID int64 `json:"id"`

	// Account holder
	// default: Alice
	OwnerName string `json:"owner_name"`

	// Email address
	// default: alice@example.com
	Email string `json:"email"`

	// Balance with two decimals
	// default: 100.00
	Balance string `json:"balance"`

	// Creation time, RFC 3339
	CreatedAt string `json:"created_at,omitempty"`
}

// TransactionResponse represents one audit record
// swagger:model TransactionResponse
type TransactionResponse struct {
	// Record id
	ID string `json:"id"`

	// Source account, SYSTEM for deposits
	// default: 1001
	From string `json:"from"`

	// Destination account, SYSTEM for withdrawals
	// default: 1002
	To string `json:"to"`

	// Amount with two decimals
	// default: 40.00
	Amount string `json:"amount"`

	// DEPOSIT, WITHDRAWAL or TRANSFER
	// default: TRANSFER
	Type string `json:"type"`

	// SUCCESS or FAILED
	// default: SUCCESS
	Status string `json:"status"`

	// Time of the attempt, RFC 3339
	Timestamp string `json:"timestamp"`
}

func newAccountResponse(a models.Account) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID,
		OwnerName: a.OwnerName,
		Email:     a.Email,
		Balance:   a.Balance.StringFixed(2),
	}
	if !a.CreatedAt.IsZero() {
		resp.CreatedAt = a.CreatedAt.Format(timeLayout)
	}
	return resp
}

func newAccountResponses(accounts []models.Account) []AccountResponse {
	out := make([]AccountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, newAccountResponse(a))
	}
	return out
}

func newTransactionResponses(records []models.TransactionRecord) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(records))
	for _, r := range records {
		out = append(out, TransactionResponse{
			ID:        r.ID.String(),
			From:      services.FormatParty(r.FromAccount),
			To:        services.FormatParty(r.ToAccount),
			Amount:    r.Amount.StringFixed(2),
			Type:      string(r.Kind),
			Status:    string(r.Status),
			Timestamp: r.Timestamp.Format(timeLayout),
		})
	}
	return out
}

const timeLayout = "2006-01-02T15:04:05Z07:00"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorw("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// authenticate resolves the caller's claims and writes 401 on failure.
func authenticate(w http.ResponseWriter, r *http.Request, tokener Tokener) (*jwt.Claims, bool) {
	ctx := r.Context()

	tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
	if err != nil {
		logger.Log.Errorw("failed to get token from request", "error", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}

	claims, err := tokener.GetClaims(ctx, tokenStr)
	if err != nil {
		logger.Log.Errorw("failed to get claims from token", "error", err)
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return nil, false
	}
	return claims, true
}

// authenticateAccount is authenticate restricted to account holders.
func authenticateAccount(w http.ResponseWriter, r *http.Request, tokener Tokener) (int64, bool) {
	claims, ok := authenticate(w, r, tokener)
	if !ok {
		return 0, false
	}
	if claims.Role != jwt.RoleUser || claims.AccountID == 0 {
		writeError(w, http.StatusForbidden, "Forbidden")
		return 0, false
	}
	return claims.AccountID, true
}

func authenticateAdmin(w http.ResponseWriter, r *http.Request, tokener Tokener) bool {
	claims, ok := authenticate(w, r, tokener)
	if !ok {
		return false
	}
	if claims.Role != jwt.RoleAdmin {
		writeError(w, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

// writeLedgerError maps ledger and account errors to HTTP statuses.
func writeLedgerError(w http.ResponseWriter, err error) {
	var insufficient *services.InsufficientFundsError
	switch {
	case errors.Is(err, services.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, "Invalid amount")
	case errors.Is(err, services.ErrSameAccount):
		writeError(w, http.StatusBadRequest, "Cannot transfer to the same account")
	case errors.Is(err, services.ErrAccountNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &insufficient):
		writeError(w, http.StatusUnprocessableEntity, insufficient.Error())
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
