package handlers

//go:generate mockgen -source=register.go -destination=register_mock.go -package=handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
	"github.com/shopspring/decimal"
)

// AccountCreator defines the interface that the account service must implement.
type AccountCreator interface {
	Create(ctx context.Context, ownerName, email, password string, initialBalance decimal.Decimal) (*models.Account, error)
}

// RegisterRequest represents the JSON body for opening an account
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Account holder name
	// required: true
	// default: Alice
	OwnerName string `json:"owner_name"`

	// Email address, used for login and alerts
	// required: true
	// default: alice@example.com
	Email string `json:"email"`

	// Password, at least 6 characters
	// required: true
	// default: secret123
	Password string `json:"password"`

	// Opening balance, defaults to 0.00
	// default: 100.00
	InitialBalance string `json:"initial_balance"`
}

// NewRegisterHandler returns an HTTP handler that opens a new account.
// @Summary Open account
// @Description Creates an account with a generated id. Email must be unique.
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body handlers.RegisterRequest true "Register Request"
// @Success 201 {object} handlers.AccountResponse "Account created"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request"
// @Failure 409 {object} handlers.ErrorResponse "Email already registered"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /register [post]
func NewRegisterHandler(svc AccountCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode register request", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		initial := decimal.Zero
		if s := strings.TrimSpace(req.InitialBalance); s != "" {
			v, err := decimal.NewFromString(s)
			if err != nil {
				logger.Log.Warnw("invalid initial balance", "initial_balance", req.InitialBalance)
				writeError(w, http.StatusBadRequest, "Invalid initial balance")
				return
			}
			initial = v
		}

		account, err := svc.Create(r.Context(), req.OwnerName, req.Email, req.Password, initial)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrDuplicateEmail):
				writeError(w, http.StatusConflict, "Email already registered")
			case errors.Is(err, services.ErrInvalidAccount):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, services.ErrInvalidAmount):
				writeError(w, http.StatusBadRequest, "Invalid initial balance")
			default:
				logger.Log.Errorw("failed to create account", "email", req.Email, "error", err)
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
			return
		}

		writeJSON(w, http.StatusCreated, newAccountResponse(*account))
	}
}
