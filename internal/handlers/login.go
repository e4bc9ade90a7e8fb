package handlers

//go:generate mockgen -source=login.go -destination=login_mock.go -package=handlers

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

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Authenticate(ctx context.Context, email, password string) (string, *models.Account, error)
	AuthenticateAdmin(ctx context.Context, email, password string) (string, error)
	IsAdminEmail(email string) bool
}

// LoginRequest represents the JSON body for login
// swagger:model LoginRequest
type LoginRequest struct {
	// Email address
	// required: true
	// default: alice@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	// JWT token
	Token string `json:"token"`

	// user or admin
	// default: user
	Role string `json:"role"`

	// Authenticated account, absent for the administrator
	Account *AccountResponse `json:"account,omitempty"`
}

// NewLoginHandler returns an HTTP handler for account holder and administrator login.
// @Summary Login
// @Description Authenticates an account holder or the administrator and returns a JWT token.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body handlers.LoginRequest true "Login Request"
// @Success 200 {object} handlers.LoginResponse "Authenticated"
// @Failure 400 {object} handlers.ErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ErrorResponse "Invalid email or password"
// @Failure 500 {object} handlers.ErrorResponse "Internal server error"
// @Router /login [post]
func NewLoginHandler(svc Loginer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Log.Errorw("failed to decode login request", "error", err)
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		ctx := r.Context()

		if svc.IsAdminEmail(req.Email) {
			token, err := svc.AuthenticateAdmin(ctx, req.Email, req.Password)
			if err != nil {
				writeLoginError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, LoginResponse{Token: token, Role: jwt.RoleAdmin})
			return
		}

		token, account, err := svc.Authenticate(ctx, req.Email, req.Password)
		if err != nil {
			writeLoginError(w, err)
			return
		}

		resp := newAccountResponse(*account)
		writeJSON(w, http.StatusOK, LoginResponse{Token: token, Role: jwt.RoleUser, Account: &resp})
	}
}

func writeLoginError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	logger.Log.Errorw("login failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}
