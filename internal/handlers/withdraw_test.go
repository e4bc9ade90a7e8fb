package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
)

func TestWithdrawHandler(t *testing.T) {
	tests := []struct {
		name               string
		requestBody        any
		setupMocks         func(m *MockWithdrawer, tok *MockTokener)
		expectedStatusCode int
		expectedError      string
	}{
		{
			name:        "successful withdrawal",
			requestBody: AmountRequest{Amount: "30"},
			setupMocks: func(m *MockWithdrawer, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Withdraw(gomock.Any(), int64(1001), eqDecimal("30")).
					Return(account(1001, "alice", "70"), nil)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "unauthorized",
			requestBody:        AmountRequest{Amount: "30"},
			setupMocks:         func(m *MockWithdrawer, tok *MockTokener) { expectNoToken(tok) },
			expectedStatusCode: http.StatusUnauthorized,
			expectedError:      "Unauthorized",
		},
		{
			name:               "empty amount",
			requestBody:        AmountRequest{},
			setupMocks:         func(m *MockWithdrawer, tok *MockTokener) { expectClaims(tok, userClaims) },
			expectedStatusCode: http.StatusBadRequest,
			expectedError:      "Invalid amount",
		},
		{
			name:        "insufficient funds",
			requestBody: AmountRequest{Amount: "2.00"},
			setupMocks: func(m *MockWithdrawer, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Withdraw(gomock.Any(), int64(1001), eqDecimal("2")).
					Return(nil, &services.InsufficientFundsError{
						AccountID: 1001,
						Required:  dec("2.00"),
						Available: dec("1.50"),
					})
			},
			expectedStatusCode: http.StatusUnprocessableEntity,
			expectedError:      "insufficient funds on account 1001: required 2.00, available 1.50",
		},
		{
			name:        "account not found",
			requestBody: AmountRequest{Amount: "2.00"},
			setupMocks: func(m *MockWithdrawer, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Withdraw(gomock.Any(), int64(1001), gomock.Any()).
					Return(nil, &services.AccountNotFoundError{IDs: []int64{1001}})
			},
			expectedStatusCode: http.StatusNotFound,
			expectedError:      "account not found: 1001",
		},
		{
			name:        "internal server error",
			requestBody: AmountRequest{Amount: "2.00"},
			setupMocks: func(m *MockWithdrawer, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Withdraw(gomock.Any(), int64(1001), gomock.Any()).
					Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedError:      "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTokener := NewMockTokener(ctrl)
			mockWithdrawer := NewMockWithdrawer(ctrl)
			tt.setupMocks(mockWithdrawer, mockTokener)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts/me/withdraw", body(tt.requestBody))
			rr := httptest.NewRecorder()

			NewWithdrawHandler(mockWithdrawer, mockTokener).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			if tt.expectedError == "" {
				var resp BalanceResponse
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
				assert.Equal(t, "70.00", resp.Account.Balance)
				return
			}

			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, tt.expectedError, resp.Error)
		})
	}
}
