package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
)

func TestAccountHandler(t *testing.T) {
	tests := []struct {
		name               string
		setupMocks         func(m *MockAccountGetter, tok *MockTokener)
		expectedStatusCode int
		expectedKey        string
	}{
		{
			name: "returns caller account",
			setupMocks: func(m *MockAccountGetter, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Get(gomock.Any(), int64(1001)).Return(account(1001, "alice", "12.3"), nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedKey:        "balance",
		},
		{
			name:               "unauthorized",
			setupMocks:         func(m *MockAccountGetter, tok *MockTokener) { expectNoToken(tok) },
			expectedStatusCode: http.StatusUnauthorized,
			expectedKey:        "error",
		},
		{
			name: "account deleted after login",
			setupMocks: func(m *MockAccountGetter, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Get(gomock.Any(), int64(1001)).
					Return(nil, &services.AccountNotFoundError{IDs: []int64{1001}})
			},
			expectedStatusCode: http.StatusNotFound,
			expectedKey:        "error",
		},
		{
			name: "internal server error",
			setupMocks: func(m *MockAccountGetter, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Get(gomock.Any(), int64(1001)).Return(nil, assert.AnError)
			},
			expectedStatusCode: http.StatusInternalServerError,
			expectedKey:        "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTokener := NewMockTokener(ctrl)
			mockGetter := NewMockAccountGetter(ctrl)
			tt.setupMocks(mockGetter, mockTokener)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me", nil)
			rr := httptest.NewRecorder()

			NewAccountHandler(mockGetter, mockTokener).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)

			var resp map[string]interface{}
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

			_, ok := resp[tt.expectedKey]
			assert.True(t, ok, "response should contain key %s", tt.expectedKey)
		})
	}
}

func TestRecipientsHandler(t *testing.T) {
	t.Run("lists other accounts without balances", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTokener := NewMockTokener(ctrl)
		mockLister := NewMockRecipientLister(ctrl)
		expectClaims(mockTokener, userClaims)
		mockLister.EXPECT().ListExcluding(gomock.Any(), int64(1001)).Return([]models.Account{
			*account(1002, "bob", "5"),
			*account(1003, "carol", "7"),
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me/recipients", nil)
		rr := httptest.NewRecorder()
		NewRecipientsHandler(mockLister, mockTokener).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var resp []map[string]interface{}
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		require.Len(t, resp, 2)
		assert.Equal(t, float64(1002), resp[0]["id"])
		assert.Equal(t, "carol", resp[1]["owner_name"])
		assert.NotContains(t, resp[0], "balance")
	})

	t.Run("empty list is an empty array", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTokener := NewMockTokener(ctrl)
		mockLister := NewMockRecipientLister(ctrl)
		expectClaims(mockTokener, userClaims)
		mockLister.EXPECT().ListExcluding(gomock.Any(), int64(1001)).Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me/recipients", nil)
		rr := httptest.NewRecorder()
		NewRecipientsHandler(mockLister, mockTokener).ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, "[]", rr.Body.String())
	})

	t.Run("storage error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockTokener := NewMockTokener(ctrl)
		mockLister := NewMockRecipientLister(ctrl)
		expectClaims(mockTokener, userClaims)
		mockLister.EXPECT().ListExcluding(gomock.Any(), int64(1001)).Return(nil, assert.AnError)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me/recipients", nil)
		rr := httptest.NewRecorder()
		NewRecipientsHandler(mockLister, mockTokener).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
