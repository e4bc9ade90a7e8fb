package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
)

func TestReportHandler(t *testing.T) {
	tests := []struct {
		name               string
		setupMocks         func(m *MockReportGenerator, tok *MockTokener)
		expectedStatusCode int
		expectedBody       string
	}{
		{
			name: "downloads report",
			setupMocks: func(m *MockReportGenerator, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Generate(gomock.Any(), int64(1001)).Return("Account Report\nNo transactions found.\n", nil)
			},
			expectedStatusCode: http.StatusOK,
			expectedBody:       "Account Report\nNo transactions found.\n",
		},
		{
			name:               "unauthorized",
			setupMocks:         func(m *MockReportGenerator, tok *MockTokener) { expectNoToken(tok) },
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name: "account not found",
			setupMocks: func(m *MockReportGenerator, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Generate(gomock.Any(), int64(1001)).
					Return("", &services.AccountNotFoundError{IDs: []int64{1001}})
			},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name: "storage error",
			setupMocks: func(m *MockReportGenerator, tok *MockTokener) {
				expectClaims(tok, userClaims)
				m.EXPECT().Generate(gomock.Any(), int64(1001)).Return("", services.ErrUnexpected)
			},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockTokener := NewMockTokener(ctrl)
			mockGenerator := NewMockReportGenerator(ctrl)
			tt.setupMocks(mockGenerator, mockTokener)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts/me/report", nil)
			rr := httptest.NewRecorder()

			NewReportHandler(mockGenerator, mockTokener).ServeHTTP(rr, req)

			assert.Equal(t, tt.expectedStatusCode, rr.Code)
			if tt.expectedStatusCode != http.StatusOK {
				assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
				return
			}
			assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="account_1001.txt"`, rr.Header().Get("Content-Disposition"))
			assert.Equal(t, tt.expectedBody, rr.Body.String())
		})
	}
}
