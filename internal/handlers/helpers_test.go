package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-bank-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

const validToken = "valid-token"

var (
	userClaims  = &jwt.Claims{AccountID: 1001, Role: jwt.RoleUser}
	adminClaims = &jwt.Claims{Role: jwt.RoleAdmin}
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func expectClaims(tok *MockTokener, claims *jwt.Claims) {
	tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return(validToken, nil)
	tok.EXPECT().GetClaims(gomock.Any(), validToken).Return(claims, nil)
}

func expectNoToken(tok *MockTokener) {
	tok.EXPECT().GetTokenFromRequest(gomock.Any(), gomock.Any()).Return("", http.ErrNoCookie)
}

func body(v any) io.Reader {
	if s, ok := v.(string); ok {
		return bytes.NewReader([]byte(s))
	}
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

// decimalEq matches a decimal.Decimal by value.
type decimalEq struct{ want decimal.Decimal }

func eqDecimal(s string) gomock.Matcher { return decimalEq{want: dec(s)} }

func (m decimalEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "equals decimal " + m.want.String() }

func account(id int64, owner, balance string) *models.Account {
	return &models.Account{
		ID:        id,
		OwnerName: owner,
		Email:     owner + "@example.com",
		Balance:   dec(balance),
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}
