package services_test

import (
	"context"
	"fmt"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(v int64) *int64 { return &v }

// decimalEq matches a decimal.Decimal by value regardless of exponent.
type decimalEq struct{ want decimal.Decimal }

func eqDecimal(s string) gomock.Matcher { return decimalEq{want: dec(s)} }

func (m decimalEq) Matches(x interface{}) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(m.want)
}

func (m decimalEq) String() string { return "equals decimal " + m.want.String() }

// recordLike matches an audit record by its business fields.
type recordLike struct {
	from, to *int64
	amount   string
	kind     models.TransactionKind
	status   models.TransactionStatus
}

func (m recordLike) Matches(x interface{}) bool {
	r, ok := x.(models.TransactionRecord)
	if !ok {
		return false
	}
	return sameRef(r.FromAccount, m.from) &&
		sameRef(r.ToAccount, m.to) &&
		r.Amount.Equal(dec(m.amount)) &&
		r.Kind == m.kind &&
		r.Status == m.status &&
		!r.Timestamp.IsZero()
}

func (m recordLike) String() string {
	return fmt.Sprintf("record %s %s %s", m.kind, m.status, m.amount)
}

// balanceIs matches an account snapshot by id and balance.
type balanceIs struct {
	id      int64
	balance string
}

func (m balanceIs) Matches(x interface{}) bool {
	a, ok := x.(models.Account)
	return ok && a.ID == m.id && a.Balance.Equal(dec(m.balance))
}

func (m balanceIs) String() string {
	return fmt.Sprintf("account %d with balance %s", m.id, m.balance)
}

func sameRef(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func runInline(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
