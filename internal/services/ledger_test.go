package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
	"github.com/sbilibin2017/gw-bank-ledger/internal/services"
)

type ledgerMocks struct {
	store    *services.MockLedgerAccountStore
	audit    *services.MockAuditLogWriter
	tx       *services.MockTransactor
	notifier *services.MockNotifier
	kafka    *services.MockKafkaWriter
	svc      *services.LedgerService
}

func newLedgerMocks(t *testing.T) *ledgerMocks {
	ctrl := gomock.NewController(t)
	m := &ledgerMocks{
		store:    services.NewMockLedgerAccountStore(ctrl),
		audit:    services.NewMockAuditLogWriter(ctrl),
		tx:       services.NewMockTransactor(ctrl),
		notifier: services.NewMockNotifier(ctrl),
		kafka:    services.NewMockKafkaWriter(ctrl),
	}
	m.svc = services.NewLedgerService(m.store, m.audit, m.tx, m.notifier, m.kafka)
	return m
}

func (m *ledgerMocks) expectTx() {
	m.tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
}

func TestLedgerService_Deposit(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), []int64{1001}).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("50.00")}}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), eqDecimal("100.00")).Return(nil)
		m.audit.EXPECT().Append(gomock.Any(), recordLike{to: ptr(1001), amount: "50.00", kind: models.Deposit, status: models.StatusSuccess}).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs ...kafka.Message) error {
				require.Len(t, msgs, 1)
				var event models.TransactionEvent
				require.NoError(t, json.Unmarshal(msgs[0].Value, &event))
				assert.Equal(t, "DEPOSIT", event.Operation)
				assert.Equal(t, "SUCCESS", event.Status)
				assert.Equal(t, "50.00", event.Amount)
				assert.Nil(t, event.FromAccount)
				assert.Equal(t, string(msgs[0].Key), event.TransactionID)
				return nil
			})
		m.notifier.EXPECT().Notify(gomock.Any(), balanceIs{id: 1001, balance: "100.00"})

		acc, err := m.svc.Deposit(ctx, 1001, dec("50.00"))
		require.NoError(t, err)
		assert.Equal(t, "100.00", acc.Balance.StringFixed(2))
	})

	t.Run("invalid amount touches nothing", func(t *testing.T) {
		m := newLedgerMocks(t)
		for _, a := range []string{"0", "-5", "1.001"} {
			acc, err := m.svc.Deposit(ctx, 1001, dec(a))
			assert.ErrorIs(t, err, services.ErrInvalidAmount, a)
			assert.Nil(t, acc)
		}
	})

	t.Run("unknown account is not audited", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), []int64{42}).Return(map[int64]models.Account{}, nil)

		acc, err := m.svc.Deposit(ctx, 42, dec("10.00"))
		assert.ErrorIs(t, err, services.ErrAccountNotFound)
		var nf *services.AccountNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []int64{42}, nf.IDs)
		assert.Nil(t, acc)
	})

	t.Run("storage failure is unexpected", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		boom := errors.New("disk full")
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("1.00")}}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), gomock.Any()).Return(nil)
		m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(boom)

		acc, err := m.svc.Deposit(ctx, 1001, dec("1.00"))
		assert.ErrorIs(t, err, services.ErrUnexpected)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, acc)
	})

	t.Run("commit failure is unexpected", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).Return(errors.New("commit transaction: conn reset"))

		_, err := m.svc.Deposit(ctx, 1001, dec("1.00"))
		assert.ErrorIs(t, err, services.ErrUnexpected)
	})

	t.Run("balance beyond store range is an invalid amount", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("9999999999999.00")}}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), gomock.Any()).Return(models.ErrAmountOutOfRange)

		acc, err := m.svc.Deposit(ctx, 1001, dec("1.00"))
		assert.ErrorIs(t, err, services.ErrInvalidAmount)
		assert.ErrorIs(t, err, models.ErrAmountOutOfRange)
		assert.NotErrorIs(t, err, services.ErrUnexpected)
		assert.Nil(t, acc)
	})

	t.Run("publish failure does not fail the deposit", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("0")}}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), eqDecimal("5")).Return(nil)
		m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
		m.notifier.EXPECT().Notify(gomock.Any(), gomock.Any())

		acc, err := m.svc.Deposit(ctx, 1001, dec("5"))
		require.NoError(t, err)
		assert.Equal(t, "5.00", acc.Balance.StringFixed(2))
	})
}

func TestLedgerService_Withdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), []int64{1001}).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("100.00")}}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), eqDecimal("40.00")).Return(nil)
		m.audit.EXPECT().Append(gomock.Any(), recordLike{from: ptr(1001), amount: "60.00", kind: models.Withdrawal, status: models.StatusSuccess}).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)
		m.notifier.EXPECT().Notify(gomock.Any(), balanceIs{id: 1001, balance: "40.00"})

		acc, err := m.svc.Withdraw(ctx, 1001, dec("60.00"))
		require.NoError(t, err)
		assert.Equal(t, "40.00", acc.Balance.StringFixed(2))
	})

	t.Run("insufficient funds commits a failed record", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), []int64{1001}).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("100.00")}}, nil)
		m.audit.EXPECT().Append(gomock.Any(), recordLike{from: ptr(1001), amount: "150.00", kind: models.Withdrawal, status: models.StatusFailed}).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)

		acc, err := m.svc.Withdraw(ctx, 1001, dec("150.00"))
		assert.Nil(t, acc)
		assert.ErrorIs(t, err, services.ErrInsufficientFunds)

		var insufficient *services.InsufficientFundsError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, int64(1001), insufficient.AccountID)
		assert.Equal(t, "150.00", insufficient.Required.StringFixed(2))
		assert.Equal(t, "100.00", insufficient.Available.StringFixed(2))
		assert.Contains(t, err.Error(), "required 150.00, available 100.00")
	})

	t.Run("failed record storage error wins", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("1.00")}}, nil)
		m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("insert failed"))

		_, err := m.svc.Withdraw(ctx, 1001, dec("2.00"))
		assert.ErrorIs(t, err, services.ErrUnexpected)
		assert.NotErrorIs(t, err, services.ErrInsufficientFunds)
	})

	t.Run("exact balance empties the account", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{1001: {ID: 1001, Balance: dec("25.50")}}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), eqDecimal("0")).Return(nil)
		m.audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)
		m.notifier.EXPECT().Notify(gomock.Any(), balanceIs{id: 1001, balance: "0"})

		acc, err := m.svc.Withdraw(ctx, 1001, dec("25.50"))
		require.NoError(t, err)
		assert.True(t, acc.Balance.IsZero())
	})
}

func TestLedgerService_Transfer(t *testing.T) {
	ctx := context.Background()

	t.Run("success updates both sides in one transaction", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), []int64{1002, 1001}).
			Return(map[int64]models.Account{
				1001: {ID: 1001, Balance: dec("10.00")},
				1002: {ID: 1002, Balance: dec("40.00")},
			}, nil)
		gomock.InOrder(
			m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1002), eqDecimal("0.00")).Return(nil),
			m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), eqDecimal("50.00")).Return(nil),
		)
		m.audit.EXPECT().Append(gomock.Any(), recordLike{from: ptr(1002), to: ptr(1001), amount: "40.00", kind: models.Transfer, status: models.StatusSuccess}).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)
		m.notifier.EXPECT().Notify(gomock.Any(), balanceIs{id: 1002, balance: "0.00"})

		res, err := m.svc.Transfer(ctx, 1002, 1001, dec("40.00"))
		require.NoError(t, err)
		assert.Equal(t, "0.00", res.From.Balance.StringFixed(2))
		assert.Equal(t, "50.00", res.To.Balance.StringFixed(2))
	})

	t.Run("same account", func(t *testing.T) {
		m := newLedgerMocks(t)
		res, err := m.svc.Transfer(ctx, 1001, 1001, dec("1.00"))
		assert.ErrorIs(t, err, services.ErrSameAccount)
		assert.Nil(t, res)
	})

	t.Run("invalid amount", func(t *testing.T) {
		m := newLedgerMocks(t)
		_, err := m.svc.Transfer(ctx, 1001, 1002, dec("0"))
		assert.ErrorIs(t, err, services.ErrInvalidAmount)
	})

	t.Run("missing accounts are all named", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), []int64{1002, 1001}).Return(map[int64]models.Account{}, nil)

		_, err := m.svc.Transfer(ctx, 1002, 1001, dec("1.00"))
		var nf *services.AccountNotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, []int64{1002, 1001}, nf.IDs)
		assert.EqualError(t, err, "account not found: 1002, 1001")
	})

	t.Run("insufficient funds", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{
				1001: {ID: 1001, Balance: dec("5.00")},
				1002: {ID: 1002, Balance: dec("0.00")},
			}, nil)
		m.audit.EXPECT().Append(gomock.Any(), recordLike{from: ptr(1001), to: ptr(1002), amount: "5.01", kind: models.Transfer, status: models.StatusFailed}).Return(nil)
		m.kafka.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)

		res, err := m.svc.Transfer(ctx, 1001, 1002, dec("5.01"))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, services.ErrInsufficientFunds)
	})

	t.Run("credit failure rolls back and is unexpected", func(t *testing.T) {
		m := newLedgerMocks(t)
		m.expectTx()
		m.store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
			Return(map[int64]models.Account{
				1001: {ID: 1001, Balance: dec("5.00")},
				1002: {ID: 1002, Balance: dec("0.00")},
			}, nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), gomock.Any()).Return(nil)
		m.store.EXPECT().UpdateBalance(gomock.Any(), int64(1002), gomock.Any()).Return(errors.New("conn reset"))

		res, err := m.svc.Transfer(ctx, 1001, 1002, dec("5.00"))
		assert.Nil(t, res)
		assert.ErrorIs(t, err, services.ErrUnexpected)
	})
}

func TestLedgerService_NilCollaborators(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := services.NewMockLedgerAccountStore(ctrl)
	audit := services.NewMockAuditLogWriter(ctrl)
	tx := services.NewMockTransactor(ctrl)

	svc := services.NewLedgerService(store, audit, tx, nil, nil)

	tx.EXPECT().WithinTx(gomock.Any(), gomock.Any()).DoAndReturn(runInline)
	store.EXPECT().LockByIDs(gomock.Any(), gomock.Any()).
		Return(map[int64]models.Account{1001: {ID: 1001, Balance: decimal.Zero}}, nil)
	store.EXPECT().UpdateBalance(gomock.Any(), int64(1001), gomock.Any()).Return(nil)
	audit.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	acc, err := svc.Deposit(context.Background(), 1001, dec("1.00"))
	require.NoError(t, err)
	assert.Equal(t, "1.00", acc.Balance.StringFixed(2))
}
