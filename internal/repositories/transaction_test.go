package repositories

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

var transactionRowColumns = []string{"id", "from_account", "to_account", "amount", "type", "status", "timestamp"}

func TestTransactionWriteRepository_Append(t *testing.T) {
	rec := models.TransactionRecord{
		ID:          uuid.New(),
		FromAccount: int64Ptr(1001),
		ToAccount:   nil,
		Amount:      decimal.RequireFromString("25.00"),
		Kind:        models.Withdrawal,
		Status:      models.StatusFailed,
		Timestamp:   time.Now().UTC(),
	}

	t.Run("inserted", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO transactions").
			WithArgs(rec.ID.String(), int64(1001), nil, sqlmock.AnyArg(), "WITHDRAWAL", "FAILED", rec.Timestamp).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := NewTransactionWriteRepository(db).Append(context.Background(), rec)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO transactions").WillReturnError(sql.ErrConnDone)

		err := NewTransactionWriteRepository(db).Append(context.Background(), rec)
		assert.ErrorIs(t, err, sql.ErrConnDone)
	})

	t.Run("amount overflows numeric", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectExec("INSERT INTO transactions").
			WillReturnError(&pgconn.PgError{Code: "22003", Message: "numeric field overflow"})

		err := NewTransactionWriteRepository(db).Append(context.Background(), rec)
		assert.ErrorIs(t, err, models.ErrAmountOutOfRange)
	})
}

func TestTransactionReadRepository_ListForAccount(t *testing.T) {
	db, mock := newMockDB(t)
	id := uuid.New()
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(`WHERE from_account = \$1 OR to_account = \$1\s+ORDER BY timestamp DESC, id\s+LIMIT \$2`).
		WithArgs(int64(1001), 10).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns).
			AddRow(id.String(), int64(1001), int64(1002), "12.50", "TRANSFER", "SUCCESS", ts))

	got, err := NewTransactionReadRepository(db).ListForAccount(context.Background(), 1001, 10)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, models.Transfer, got[0].Kind)
	assert.Equal(t, int64(1002), *got[0].ToAccount)
	assert.Equal(t, "12.50", got[0].Amount.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionReadRepository_ListAll(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`FROM transactions\s+ORDER BY timestamp DESC`).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns).
			AddRow(uuid.NewString(), nil, int64(1001), "5.00", "DEPOSIT", "SUCCESS", time.Now()).
			AddRow(uuid.NewString(), int64(1001), nil, "1.00", "WITHDRAWAL", "FAILED", time.Now()))

	got, err := NewTransactionReadRepository(db).ListAll(context.Background())

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Nil(t, got[0].FromAccount)
	assert.Nil(t, got[1].ToAccount)
}

func TestTransactionRepositories_Postgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	acc, err := NewAccountWriteRepository(db).Create(ctx, "Alice", "alice@example.com", "h", decimal.Zero)
	require.NoError(t, err)

	writer := NewTransactionWriteRepository(db)
	reader := NewTransactionReadRepository(db)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		err := writer.Append(ctx, models.TransactionRecord{
			ID:        uuid.New(),
			ToAccount: int64Ptr(acc.ID),
			Amount:    decimal.NewFromInt(int64(i + 1)),
			Kind:      models.Deposit,
			Status:    models.StatusSuccess,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	got, err := reader.ListForAccount(ctx, acc.ID, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "3.00", got[0].Amount.StringFixed(2))
	assert.Equal(t, "2.00", got[1].Amount.StringFixed(2))

	_, err = db.ExecContext(ctx, `DELETE FROM transactions`)
	assert.Error(t, err, "audit log is append-only")

	all, err := reader.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
