package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/sbilibin2017/gw-bank-ledger/internal/dbtx"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

const transactionColumns = `id, from_account, to_account, amount, type, status, timestamp`

// TransactionWriteRepository is the append-only audit log store.
type TransactionWriteRepository struct {
	db *sqlx.DB
}

func NewTransactionWriteRepository(db *sqlx.DB) *TransactionWriteRepository {
	return &TransactionWriteRepository{db: db}
}

// Append inserts a single audit record. It joins the transaction carried by ctx, if any.
func (r *TransactionWriteRepository) Append(ctx context.Context, rec models.TransactionRecord) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	args := []any{
		rec.ID,
		rec.FromAccount,
		rec.ToAccount,
		rec.Amount,
		string(rec.Kind),
		string(rec.Status),
		rec.Timestamp,
	}

	res, err := dbtx.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)

	return storeError(err)
}

// TransactionReadRepository reads the audit log for reporting.
type TransactionReadRepository struct {
	db *sqlx.DB
}

func NewTransactionReadRepository(db *sqlx.DB) *TransactionReadRepository {
	return &TransactionReadRepository{db: db}
}

// ListAll returns every record, latest first.
func (r *TransactionReadRepository) ListAll(ctx context.Context) ([]models.TransactionRecord, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY timestamp DESC, id
	`

	records := []models.TransactionRecord{}
	err := sqlx.SelectContext(ctx, r.db, &records, query)
	logQuery(query, nil, len(records), err)

	return records, err
}

// ListForAccount returns at most limit records where the account is source
// or destination, latest first.
func (r *TransactionReadRepository) ListForAccount(ctx context.Context, accountID int64, limit int) ([]models.TransactionRecord, error) {
	const query = `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_account = $1 OR to_account = $1
		ORDER BY timestamp DESC, id
		LIMIT $2
	`
	args := []any{accountID, limit}

	records := []models.TransactionRecord{}
	err := sqlx.SelectContext(ctx, r.db, &records, query, args...)
	logQuery(query, args, len(records), err)

	return records, err
}
