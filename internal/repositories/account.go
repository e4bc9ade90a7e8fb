package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-bank-ledger/internal/dbtx"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

const (
	pgUniqueViolation = "23505"
	pgNumericOverflow = "22003"
)

// storeError translates PostgreSQL error codes into model errors.
func storeError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return models.ErrDuplicateEmail
	case pgNumericOverflow:
		return fmt.Errorf("%w: %s", models.ErrAmountOutOfRange, pgErr.Message)
	}
	return err
}

const accountColumns = `account_id, owner_name, email, password_hash, balance, created_at`

// AccountWriteRepository handles account writes and row locking.
type AccountWriteRepository struct {
	db *sqlx.DB
}

func NewAccountWriteRepository(db *sqlx.DB) *AccountWriteRepository {
	return &AccountWriteRepository{db: db}
}

// Create inserts a new account and returns it with the store-assigned id.
func (r *AccountWriteRepository) Create(
	ctx context.Context,
	ownerName, email, passwordHash string,
	balance decimal.Decimal,
) (*models.Account, error) {
	query := `
		INSERT INTO accounts (owner_name, email, password_hash, balance, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + accountColumns

	args := []any{ownerName, email, passwordHash, balance}

	var account models.Account
	err := sqlx.GetContext(ctx, dbtx.Executor(ctx, r.db), &account, query, args...)
	logQuery(query, []any{ownerName, email, balance}, account.ID, err)

	if err != nil {
		return nil, storeError(err)
	}
	return &account, nil
}

// LockByIDs selects the given accounts FOR UPDATE in ascending id order.
// Missing ids are simply absent from the result. Locks are held until the
// transaction carried by ctx ends.
func (r *AccountWriteRepository) LockByIDs(ctx context.Context, ids []int64) (map[int64]models.Account, error) {
	query, args, err := sqlx.In(`
		SELECT `+accountColumns+`
		FROM accounts
		WHERE account_id IN (?)
		ORDER BY account_id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, err
	}

	executor := dbtx.Executor(ctx, r.db)
	query = executor.Rebind(query)

	var rows []models.Account
	err = sqlx.SelectContext(ctx, executor, &rows, query, args...)
	logQuery(query, args, len(rows), err)
	if err != nil {
		return nil, err
	}

	accounts := make(map[int64]models.Account, len(rows))
	for _, a := range rows {
		accounts[a.ID] = a
	}
	return accounts, nil
}

// UpdateBalance overwrites the balance of an account.
func (r *AccountWriteRepository) UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = $1
		WHERE account_id = $2
	`
	args := []any{balance, id}

	res, err := dbtx.Executor(ctx, r.db).ExecContext(ctx, query, args...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}
	logQuery(query, args, rowsAffected, err)

	if err != nil {
		return storeError(err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("update balance: account %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// AccountReadRepository handles account lookups.
type AccountReadRepository struct {
	db *sqlx.DB
}

func NewAccountReadRepository(db *sqlx.DB) *AccountReadRepository {
	return &AccountReadRepository{db: db}
}

// GetByID returns the account or nil when it does not exist.
func (r *AccountReadRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1`
	return r.getOne(ctx, query, id)
}

// GetByEmail returns the account or nil when it does not exist.
func (r *AccountReadRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *AccountReadRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	var account models.Account
	err := sqlx.GetContext(ctx, dbtx.Executor(ctx, r.db), &account, query, arg)
	logQuery(query, []any{arg}, account.ID, err)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// ListAll returns every account ordered by id.
func (r *AccountReadRepository) ListAll(ctx context.Context) ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts ORDER BY account_id`

	accounts := []models.Account{}
	err := sqlx.SelectContext(ctx, dbtx.Executor(ctx, r.db), &accounts, query)
	logQuery(query, nil, len(accounts), err)

	return accounts, err
}

// ListExcluding returns every account except the given one, ordered by id.
func (r *AccountReadRepository) ListExcluding(ctx context.Context, id int64) ([]models.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE account_id <> $1 ORDER BY account_id`

	accounts := []models.Account{}
	err := sqlx.SelectContext(ctx, dbtx.Executor(ctx, r.db), &accounts, query, id)
	logQuery(query, []any{id}, len(accounts), err)

	return accounts, err
}
