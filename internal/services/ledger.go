package services

//go:generate mockgen -source=ledger.go -destination=ledger_mock.go -package=services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

var transactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ledger_transactions_total",
	Help: "Committed ledger transactions by type and status.",
}, []string{"type", "status"})

// LedgerAccountStore locks and updates account balances inside the ambient DB transaction.
type LedgerAccountStore interface {
	LockByIDs(ctx context.Context, ids []int64) (map[int64]models.Account, error) // Locks existing accounts FOR UPDATE
	UpdateBalance(ctx context.Context, id int64, balance decimal.Decimal) error   // Overwrites an account balance
}

// AuditLogWriter appends audit records.
type AuditLogWriter interface {
	Append(ctx context.Context, rec models.TransactionRecord) error // Inserts a single record
}

// Transactor runs fn in a database transaction carried by the context.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error // Commits on nil, rolls back otherwise
}

// Notifier receives account snapshots after a successful mutation. It must not block.
type Notifier interface {
	Notify(ctx context.Context, account models.Account) // Fire-and-forget
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// TransferResult holds both account snapshots after a transfer.
type TransferResult struct {
	From models.Account `json:"from"`
	To   models.Account `json:"to"`
}

// LedgerService applies deposits, withdrawals and transfers. Every operation
// is atomic: balances and its audit record are committed together.
type LedgerService struct {
	accounts    LedgerAccountStore
	audit       AuditLogWriter
	tx          Transactor
	notifier    Notifier
	kafkaWriter KafkaWriter
	locker      *accountLocker
}

// NewLedgerService creates a new LedgerService. notifier and kafkaWriter may be nil.
func NewLedgerService(
	accounts LedgerAccountStore,
	audit AuditLogWriter,
	tx Transactor,
	notifier Notifier,
	kafkaWriter KafkaWriter,
) *LedgerService {
	return &LedgerService{
		accounts:    accounts,
		audit:       audit,
		tx:          tx,
		notifier:    notifier,
		kafkaWriter: kafkaWriter,
		locker:      newAccountLocker(),
	}
}

// Deposit credits amount to the account and returns the updated snapshot.
func (s *LedgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	var (
		updated models.Account
		rec     models.TransactionRecord
	)
	err := s.lockedTx(ctx, []int64{accountID}, func(ctx context.Context) error {
		accounts, err := s.lockAccounts(ctx, accountID)
		if err != nil {
			return err
		}

		updated = accounts[accountID]
		updated.Balance = updated.Balance.Add(amount)
		if err := s.accounts.UpdateBalance(ctx, accountID, updated.Balance); err != nil {
			return err
		}

		rec = newRecord(nil, &accountID, amount, models.Deposit, models.StatusSuccess)
		return s.audit.Append(ctx, rec)
	})
	if err != nil {
		err = unexpected(err)
		logger.Log.Errorw("deposit failed", "account_id", accountID, "amount", amount, "error", err)
		return nil, err
	}

	s.committed(ctx, rec)
	s.notify(ctx, updated)

	logger.Log.Infow("deposit applied", "account_id", accountID, "amount", amount, "balance", updated.Balance)
	return &updated, nil
}

// Withdraw debits amount from the account. When funds are short a FAILED
// record is committed and an InsufficientFundsError is returned.
func (s *LedgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (*models.Account, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}

	var (
		updated      models.Account
		rec          models.TransactionRecord
		insufficient *InsufficientFundsError
	)
	err := s.lockedTx(ctx, []int64{accountID}, func(ctx context.Context) error {
		accounts, err := s.lockAccounts(ctx, accountID)
		if err != nil {
			return err
		}

		updated = accounts[accountID]
		if updated.Balance.LessThan(amount) {
			insufficient = &InsufficientFundsError{
				AccountID: accountID,
				Required:  amount,
				Available: updated.Balance,
			}
			rec = newRecord(&accountID, nil, amount, models.Withdrawal, models.StatusFailed)
			return s.audit.Append(ctx, rec)
		}

		updated.Balance = updated.Balance.Sub(amount)
		if err := s.accounts.UpdateBalance(ctx, accountID, updated.Balance); err != nil {
			return err
		}

		rec = newRecord(&accountID, nil, amount, models.Withdrawal, models.StatusSuccess)
		return s.audit.Append(ctx, rec)
	})
	if err != nil {
		err = unexpected(err)
		logger.Log.Errorw("withdrawal failed", "account_id", accountID, "amount", amount, "error", err)
		return nil, err
	}

	s.committed(ctx, rec)
	if insufficient != nil {
		logger.Log.Warnw("withdrawal rejected", "account_id", accountID, "error", insufficient)
		return nil, insufficient
	}
	s.notify(ctx, updated)

	logger.Log.Infow("withdrawal applied", "account_id", accountID, "amount", amount, "balance", updated.Balance)
	return &updated, nil
}

// Transfer moves amount between two accounts in a single DB transaction.
// Only the source snapshot is handed to the notifier.
func (s *LedgerService) Transfer(ctx context.Context, fromID, toID int64, amount decimal.Decimal) (*TransferResult, error) {
	if err := ValidateAmount(amount); err != nil {
		return nil, err
	}
	if fromID == toID {
		return nil, ErrSameAccount
	}

	var (
		result       TransferResult
		rec          models.TransactionRecord
		insufficient *InsufficientFundsError
	)
	err := s.lockedTx(ctx, []int64{fromID, toID}, func(ctx context.Context) error {
		accounts, err := s.lockAccounts(ctx, fromID, toID)
		if err != nil {
			return err
		}

		from, to := accounts[fromID], accounts[toID]
		if from.Balance.LessThan(amount) {
			insufficient = &InsufficientFundsError{
				AccountID: fromID,
				Required:  amount,
				Available: from.Balance,
			}
			rec = newRecord(&fromID, &toID, amount, models.Transfer, models.StatusFailed)
			return s.audit.Append(ctx, rec)
		}

		from.Balance = from.Balance.Sub(amount)
		to.Balance = to.Balance.Add(amount)
		if err := s.accounts.UpdateBalance(ctx, fromID, from.Balance); err != nil {
			return err
		}
		if err := s.accounts.UpdateBalance(ctx, toID, to.Balance); err != nil {
			return err
		}

		rec = newRecord(&fromID, &toID, amount, models.Transfer, models.StatusSuccess)
		if err := s.audit.Append(ctx, rec); err != nil {
			return err
		}

		result = TransferResult{From: from, To: to}
		return nil
	})
	if err != nil {
		err = unexpected(err)
		logger.Log.Errorw("transfer failed", "from", fromID, "to", toID, "amount", amount, "error", err)
		return nil, err
	}

	s.committed(ctx, rec)
	if insufficient != nil {
		logger.Log.Warnw("transfer rejected", "from", fromID, "to", toID, "error", insufficient)
		return nil, insufficient
	}
	s.notify(ctx, result.From)

	logger.Log.Infow("transfer applied", "from", fromID, "to", toID, "amount", amount)
	return &result, nil
}

// lockedTx runs fn in a DB transaction while holding the in-process locks of ids.
// The locks are released once the transaction ends, before any event is published.
func (s *LedgerService) lockedTx(ctx context.Context, ids []int64, fn func(ctx context.Context) error) error {
	unlock := s.locker.Lock(ids...)
	defer unlock()
	return s.tx.WithinTx(ctx, fn)
}

// lockAccounts row-locks the accounts and fails naming every id that does not exist.
// LockByIDs takes the row locks in ascending id order.
func (s *LedgerService) lockAccounts(ctx context.Context, ids ...int64) (map[int64]models.Account, error) {
	accounts, err := s.accounts.LockByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	var missing []int64
	for _, id := range ids {
		if _, ok := accounts[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, &AccountNotFoundError{IDs: missing}
	}
	return accounts, nil
}

// committed records metrics and publishes the event of a committed record.
func (s *LedgerService) committed(ctx context.Context, rec models.TransactionRecord) {
	transactionsTotal.WithLabelValues(string(rec.Kind), string(rec.Status)).Inc()
	s.publishTransaction(ctx, rec)
}

func (s *LedgerService) notify(ctx context.Context, account models.Account) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(ctx, account)
}

// publishTransaction publishes a transaction to Kafka.
func (s *LedgerService) publishTransaction(ctx context.Context, rec models.TransactionRecord) {
	if s.kafkaWriter == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "transaction_id", rec.ID)
		return
	}

	event := models.NewTransactionEvent(rec)
	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal transaction for Kafka", "transaction_id", rec.ID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.TransactionID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish transaction to Kafka", "transaction_id", rec.ID, "error", err)
	} else {
		logger.Log.Infow("Transaction published to Kafka", "transaction_id", rec.ID, "amount", event.Amount)
	}
}

func newRecord(
	from, to *int64,
	amount decimal.Decimal,
	kind models.TransactionKind,
	status models.TransactionStatus,
) models.TransactionRecord {
	return models.TransactionRecord{
		ID:          uuid.New(),
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		Kind:        kind,
		Status:      status,
		Timestamp:   time.Now().UTC(),
	}
}
