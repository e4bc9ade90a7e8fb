package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind is the kind of balance mutation that was attempted.
type TransactionKind string

// Supported transaction kinds
const (
	Deposit    TransactionKind = "DEPOSIT"
	Withdrawal TransactionKind = "WITHDRAWAL"
	Transfer   TransactionKind = "TRANSFER"
)

// TransactionStatus is the outcome of an attempted mutation.
type TransactionStatus string

// Supported transaction statuses
const (
	StatusSuccess TransactionStatus = "SUCCESS"
	StatusFailed  TransactionStatus = "FAILED"
)

// TransactionRecord is an immutable audit log entry describing one attempt.
type TransactionRecord struct {
	ID          uuid.UUID         `json:"id" db:"id"`                     // Globally unique record id
	FromAccount *int64            `json:"from_account" db:"from_account"` // Absent for deposits
	ToAccount   *int64            `json:"to_account" db:"to_account"`     // Absent for withdrawals
	Amount      decimal.Decimal   `json:"amount" db:"amount"`             // Strictly positive
	Kind        TransactionKind   `json:"type" db:"type"`                 // DEPOSIT, WITHDRAWAL or TRANSFER
	Status      TransactionStatus `json:"status" db:"status"`             // SUCCESS or FAILED
	Timestamp   time.Time         `json:"timestamp" db:"timestamp"`       // Engine clock at write time
}

// Involves reports whether the account is the source or destination of the record.
func (r TransactionRecord) Involves(accountID int64) bool {
	return (r.FromAccount != nil && *r.FromAccount == accountID) ||
		(r.ToAccount != nil && *r.ToAccount == accountID)
}

// TransactionEvent is the message published to Kafka for every audit record.
type TransactionEvent struct {
	TransactionID string `json:"transaction_id"` // TransactionID mirrors the audit record id.
	Timestamp     int64  `json:"timestamp"`      // Timestamp is the Unix timestamp (in seconds) of the attempt.
	Amount        string `json:"amount"`         // Amount is the fixed-point amount, two decimals.
	FromAccount   *int64 `json:"from_account"`   // FromAccount is the debited account, if any.
	ToAccount     *int64 `json:"to_account"`     // ToAccount is the credited account, if any.
	Operation     string `json:"operation"`      // Operation is DEPOSIT, WITHDRAWAL or TRANSFER.
	Status        string `json:"status"`         // Status is SUCCESS or FAILED.
}

// NewTransactionEvent builds the wire event for an audit record.
func NewTransactionEvent(r TransactionRecord) TransactionEvent {
	return TransactionEvent{
		TransactionID: r.ID.String(),
		Timestamp:     r.Timestamp.Unix(),
		Amount:        r.Amount.StringFixed(2),
		FromAccount:   r.FromAccount,
		ToAccount:     r.ToAccount,
		Operation:     string(r.Kind),
		Status:        string(r.Status),
	}
}
