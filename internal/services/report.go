package services

//go:generate mockgen -source=report.go -destination=report_mock.go -package=services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// Report and history limits
const (
	ReportHistorySize   = 10
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// TransactionHistoryReader reads the audit log.
type TransactionHistoryReader interface {
	ListAll(ctx context.Context) ([]models.TransactionRecord, error)                                    // Every record, latest first
	ListForAccount(ctx context.Context, accountID int64, limit int) ([]models.TransactionRecord, error) // Records touching the account, latest first
}

// AccountGetter looks up a single account.
type AccountGetter interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error) // Returns nil when absent
}

// ReportService renders account summaries and exposes the audit history.
type ReportService struct {
	accounts AccountGetter
	history  TransactionHistoryReader
	now      func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(accounts AccountGetter, history TransactionHistoryReader) *ReportService {
	return &ReportService{
		accounts: accounts,
		history:  history,
		now:      time.Now,
	}
}

// History returns up to limit records for the account. Out-of-range limits fall back to the default.
func (s *ReportService) History(ctx context.Context, accountID int64, limit int) ([]models.TransactionRecord, error) {
	if limit <= 0 || limit > MaxHistoryLimit {
		limit = DefaultHistoryLimit
	}
	records, err := s.history.ListForAccount(ctx, accountID, limit)
	if err != nil {
		logger.Log.Errorw("failed to list account history", "account_id", accountID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return records, nil
}

// ListAll returns the whole audit log, latest first.
func (s *ReportService) ListAll(ctx context.Context) ([]models.TransactionRecord, error) {
	records, err := s.history.ListAll(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list transactions", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return records, nil
}

// Generate renders a plain-text summary of the account with its latest records.
func (s *ReportService) Generate(ctx context.Context, accountID int64) (string, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		logger.Log.Errorw("failed to load account for report", "account_id", accountID, "error", err)
		return "", fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	if account == nil {
		return "", &AccountNotFoundError{IDs: []int64{accountID}}
	}

	records, err := s.History(ctx, accountID, ReportHistorySize)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("=== BANKING SIMULATOR - ACCOUNT SUMMARY ===\n")
	fmt.Fprintf(&b, "Account ID: %d\n", account.ID)
	fmt.Fprintf(&b, "Owner: %s\n", account.OwnerName)
	fmt.Fprintf(&b, "Current Balance: $%s\n", account.Balance.StringFixed(2))
	fmt.Fprintf(&b, "Report Generated: %s\n", s.now().Format(time.RFC3339))
	b.WriteString("\n=== TRANSACTION HISTORY ===\n")

	if len(records) == 0 {
		b.WriteString("No transactions found.\n")
	}
	for _, rec := range records {
		fmt.Fprintf(&b, "[%s] %s [%s]\n",
			rec.Timestamp.Format(time.RFC3339), DescribeRecord(rec, accountID), rec.Status)
	}
	b.WriteString("\n==========================================\n")

	return b.String(), nil
}

// DescribeRecord renders a record from the point of view of the given account.
func DescribeRecord(rec models.TransactionRecord, accountID int64) string {
	amount := rec.Amount.StringFixed(2)
	switch rec.Kind {
	case models.Deposit:
		return "DEPOSIT: +$" + amount
	case models.Withdrawal:
		return "WITHDRAWAL: -$" + amount
	}

	if rec.FromAccount != nil && *rec.FromAccount == accountID {
		return fmt.Sprintf("TRANSFER OUT: -$%s → %s", amount, FormatParty(rec.ToAccount))
	}
	return fmt.Sprintf("TRANSFER IN: +$%s ← %s", amount, FormatParty(rec.FromAccount))
}

// FormatParty renders one side of a record; an absent side is the SYSTEM.
func FormatParty(id *int64) string {
	if id == nil {
		return "SYSTEM"
	}
	return strconv.FormatInt(*id, 10)
}
