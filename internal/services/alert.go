package services

//go:generate mockgen -source=alert.go -destination=alert_mock.go -package=services

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// DefaultAlertThreshold is the balance below which an alert is sent.
var DefaultAlertThreshold = decimal.RequireFromString("100.00")

const lowBalanceSubject = "Low Balance Alert - Banking Simulator"

// Mailer delivers a plain-text email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error // Sends one message
}

// AlertCooldown suppresses repeated alerts for the same account.
type AlertCooldown interface {
	Acquire(ctx context.Context, accountID int64) (bool, error) // Returns false while the cooldown is active
	Release(ctx context.Context, accountID int64) error         // Frees the slot after a failed delivery
}

// AlertService decides whether an account snapshot warrants a low-balance
// email and delivers it. Delivery failures are logged and never returned.
type AlertService struct {
	mailer    Mailer
	cooldown  AlertCooldown
	threshold decimal.Decimal
	attempts  uint64
	interval  time.Duration
	validate  *validator.Validate
	now       func() time.Time
}

// AlertOption configures an AlertService.
type AlertOption func(*AlertService)

// WithThreshold overrides DefaultAlertThreshold.
func WithThreshold(threshold decimal.Decimal) AlertOption {
	return func(s *AlertService) {
		s.threshold = threshold
	}
}

// WithCooldown enables per-account alert suppression.
func WithCooldown(cooldown AlertCooldown) AlertOption {
	return func(s *AlertService) {
		s.cooldown = cooldown
	}
}

// WithRetry sets the number of delivery attempts and the initial backoff interval.
func WithRetry(attempts uint64, interval time.Duration) AlertOption {
	return func(s *AlertService) {
		if attempts > 0 {
			s.attempts = attempts
		}
		s.interval = interval
	}
}

// NewAlertService creates a new AlertService.
func NewAlertService(mailer Mailer, opts ...AlertOption) *AlertService {
	s := &AlertService{
		mailer:    mailer,
		threshold: DefaultAlertThreshold,
		attempts:  3,
		interval:  500 * time.Millisecond,
		validate:  validator.New(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Threshold returns the configured alert threshold.
func (s *AlertService) Threshold() decimal.Decimal {
	return s.threshold
}

// Evaluate sends a low-balance alert when the balance is strictly below the
// threshold and the account has a valid email. It reports whether delivery
// was attempted.
func (s *AlertService) Evaluate(ctx context.Context, account models.Account) bool {
	if !account.Balance.LessThan(s.threshold) {
		return false
	}

	if err := s.validate.Var(account.Email, "required,email"); err != nil {
		logger.Log.Infow("no valid email, alert skipped", "account_id", account.ID, "owner", account.OwnerName)
		return false
	}

	acquired := false
	if s.cooldown != nil {
		ok, err := s.cooldown.Acquire(ctx, account.ID)
		switch {
		case err != nil:
			logger.Log.Warnw("alert cooldown unavailable, sending anyway", "account_id", account.ID, "error", err)
		case !ok:
			logger.Log.Debugw("alert suppressed by cooldown", "account_id", account.ID)
			return false
		default:
			acquired = true
		}
	}

	body := lowBalanceBody(account, s.threshold, s.now())
	send := func() error {
		return s.mailer.Send(ctx, account.Email, lowBalanceSubject, body)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.interval
	policy := backoff.WithContext(backoff.WithMaxRetries(b, s.attempts-1), ctx)

	if err := backoff.Retry(send, policy); err != nil {
		logger.Log.Errorw("failed to send low balance alert", "account_id", account.ID, "email", account.Email, "error", err)
		if acquired {
			if err := s.cooldown.Release(ctx, account.ID); err != nil {
				logger.Log.Warnw("failed to release alert cooldown", "account_id", account.ID, "error", err)
			}
		}
		return true
	}

	logger.Log.Infow("low balance alert sent", "account_id", account.ID, "email", account.Email)
	return true
}

func lowBalanceBody(account models.Account, threshold decimal.Decimal, at time.Time) string {
	return fmt.Sprintf("Dear %s,\n\n"+
		"Your account balance is now $%s, which is below the alert threshold of $%s.\n\n"+
		"Account ID: %d\n"+
		"Time: %s\n\n"+
		"This is an automated message from the Banking Transaction Simulator.",
		account.OwnerName,
		account.Balance.StringFixed(2),
		threshold.StringFixed(2),
		account.ID,
		at.Format(time.RFC3339),
	)
}
