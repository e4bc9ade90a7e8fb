package services

//go:generate mockgen -source=account.go -destination=account_mock.go -package=services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sbilibin2017/gw-bank-ledger/internal/jwt"
	"github.com/sbilibin2017/gw-bank-ledger/internal/logger"
	"github.com/sbilibin2017/gw-bank-ledger/internal/models"
)

// AccountWriter creates accounts.
type AccountWriter interface {
	Create(ctx context.Context, ownerName, email, passwordHash string, balance decimal.Decimal) (*models.Account, error) // Inserts an account, ErrDuplicateEmail on conflict
}

// AccountReader reads accounts.
type AccountReader interface {
	GetByID(ctx context.Context, id int64) (*models.Account, error)        // Returns nil when absent
	GetByEmail(ctx context.Context, email string) (*models.Account, error) // Returns nil when absent
	ListAll(ctx context.Context) ([]models.Account, error)                 // Every account by id
	ListExcluding(ctx context.Context, id int64) ([]models.Account, error) // Every other account by id
}

// TokenGenerator issues bearer tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, accountID int64, role string) (string, error) // Signs a token
}

// AdminCredentials identifies the single administrator.
type AdminCredentials struct {
	Email        string // Login email
	PasswordHash string // bcrypt hash of the password
}

type newAccount struct {
	OwnerName string `validate:"required,max=100"`
	Email     string `validate:"required,email,max=100"`
	Password  string `validate:"required,min=6,max=72"`
}

// AccountService registers and authenticates account holders.
type AccountService struct {
	writer   AccountWriter
	reader   AccountReader
	tokens   TokenGenerator
	admin    AdminCredentials
	validate *validator.Validate
}

// NewAccountService creates a new AccountService.
func NewAccountService(writer AccountWriter, reader AccountReader, tokens TokenGenerator, admin AdminCredentials) *AccountService {
	return &AccountService{
		writer:   writer,
		reader:   reader,
		tokens:   tokens,
		admin:    admin,
		validate: validator.New(),
	}
}

// Create validates the request, hashes the password and stores a new account.
func (s *AccountService) Create(
	ctx context.Context,
	ownerName, email, password string,
	initialBalance decimal.Decimal,
) (*models.Account, error) {
	req := newAccount{
		OwnerName: strings.TrimSpace(ownerName),
		Email:     strings.TrimSpace(email),
		Password:  password,
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if initialBalance.IsNegative() || !hasMoneyPrecision(initialBalance) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAmount, initialBalance.String())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "error", err)
		return nil, err
	}

	account, err := s.writer.Create(ctx, req.OwnerName, req.Email, string(hash), initialBalance)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		if errors.Is(err, models.ErrAmountOutOfRange) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
		}
		logger.Log.Errorw("failed to create account", "email", req.Email, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}

	logger.Log.Infow("account created", "account_id", account.ID, "owner", account.OwnerName)
	return account, nil
}

// Authenticate checks the credentials of an account holder and returns a token.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (string, *models.Account, error) {
	account, err := s.reader.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		logger.Log.Errorw("failed to get account by email", "error", err)
		return "", nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	if account == nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(ctx, account.ID, jwt.RoleUser)
	if err != nil {
		logger.Log.Errorw("failed to generate token", "account_id", account.ID, "error", err)
		return "", nil, err
	}
	return token, account, nil
}

// AuthenticateAdmin checks the administrator credentials from configuration.
func (s *AccountService) AuthenticateAdmin(ctx context.Context, email, password string) (string, error) {
	if !s.IsAdminEmail(email) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(ctx, 0, jwt.RoleAdmin)
	if err != nil {
		logger.Log.Errorw("failed to generate admin token", "error", err)
		return "", err
	}
	return token, nil
}

// IsAdminEmail reports whether email belongs to the configured administrator.
func (s *AccountService) IsAdminEmail(email string) bool {
	return s.admin.Email != "" && strings.EqualFold(strings.TrimSpace(email), s.admin.Email)
}

// Get returns the account or an AccountNotFoundError.
func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.reader.GetByID(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to get account", "account_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	if account == nil {
		return nil, &AccountNotFoundError{IDs: []int64{id}}
	}
	return account, nil
}

// ListAll returns every account.
func (s *AccountService) ListAll(ctx context.Context) ([]models.Account, error) {
	accounts, err := s.reader.ListAll(ctx)
	if err != nil {
		logger.Log.Errorw("failed to list accounts", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return accounts, nil
}

// ListExcluding returns every account except id, used to pick transfer recipients.
func (s *AccountService) ListExcluding(ctx context.Context, id int64) ([]models.Account, error) {
	accounts, err := s.reader.ListExcluding(ctx, id)
	if err != nil {
		logger.Log.Errorw("failed to list recipients", "account_id", id, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnexpected, err)
	}
	return accounts, nil
}
