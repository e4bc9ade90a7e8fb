package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents an account row in the database
type Account struct {
	ID           int64           `json:"id" db:"account_id"`         // Assigned by the store, immutable
	OwnerName    string          `json:"owner_name" db:"owner_name"` // Account holder name
	Email        string          `json:"email" db:"email"`           // Unique delivery address
	PasswordHash string          `json:"-" db:"password_hash"`       // bcrypt hash, never serialized
	Balance      decimal.Decimal `json:"balance" db:"balance"`       // Non-negative, two decimal places
	CreatedAt    time.Time       `json:"created_at" db:"created_at"` // Creation timestamp
}
