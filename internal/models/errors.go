package models

import "errors"

// ErrDuplicateEmail is returned by the account store when the email is already registered.
var ErrDuplicateEmail = errors.New("account with this email already exists")

// ErrAmountOutOfRange is returned by the stores when an amount or balance does not fit NUMERIC(15,2).
var ErrAmountOutOfRange = errors.New("amount exceeds the supported range")
