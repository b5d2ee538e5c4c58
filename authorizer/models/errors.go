package models

import "errors"

// Domain error kinds. Each rejection path surfaces exactly one of these so
// callers (HTTP and ISO 8583 layers) can map them without string matching.
var (
	ErrInvalidCardNumber   = errors.New("card number must contain exactly 16 numeric digits")
	ErrInvalidCredential   = errors.New("invalid card password")
	ErrInvalidAmount       = errors.New("amount must be greater than zero")
	ErrCardNotFound        = errors.New("card not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateCardNumber = errors.New("card number already exists")
)
