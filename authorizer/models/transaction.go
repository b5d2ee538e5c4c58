package models

import (
	"strings"
	"time"
)

// Transaction is an immutable description of an intended debit. Construction
// is the validation gate: a Transaction that fails the shape checks is never
// built, so the orchestrator can trust any instance it receives.
type Transaction struct {
	CardNumber     string
	CardCredential string
	Amount         Money
	Timestamp      time.Time
}

// NewTransaction validates the request shape eagerly. The credential is the
// plaintext presented by the caller; it is compared against the card's
// encoded credential by the validator chain, never stored.
func NewTransaction(cardNumber, cardCredential string, amount Money) (*Transaction, error) {
	if strings.TrimSpace(cardNumber) == "" {
		return nil, ErrInvalidCardNumber
	}
	if strings.TrimSpace(cardCredential) == "" {
		return nil, ErrInvalidCredential
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	return &Transaction{
		CardNumber:     cardNumber,
		CardCredential: cardCredential,
		Amount:         amount,
		Timestamp:      time.Now(),
	}, nil
}
