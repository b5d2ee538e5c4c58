package models

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/roberto5g/mini-authorizer/internal/cardnum"
)

// InitialBalance is credited to every newly created card.
var InitialBalance = NewMoney(decimal.NewFromInt(500))

// CredentialMatcher compares a plaintext credential against its stored
// one-way encoding. The core only calls it, it never encodes anything itself.
type CredentialMatcher interface {
	Matches(plain, encoded string) bool
}

// Card is the aggregate owning a balance. Number is the business key and is
// immutable once created; ID is the generated persistence identity assigned
// by the store on first save and carries no domain meaning.
type Card struct {
	ID         string `json:"id,omitempty"`
	Number     string `json:"card_number"`
	Credential string `json:"-"`
	Balance    Money  `json:"balance"`
}

// CreateCard validates the card number shape and the credential, and returns
// a card holding the fixed initial balance. The credential is stored as-is:
// callers encode it before construction.
func CreateCard(number, credential string) (*Card, error) {
	if !cardnum.IsValid(number) {
		return nil, ErrInvalidCardNumber
	}
	if !isCredential(credential) {
		return nil, ErrInvalidCredential
	}
	return &Card{
		Number:     number,
		Credential: credential,
		Balance:    InitialBalance,
	}, nil
}

// Debit is the single state transition on a card. It normalizes the amount,
// rejects non-positive amounts and overdrafts, and only mutates the balance
// when the whole check passes.
func (c *Card) Debit(amount Money) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	newBalance := c.Balance.Sub(amount)
	if newBalance.IsNegative() {
		return ErrInsufficientBalance
	}
	c.Balance = newBalance
	return nil
}

// CredentialMatches reports whether the provided plaintext matches the stored
// encoding. An absent credential never matches.
func (c *Card) CredentialMatches(m CredentialMatcher, provided string) bool {
	if provided == "" {
		return false
	}
	return m.Matches(provided, c.Credential)
}

func (c *Card) HasSufficientBalance(amount Money) bool {
	return c.Balance.Cmp(amount) >= 0
}

// Equal compares by business key only; balance and credential snapshots are
// irrelevant to card identity.
func (c *Card) Equal(other *Card) bool {
	return other != nil && c.Number == other.Number
}

func isCredential(credential string) bool {
	return strings.TrimSpace(credential) != "" && len(credential) >= 4
}
