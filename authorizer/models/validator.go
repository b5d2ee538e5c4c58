package models

// TransactionValidator is a single independent business rule checked against
// a transaction/card pair before any mutation happens. Implementations must
// not modify either argument.
type TransactionValidator interface {
	Validate(transaction *Transaction, card *Card) error
}

// CorrectCredentialValidator rejects transactions whose presented credential
// does not match the card's stored encoding.
type CorrectCredentialValidator struct {
	matcher CredentialMatcher
}

func NewCorrectCredentialValidator(matcher CredentialMatcher) *CorrectCredentialValidator {
	return &CorrectCredentialValidator{matcher: matcher}
}

func (v *CorrectCredentialValidator) Validate(transaction *Transaction, card *Card) error {
	if !card.CredentialMatches(v.matcher, transaction.CardCredential) {
		return ErrInvalidCredential
	}
	return nil
}

// SufficientBalanceValidator rejects transactions the card cannot cover.
type SufficientBalanceValidator struct{}

func NewSufficientBalanceValidator() *SufficientBalanceValidator {
	return &SufficientBalanceValidator{}
}

func (v *SufficientBalanceValidator) Validate(transaction *Transaction, card *Card) error {
	if !card.HasSufficientBalance(transaction.Amount) {
		return ErrInsufficientBalance
	}
	return nil
}

// ValidatorChain runs validators in registration order and stops at the
// first failure, returning that validator's error unchanged. New rules are
// appended without touching existing ones.
type ValidatorChain struct {
	validators []TransactionValidator
}

func NewValidatorChain(validators ...TransactionValidator) *ValidatorChain {
	return &ValidatorChain{validators: validators}
}

func (c *ValidatorChain) Validate(transaction *Transaction, card *Card) error {
	for _, v := range c.validators {
		if err := v.Validate(transaction, card); err != nil {
			return err
		}
	}
	return nil
}
